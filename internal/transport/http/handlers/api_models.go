package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
	"github.com/shakibbs/Event-Backend/internal/transport/http/middleware"
	"github.com/shakibbs/Event-Backend/internal/usecase"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: middleware.GetTraceID(c),
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserResponse is the public view of a user. It never carries the password hash.
type UserResponse struct {
	ID        int64             `json:"id"`
	Email     string            `json:"email"`
	FullName  string            `json:"fullName"`
	Status    domain.UserStatus `json:"status"`
	RoleID    int64             `json:"roleId"`
	CreatedAt time.Time         `json:"createdAt"`
	LastLogin *time.Time        `json:"lastLogin,omitempty"`
}

func newUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Status:    u.Status,
		RoleID:    u.RoleID,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

// MeResponse is the caller's own record plus the authorities granted to the session.
type MeResponse struct {
	UserResponse
	Authorities []string `json:"authorities"`
}

// UserStatusRequest carries an account status change.
type UserStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active held inactive"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse describes the response returned for a successful login.
type LoginResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	TokenType    string       `json:"tokenType"`
	ExpiresIn    int64        `json:"expiresIn"`
	User         UserResponse `json:"user"`
}

func newLoginResponse(res *usecase.LoginResult) LoginResponse {
	return LoginResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		TokenType:    res.TokenType,
		ExpiresIn:    res.ExpiresIn,
		User:         newUserResponse(res.User),
	}
}

// RefreshRequest represents the payload to refresh an access token.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshResponse contains tokens issued by the refresh endpoint.
type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// LogoutRequest optionally names the refresh token to revoke with the access token.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// LogoutAllResponse reports how many tokens were revoked.
type LogoutAllResponse struct {
	Message string `json:"message"`
	Revoked int    `json:"revoked"`
}

// RegisterRequest defines the account registration payload.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"fullName" binding:"required"`
}

// EventRequest carries the editable fields of an event.
type EventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Visibility  string    `json:"visibility" binding:"required"`
}

func (r EventRequest) input() usecase.EventInput {
	return usecase.EventInput{
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Visibility:  domain.EventVisibility(r.Visibility),
	}
}

// EventResponse is the public view of an event.
type EventResponse struct {
	ID          int64                  `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Location    string                 `json:"location"`
	StartTime   time.Time              `json:"startTime"`
	EndTime     time.Time              `json:"endTime"`
	Visibility  domain.EventVisibility `json:"visibility"`
	OrganizerID int64                  `json:"organizerId"`
	Invitees    []int64                `json:"invitees"`
	Attendees   []int64                `json:"attendees"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

func newEventResponse(e domain.Event) EventResponse {
	resp := EventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Visibility:  e.Visibility,
		OrganizerID: e.OrganizerID,
		Invitees:    e.Invitees,
		Attendees:   e.Attendees,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if resp.Invitees == nil {
		resp.Invitees = []int64{}
	}
	if resp.Attendees == nil {
		resp.Attendees = []int64{}
	}
	return resp
}

// EventListResponse wraps multiple events.
type EventListResponse struct {
	Events []EventResponse `json:"events"`
}

// RoleCreateRequest defines the payload for creating a role.
type RoleCreateRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
}

// RoleUpdateRequest renames a role and replaces its description.
type RoleUpdateRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
}

// RolePayload summarizes a role entity.
type RolePayload struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newRolePayload(r domain.Role) RolePayload {
	return RolePayload{ID: r.ID, Name: r.Name, Description: r.Description, CreatedAt: r.CreatedAt}
}

// PermissionPayload describes a permission.
type PermissionPayload struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func newPermissionPayloads(perms []domain.Permission) []PermissionPayload {
	out := make([]PermissionPayload, 0, len(perms))
	for _, p := range perms {
		out = append(out, PermissionPayload{ID: p.ID, Name: p.Name, Description: p.Description})
	}
	return out
}

// RoleResponse returns role details.
type RoleResponse struct {
	Role        RolePayload         `json:"role"`
	Permissions []PermissionPayload `json:"permissions"`
}

// RoleListResponse wraps multiple roles.
type RoleListResponse struct {
	Roles []RolePayload `json:"roles"`
}

// PermissionListResponse wraps multiple permissions.
type PermissionListResponse struct {
	Permissions []PermissionPayload `json:"permissions"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports the outcome of each dependency check.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

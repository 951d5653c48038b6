package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
	"github.com/shakibbs/Event-Backend/internal/core/port"
	"github.com/shakibbs/Event-Backend/internal/repository"
)

// EventInput carries the client-editable fields of an event.
type EventInput struct {
	Title       string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	Visibility  domain.EventVisibility
}

func (in EventInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return invalid("title is required")
	}
	if in.StartTime.IsZero() || in.EndTime.IsZero() {
		return invalid("start and end time are required")
	}
	if !in.Visibility.Valid() {
		return invalid("visibility must be PUBLIC, PRIVATE or INVITE_ONLY")
	}
	return nil
}

// EventService applies ownership and visibility rules to event operations.
type EventService struct {
	events port.EventRepository
	users  port.UserRepository
	authz  *Authorizer
	logger *zap.Logger
}

// NewEventService constructs an EventService instance.
func NewEventService(events port.EventRepository, users port.UserRepository, authz *Authorizer) *EventService {
	if authz == nil {
		authz = NewAuthorizer()
	}
	return &EventService{
		events: events,
		users:  users,
		authz:  authz,
		logger: zap.NewNop(),
	}
}

// WithLogger sets the structured logger.
func (s *EventService) WithLogger(logger *zap.Logger) *EventService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Create stores a new event organized by the caller.
func (s *EventService) Create(ctx context.Context, principal *domain.Principal, in EventInput) (*domain.Event, error) {
	if err := s.authz.RequireAny(principal, domain.PermEventManageOwn, domain.PermEventManageAll); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	event := domain.Event{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Location:    in.Location,
		StartTime:   in.StartTime.UTC(),
		EndTime:     in.EndTime.UTC(),
		Visibility:  in.Visibility,
		OrganizerID: principal.UserID(),
	}
	id, err := s.events.Create(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.logger.Info("event created", zap.Int64("event_id", id), zap.Int64("organizer_id", event.OrganizerID))
	return s.events.GetByID(ctx, id)
}

// Get returns an event the caller may view. Events the caller may not see
// are reported as forbidden, not missing.
func (s *EventService) Get(ctx context.Context, principal *domain.Principal, id int64) (*domain.Event, error) {
	if principal == nil {
		return nil, ErrUnauthenticated
	}
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireView(principal, *event, EventViewRule); err != nil {
		return nil, err
	}
	return event, nil
}

// List returns every live event visible to the caller.
func (s *EventService) List(ctx context.Context, principal *domain.Principal) ([]domain.Event, error) {
	if principal == nil {
		return nil, ErrUnauthenticated
	}
	all, err := s.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	visible := make([]domain.Event, 0, len(all))
	for _, event := range all {
		if s.authz.CanView(principal, event, EventViewRule) {
			visible = append(visible, event)
		}
	}
	return visible, nil
}

// Update replaces the editable fields of an event the caller manages.
func (s *EventService) Update(ctx context.Context, principal *domain.Principal, id int64, in EventInput) (*domain.Event, error) {
	event, err := s.manageable(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	event.Title = strings.TrimSpace(in.Title)
	event.Description = in.Description
	event.Location = in.Location
	event.StartTime = in.StartTime.UTC()
	event.EndTime = in.EndTime.UTC()
	event.Visibility = in.Visibility

	if err := s.events.Update(ctx, *event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return s.events.GetByID(ctx, id)
}

// Delete soft-deletes an event the caller manages.
func (s *EventService) Delete(ctx context.Context, principal *domain.Principal, id int64) error {
	if _, err := s.manageable(ctx, principal, id); err != nil {
		return err
	}
	if err := s.events.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("event deleted", zap.Int64("event_id", id), zap.Int64("user_id", principal.UserID()))
	return nil
}

// Attend adds the caller to the attendee set of a visible event. Attending twice is a no-op.
func (s *EventService) Attend(ctx context.Context, principal *domain.Principal, id int64) (*domain.Event, error) {
	if err := s.authz.Require(principal, domain.PermEventAttend); err != nil {
		return nil, err
	}
	event, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if event.IsAttending(principal.UserID()) {
		return event, nil
	}
	if err := s.events.AddAttendee(ctx, id, principal.UserID()); err != nil {
		return nil, fmt.Errorf("add attendee: %w", err)
	}
	return s.events.GetByID(ctx, id)
}

// Invite adds a user to the invitee set. The caller needs event.invite on an event
// they organize, or event.manage.all.
func (s *EventService) Invite(ctx context.Context, principal *domain.Principal, id, inviteeID int64) (*domain.Event, error) {
	if err := s.authz.RequireAny(principal, domain.PermEventInvite, domain.PermEventManageAll); err != nil {
		return nil, err
	}
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.authz.HasPermission(principal, domain.PermEventManageAll) && event.OrganizerID != principal.UserID() {
		return nil, ErrInsufficientPermission
	}

	if _, err := s.users.GetByID(ctx, inviteeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid("invitee does not exist")
		}
		return nil, fmt.Errorf("load invitee: %w", err)
	}
	if event.IsInvited(inviteeID) {
		return event, nil
	}
	if err := s.events.AddInvitee(ctx, id, inviteeID); err != nil {
		return nil, fmt.Errorf("add invitee: %w", err)
	}
	return s.events.GetByID(ctx, id)
}

func (s *EventService) manageable(ctx context.Context, principal *domain.Principal, id int64) (*domain.Event, error) {
	if principal == nil {
		return nil, ErrUnauthenticated
	}
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireManage(principal, *event, EventManageRule); err != nil {
		return nil, err
	}
	return event, nil
}

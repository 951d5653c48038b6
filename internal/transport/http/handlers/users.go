package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
	"github.com/shakibbs/Event-Backend/internal/transport/http/middleware"
	"github.com/shakibbs/Event-Backend/internal/usecase"
)

// UserHandler exposes registration and user lookups.
type UserHandler struct {
	users *usecase.UserService
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(users *usecase.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterRoutes binds user routes. Registration is public; the rest need a principal.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/register", h.register)

	authed := r.Group("", middleware.RequireAuth())
	authed.GET("/me", h.me)
	authed.GET("/:id", h.get)
	authed.DELETE("/:id", h.deactivate)
	authed.PUT("/:id/status", h.setStatus)
	authed.PUT("/:id/roles/:roleId", h.assignRole)
}

func (h *UserHandler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "a valid email, password and fullName are required"))
		return
	}

	user, err := h.users.Register(c.Request.Context(), usecase.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newUserResponse(*user))
}

func (h *UserHandler) me(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	user, err := h.users.Me(c.Request.Context(), principal)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MeResponse{
		UserResponse: newUserResponse(*user),
		Authorities:  principal.Authorities(),
	})
}

func (h *UserHandler) get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(*user))
}

func (h *UserHandler) assignRole(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	roleID, ok := pathID(c, "roleId")
	if !ok {
		return
	}

	user, err := h.users.AssignRole(c.Request.Context(), middleware.GetPrincipal(c), userID, roleID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(*user))
}

func (h *UserHandler) deactivate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.users.Deactivate(c.Request.Context(), middleware.GetPrincipal(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) setStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req UserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "status must be one of active, held, inactive"))
		return
	}

	user, err := h.users.SetStatus(c.Request.Context(), middleware.GetPrincipal(c), id, domain.UserStatus(req.Status))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(*user))
}

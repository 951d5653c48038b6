package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shakibbs/Event-Backend/internal/transport/http/middleware"
	"github.com/shakibbs/Event-Backend/internal/usecase"
)

// EventHandler exposes event endpoints. Every route needs a principal.
type EventHandler struct {
	events *usecase.EventService
}

// NewEventHandler constructs EventHandler.
func NewEventHandler(events *usecase.EventService) *EventHandler {
	return &EventHandler{events: events}
}

// RegisterRoutes binds event routes.
func (h *EventHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.Use(middleware.RequireAuth())
	r.GET("", h.list)
	r.POST("", h.create)
	r.GET("/:id", h.get)
	r.PUT("/:id", h.update)
	r.DELETE("/:id", h.delete)
	r.POST("/:id/attend", h.attend)
	r.POST("/:id/invitees/:userId", h.invite)
}

func (h *EventHandler) list(c *gin.Context) {
	events, err := h.events.List(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := EventListResponse{Events: make([]EventResponse, 0, len(events))}
	for _, e := range events {
		resp.Events = append(resp.Events, newEventResponse(e))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EventHandler) create(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid event payload"))
		return
	}

	event, err := h.events.Create(c.Request.Context(), middleware.GetPrincipal(c), req.input())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newEventResponse(*event))
}

func (h *EventHandler) get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	event, err := h.events.Get(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newEventResponse(*event))
}

func (h *EventHandler) update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid event payload"))
		return
	}

	event, err := h.events.Update(c.Request.Context(), middleware.GetPrincipal(c), id, req.input())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newEventResponse(*event))
}

func (h *EventHandler) delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.events.Delete(c.Request.Context(), middleware.GetPrincipal(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EventHandler) attend(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	event, err := h.events.Attend(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newEventResponse(*event))
}

func (h *EventHandler) invite(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	event, err := h.events.Invite(c.Request.Context(), middleware.GetPrincipal(c), id, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newEventResponse(*event))
}

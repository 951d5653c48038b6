package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
	"github.com/shakibbs/Event-Backend/internal/transport/http/middleware"
	"github.com/shakibbs/Event-Backend/internal/usecase"
)

// RoleHandler exposes role and permission administration.
type RoleHandler struct {
	roles *usecase.RoleService
}

func NewRoleHandler(roles *usecase.RoleService) *RoleHandler {
	return &RoleHandler{roles: roles}
}

// RegisterRoutes binds /roles routes. The route guard rejects callers without
// role.manage.all before the service repeats the check.
func (h *RoleHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.Use(middleware.RequirePermission(domain.PermRoleManageAll))
	r.GET("", h.list)
	r.POST("", h.create)
	r.GET("/:id", h.get)
	r.PUT("/:id", h.update)
	r.DELETE("/:id", h.delete)
	r.POST("/:id/permissions/:permissionId", h.assignPermission)
	r.DELETE("/:id/permissions/:permissionId", h.unassignPermission)
}

// RegisterPermissionRoutes binds the permission catalogue.
func (h *RoleHandler) RegisterPermissionRoutes(r *gin.RouterGroup) {
	r.GET("", middleware.RequirePermission(domain.PermRoleManageAll), h.listPermissions)
}

func (h *RoleHandler) list(c *gin.Context) {
	roles, err := h.roles.List(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	resp := RoleListResponse{Roles: make([]RolePayload, 0, len(roles))}
	for _, role := range roles {
		resp.Roles = append(resp.Roles, newRolePayload(role))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RoleHandler) create(c *gin.Context) {
	var req RoleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid role payload"))
		return
	}

	role, err := h.roles.Create(c.Request.Context(), middleware.GetPrincipal(c), req.Name, req.Description)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, RoleResponse{Role: newRolePayload(*role), Permissions: []PermissionPayload{}})
}

func (h *RoleHandler) get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	details, err := h.roles.Get(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, RoleResponse{
		Role:        newRolePayload(details.Role),
		Permissions: newPermissionPayloads(details.Permissions),
	})
}

func (h *RoleHandler) update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req RoleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid role payload"))
		return
	}

	role, err := h.roles.Update(c.Request.Context(), middleware.GetPrincipal(c), id, req.Name, req.Description)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, RoleResponse{Role: newRolePayload(*role), Permissions: []PermissionPayload{}})
}

func (h *RoleHandler) delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.roles.Delete(c.Request.Context(), middleware.GetPrincipal(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RoleHandler) assignPermission(c *gin.Context) {
	roleID, permissionID, ok := rolePermissionIDs(c)
	if !ok {
		return
	}
	if err := h.roles.AssignPermission(c.Request.Context(), middleware.GetPrincipal(c), roleID, permissionID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "permission assigned"})
}

func (h *RoleHandler) unassignPermission(c *gin.Context) {
	roleID, permissionID, ok := rolePermissionIDs(c)
	if !ok {
		return
	}
	if err := h.roles.UnassignPermission(c.Request.Context(), middleware.GetPrincipal(c), roleID, permissionID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "permission removed"})
}

func (h *RoleHandler) listPermissions(c *gin.Context) {
	perms, err := h.roles.ListPermissions(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, PermissionListResponse{Permissions: newPermissionPayloads(perms)})
}

func rolePermissionIDs(c *gin.Context) (int64, int64, bool) {
	roleID, ok := pathID(c, "id")
	if !ok {
		return 0, 0, false
	}
	permissionID, ok := pathID(c, "permissionId")
	if !ok {
		return 0, 0, false
	}
	return roleID, permissionID, true
}

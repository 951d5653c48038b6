package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
	"github.com/shakibbs/Event-Backend/internal/core/port"
	"github.com/shakibbs/Event-Backend/internal/repository"
)

// RoleDetails is a role together with the permissions it grants.
type RoleDetails struct {
	Role        domain.Role
	Permissions []domain.Permission
}

// RoleService manages roles and their permission grants. Every operation
// requires role.manage.all.
type RoleService struct {
	roles       port.RoleRepository
	permissions port.PermissionRepository
	authz       *Authorizer
	cache       port.PrincipalCache
	logger      *zap.Logger
}

// NewRoleService constructs a RoleService instance.
func NewRoleService(roles port.RoleRepository, permissions port.PermissionRepository, authz *Authorizer) *RoleService {
	if authz == nil {
		authz = NewAuthorizer()
	}
	return &RoleService{
		roles:       roles,
		permissions: permissions,
		authz:       authz,
		logger:      zap.NewNop(),
	}
}

// WithPrincipalCache sets the cache purged whenever grants change.
func (s *RoleService) WithPrincipalCache(cache port.PrincipalCache) *RoleService {
	s.cache = cache
	return s
}

// WithLogger sets the structured logger.
func (s *RoleService) WithLogger(logger *zap.Logger) *RoleService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// List returns the live roles.
func (s *RoleService) List(ctx context.Context, principal *domain.Principal) ([]domain.Role, error) {
	if err := s.authz.Require(principal, domain.PermRoleManageAll); err != nil {
		return nil, err
	}
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

// Get returns a live role with its permissions.
func (s *RoleService) Get(ctx context.Context, principal *domain.Principal, id int64) (*RoleDetails, error) {
	if err := s.authz.Require(principal, domain.PermRoleManageAll); err != nil {
		return nil, err
	}
	role, err := s.liveRole(ctx, id)
	if err != nil {
		return nil, err
	}
	perms, err := s.permissions.ListByRole(ctx, role.ID)
	if err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}
	return &RoleDetails{Role: *role, Permissions: perms}, nil
}

// Create stores a new role. Names are unique among live roles.
func (s *RoleService) Create(ctx context.Context, principal *domain.Principal, name string, description *string) (*domain.Role, error) {
	if err := s.authz.Require(principal, domain.PermRoleManageAll); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("role name is required")
	}

	if _, err := s.roles.GetByName(ctx, name); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup role: %w", err)
	}

	id, err := s.roles.Create(ctx, domain.Role{Name: name, Description: description})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create role: %w", err)
	}
	s.logger.Info("role created", zap.Int64("role_id", id), zap.String("name", name))
	return s.roles.GetByID(ctx, id)
}

// Update renames a live role and replaces its description.
func (s *RoleService) Update(ctx context.Context, principal *domain.Principal, id int64, name string, description *string) (*domain.Role, error) {
	if err := s.authz.Require(principal, domain.PermRoleManageAll); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("role name is required")
	}
	role, err := s.liveRole(ctx, id)
	if err != nil {
		return nil, err
	}

	role.Name = name
	role.Description = description
	if err := s.roles.Update(ctx, *role); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, err
	}
	s.purge()
	s.logger.Info("role updated", zap.Int64("role_id", id), zap.String("name", name))
	return s.roles.GetByID(ctx, id)
}

// Delete soft-deletes a role. Holders of the role lose its grants.
func (s *RoleService) Delete(ctx context.Context, principal *domain.Principal, id int64) error {
	if err := s.authz.Require(principal, domain.PermRoleManageAll); err != nil {
		return err
	}
	if err := s.roles.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.purge()
	s.logger.Info("role deleted", zap.Int64("role_id", id), zap.Int64("user_id", principal.UserID()))
	return nil
}

// AssignPermission grants a permission to a role. Granting twice is a no-op.
func (s *RoleService) AssignPermission(ctx context.Context, principal *domain.Principal, roleID, permissionID int64) error {
	if err := s.authz.Require(principal, domain.PermRoleManageAll); err != nil {
		return err
	}
	if _, err := s.liveRole(ctx, roleID); err != nil {
		return err
	}
	if _, err := s.permissions.GetByID(ctx, permissionID); err != nil {
		return err
	}
	if err := s.roles.AttachPermission(ctx, roleID, permissionID); err != nil {
		return fmt.Errorf("attach permission: %w", err)
	}
	s.purge()
	return nil
}

// UnassignPermission removes a grant from a role.
func (s *RoleService) UnassignPermission(ctx context.Context, principal *domain.Principal, roleID, permissionID int64) error {
	if err := s.authz.Require(principal, domain.PermRoleManageAll); err != nil {
		return err
	}
	if _, err := s.liveRole(ctx, roleID); err != nil {
		return err
	}
	if err := s.roles.DetachPermission(ctx, roleID, permissionID); err != nil {
		return err
	}
	s.purge()
	return nil
}

// ListPermissions returns every known permission.
func (s *RoleService) ListPermissions(ctx context.Context, principal *domain.Principal) ([]domain.Permission, error) {
	if err := s.authz.Require(principal, domain.PermRoleManageAll); err != nil {
		return nil, err
	}
	perms, err := s.permissions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	return perms, nil
}

func (s *RoleService) liveRole(ctx context.Context, id int64) (*domain.Role, error) {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role.Deleted {
		return nil, repository.ErrNotFound
	}
	return role, nil
}

func (s *RoleService) purge() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
	"github.com/shakibbs/Event-Backend/internal/core/port"
	"github.com/shakibbs/Event-Backend/internal/infra/config"
	"github.com/shakibbs/Event-Backend/internal/repository"
)

// Seeder makes sure the default permissions, roles and an optional bootstrap
// SuperAdmin exist. Running it repeatedly is safe.
type Seeder struct {
	users       port.UserRepository
	roles       port.RoleRepository
	permissions port.PermissionRepository
	hasher      port.PasswordHasher
	bootstrap   config.BootstrapSettings
	logger      *zap.Logger
}

// NewSeeder constructs a Seeder instance.
func NewSeeder(
	users port.UserRepository,
	roles port.RoleRepository,
	permissions port.PermissionRepository,
	hasher port.PasswordHasher,
	bootstrap config.BootstrapSettings,
) *Seeder {
	return &Seeder{
		users:       users,
		roles:       roles,
		permissions: permissions,
		hasher:      hasher,
		bootstrap:   bootstrap,
		logger:      zap.NewNop(),
	}
}

// WithLogger sets the structured logger.
func (s *Seeder) WithLogger(logger *zap.Logger) *Seeder {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Seed runs every seeding step in order.
func (s *Seeder) Seed(ctx context.Context) error {
	perms, err := s.ensurePermissions(ctx)
	if err != nil {
		return err
	}
	roles, err := s.ensureRoles(ctx, perms)
	if err != nil {
		return err
	}
	return s.ensureBootstrapAdmin(ctx, roles[domain.RoleSuperAdmin])
}

func (s *Seeder) ensurePermissions(ctx context.Context) (map[string]int64, error) {
	ids := make(map[string]int64)
	for _, seed := range domain.DefaultPermissions() {
		existing, err := s.permissions.GetByName(ctx, seed.Name)
		if err == nil {
			ids[seed.Name] = existing.ID
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("lookup permission %s: %w", seed.Name, err)
		}

		id, err := s.permissions.Create(ctx, domain.Permission{Name: seed.Name, Description: seed.Description})
		if err != nil {
			return nil, fmt.Errorf("create permission %s: %w", seed.Name, err)
		}
		ids[seed.Name] = id
		s.logger.Info("permission seeded", zap.String("permission", seed.Name))
	}
	return ids, nil
}

func (s *Seeder) ensureRoles(ctx context.Context, perms map[string]int64) (map[string]int64, error) {
	ids := make(map[string]int64)
	for _, seed := range domain.DefaultRoles() {
		roleID, err := s.ensureRole(ctx, seed.Name)
		if err != nil {
			return nil, err
		}
		ids[seed.Name] = roleID

		for _, name := range seed.Permissions {
			permID, ok := perms[name]
			if !ok {
				return nil, fmt.Errorf("seed role %s: unknown permission %s", seed.Name, name)
			}
			if err := s.roles.AttachPermission(ctx, roleID, permID); err != nil {
				return nil, fmt.Errorf("grant %s to %s: %w", name, seed.Name, err)
			}
		}
	}
	return ids, nil
}

func (s *Seeder) ensureRole(ctx context.Context, name string) (int64, error) {
	existing, err := s.roles.GetByName(ctx, name)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return 0, fmt.Errorf("lookup role %s: %w", name, err)
	}

	id, err := s.roles.Create(ctx, domain.Role{Name: name})
	if err != nil {
		return 0, fmt.Errorf("create role %s: %w", name, err)
	}
	s.logger.Info("role seeded", zap.String("role", name))
	return id, nil
}

func (s *Seeder) ensureBootstrapAdmin(ctx context.Context, roleID int64) error {
	email := strings.ToLower(strings.TrimSpace(s.bootstrap.AdminEmail))
	if email == "" || s.bootstrap.AdminPassword == "" {
		return nil
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("lookup bootstrap admin: %w", err)
	}

	hash, err := s.hasher.Hash(s.bootstrap.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash bootstrap password: %w", err)
	}
	name := strings.TrimSpace(s.bootstrap.AdminName)
	if name == "" {
		name = domain.RoleSuperAdmin
	}

	id, err := s.users.Create(ctx, domain.User{
		Email:        email,
		FullName:     name,
		PasswordHash: hash,
		Status:       domain.UserStatusActive,
		RoleID:       roleID,
	})
	if err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}
	s.logger.Info("bootstrap admin created", zap.Int64("user_id", id))
	return nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
	"github.com/shakibbs/Event-Backend/internal/core/port"
	"github.com/shakibbs/Event-Backend/internal/infra/security"
	"github.com/shakibbs/Event-Backend/internal/repository"
)

// RegisterInput carries a self-registration request.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

// UserService handles registration, profile lookups and role assignment.
type UserService struct {
	users    port.UserRepository
	roles    port.RoleRepository
	hasher   port.PasswordHasher
	registry port.TokenRegistry
	authz    *Authorizer
	cache    port.PrincipalCache
	policy   func(inputs ...string) port.PasswordPolicyValidator
	logger   *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(
	users port.UserRepository,
	roles port.RoleRepository,
	hasher port.PasswordHasher,
	registry port.TokenRegistry,
	authz *Authorizer,
) *UserService {
	if authz == nil {
		authz = NewAuthorizer()
	}
	return &UserService{
		users:    users,
		roles:    roles,
		hasher:   hasher,
		registry: registry,
		authz:    authz,
		policy: func(inputs ...string) port.PasswordPolicyValidator {
			return security.DefaultPasswordValidator(inputs...)
		},
		logger: zap.NewNop(),
	}
}

// WithPasswordPolicy overrides the password policy applied at registration.
func (s *UserService) WithPasswordPolicy(validator port.PasswordPolicyValidator) *UserService {
	if validator != nil {
		s.policy = func(...string) port.PasswordPolicyValidator { return validator }
	}
	return s
}

// WithPrincipalCache sets the cache invalidated on role assignment.
func (s *UserService) WithPrincipalCache(cache port.PrincipalCache) *UserService {
	s.cache = cache
	return s
}

// WithLogger sets the structured logger.
func (s *UserService) WithLogger(logger *zap.Logger) *UserService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Register creates an active Attendee account. The transport validates the
// email format; the service only normalizes it.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, invalid("email is required")
	}
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return nil, invalid("full name is required")
	}
	if err := s.policy(email, name).Validate(in.Password); err != nil {
		var policyErr *security.PasswordValidationError
		if errors.As(err, &policyErr) {
			return nil, invalid(policyErr.Message)
		}
		return nil, invalid(err.Error())
	}

	role, err := s.roles.GetByName(ctx, domain.RoleAttendee)
	if err != nil {
		return nil, fmt.Errorf("load default role: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.users.Create(ctx, domain.User{
		Email:        email,
		FullName:     name,
		PasswordHash: hash,
		Status:       domain.UserStatusActive,
		RoleID:       role.ID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	s.logger.Info("user registered", zap.Int64("user_id", id))
	sanitized := user.Sanitized()
	return &sanitized, nil
}

// Me returns the caller's own record.
func (s *UserService) Me(ctx context.Context, principal *domain.Principal) (*domain.User, error) {
	if principal == nil {
		return nil, ErrUnauthenticated
	}
	user, err := s.users.GetByID(ctx, principal.UserID())
	if err != nil {
		return nil, err
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}

// Get returns a user record the caller manages. Users always manage themselves
// when they hold user.manage.own.
func (s *UserService) Get(ctx context.Context, principal *domain.Principal, id int64) (*domain.User, error) {
	if principal == nil {
		return nil, ErrUnauthenticated
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireManage(principal, *user, UserManageRule); err != nil {
		return nil, err
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}

// AssignRole moves a user to another role and revokes their tokens so the new
// grants apply from the next login.
func (s *UserService) AssignRole(ctx context.Context, principal *domain.Principal, userID, roleID int64) (*domain.User, error) {
	if err := s.authz.Require(principal, domain.PermUserManageAll); err != nil {
		return nil, err
	}
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if role.Deleted {
		return nil, repository.ErrNotFound
	}

	if err := s.users.UpdateRole(ctx, userID, roleID); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Remove(userID)
	}
	revoked, err := s.registry.RevokeUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("revoke user tokens: %w", err)
	}

	s.logger.Info("role assigned",
		zap.Int64("user_id", userID),
		zap.Int64("role_id", roleID),
		zap.Int("revoked_tokens", revoked),
	)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}

// SetStatus moves an account between active, held and inactive. It requires
// user.manage.all. Live tokens of the account are revoked on every change.
func (s *UserService) SetStatus(ctx context.Context, principal *domain.Principal, userID int64, status domain.UserStatus) (*domain.User, error) {
	if err := s.authz.Require(principal, domain.PermUserManageAll); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, invalid("status must be one of active, held, inactive")
	}
	if userID == principal.UserID() && status != domain.UserStatusActive {
		return nil, invalid("administrators cannot suspend their own account")
	}
	return s.changeStatus(ctx, principal, userID, status)
}

// Deactivate soft-deletes an account by marking it inactive. Holders of
// user.manage.own may close their own account.
func (s *UserService) Deactivate(ctx context.Context, principal *domain.Principal, userID int64) error {
	if principal == nil {
		return ErrUnauthenticated
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.authz.RequireManage(principal, *user, UserManageRule); err != nil {
		return err
	}
	if user.Status == domain.UserStatusInactive {
		return nil
	}
	_, err = s.changeStatus(ctx, principal, userID, domain.UserStatusInactive)
	return err
}

func (s *UserService) changeStatus(ctx context.Context, principal *domain.Principal, userID int64, status domain.UserStatus) (*domain.User, error) {
	if err := s.users.SetStatus(ctx, userID, status); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Remove(userID)
	}
	revoked, err := s.registry.RevokeUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("revoke user tokens: %w", err)
	}

	s.logger.Info("user status changed",
		zap.Int64("user_id", userID),
		zap.String("status", string(status)),
		zap.Int64("changed_by", principal.UserID()),
		zap.Int("revoked_tokens", revoked),
	)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}

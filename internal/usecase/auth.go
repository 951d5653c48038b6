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
	"github.com/shakibbs/Event-Backend/internal/infra/config"
	"github.com/shakibbs/Event-Backend/internal/infra/security"
	"github.com/shakibbs/Event-Backend/internal/infra/telemetry"
	"github.com/shakibbs/Event-Backend/internal/repository"
)

// LoginResult carries the token pair handed to a client after a successful login.
type LoginResult struct {
	AccessToken      string
	RefreshToken     string
	TokenType        string
	ExpiresIn        int64
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	User             domain.User
}

// RefreshResult carries a new access token and the unchanged refresh token.
type RefreshResult struct {
	AccessToken     string
	RefreshToken    string
	TokenType       string
	ExpiresIn       int64
	AccessExpiresAt time.Time
}

// AuthService coordinates login, refresh, logout and per-request authentication.
type AuthService struct {
	users       port.UserRepository
	roles       port.RoleRepository
	permissions port.PermissionRepository
	registry    port.TokenRegistry
	codec       *security.TokenCodec
	hasher      port.PasswordHasher
	accessTTL   time.Duration
	refreshTTL  time.Duration

	audit   port.AuditPublisher
	cache   port.PrincipalCache
	metrics *telemetry.AuthMetrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(
	cfg config.JWTSettings,
	users port.UserRepository,
	roles port.RoleRepository,
	permissions port.PermissionRepository,
	registry port.TokenRegistry,
	codec *security.TokenCodec,
	hasher port.PasswordHasher,
) *AuthService {
	return &AuthService{
		users:       users,
		roles:       roles,
		permissions: permissions,
		registry:    registry,
		codec:       codec,
		hasher:      hasher,
		accessTTL:   cfg.AccessTokenTTL(),
		refreshTTL:  cfg.RefreshTokenTTL(),
		logger:      zap.NewNop(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithAuditPublisher sets the publisher used for login/logout history.
func (s *AuthService) WithAuditPublisher(publisher port.AuditPublisher) *AuthService {
	s.audit = publisher
	return s
}

// WithPrincipalCache enables caching of resolved principals.
func (s *AuthService) WithPrincipalCache(cache port.PrincipalCache) *AuthService {
	s.cache = cache
	return s
}

// WithMetrics enables Prometheus counters.
func (s *AuthService) WithMetrics(metrics *telemetry.AuthMetrics) *AuthService {
	s.metrics = metrics
	return s
}

// WithLogger sets the structured logger.
func (s *AuthService) WithLogger(logger *zap.Logger) *AuthService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithClock overrides the clock used for audit timestamps.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	if now != nil {
		s.now = now
	}
	return s
}

// Login verifies credentials and issues a registered access/refresh token pair.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.lookupForLogin(ctx, email)
	if err != nil {
		s.metrics.ObserveLogin(telemetry.OutcomeError)
		return nil, err
	}

	if user == nil {
		// Burn the same bcrypt work as a real comparison.
		s.hasher.Verify(password, "")
		return nil, s.loginFailed(ctx, 0)
	}
	if password == "" || !s.hasher.Verify(password, user.PasswordHash) {
		return nil, s.loginFailed(ctx, user.ID)
	}
	if !user.IsActive() {
		s.metrics.ObserveLogin(telemetry.OutcomeInactive)
		return nil, ErrInactiveAccount
	}

	access, err := s.issue(ctx, user.ID, domain.TokenKindAccess, s.accessTTL)
	if err != nil {
		s.metrics.ObserveLogin(telemetry.OutcomeError)
		return nil, err
	}
	refresh, err := s.issue(ctx, user.ID, domain.TokenKindRefresh, s.refreshTTL)
	if err != nil {
		_ = s.registry.Revoke(ctx, access.TokenID)
		s.metrics.ObserveLogin(telemetry.OutcomeError)
		return nil, err
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("record last login failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	s.metrics.ObserveLogin(telemetry.OutcomeSuccess)
	s.publish(ctx, domain.AuthEventLoginSucceeded, user.ID, access.TokenID)
	s.logger.Info("user logged in",
		zap.Int64("user_id", user.ID),
		zap.String("token_id", access.TokenID),
		zap.Time("expires_at", access.ExpiresAt),
	)

	return &LoginResult{
		AccessToken:      access.Token,
		RefreshToken:     refresh.Token,
		TokenType:        domain.BearerTokenType,
		ExpiresIn:        int64(s.accessTTL / time.Second),
		AccessExpiresAt:  access.ExpiresAt,
		RefreshExpiresAt: refresh.ExpiresAt,
		User:             user.Sanitized(),
	}, nil
}

func (s *AuthService) lookupForLogin(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, nil
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

func (s *AuthService) loginFailed(ctx context.Context, userID int64) error {
	s.metrics.ObserveLogin(telemetry.OutcomeInvalidCredentials)
	s.publish(ctx, domain.AuthEventLoginFailed, userID, "")
	return ErrInvalidCredentials
}

// Refresh exchanges a live refresh token for a new access token. The refresh
// token itself is returned unchanged.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	claims, userID, err := s.resolve(ctx, refreshToken, domain.TokenKindRefresh)
	if err != nil {
		if errors.Is(err, ErrTokenSubjectMismatch) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive() {
		return nil, ErrInactiveAccount
	}

	access, err := s.issue(ctx, userID, domain.TokenKindAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.AuthEventTokenRefreshed, userID, claims.TokenID)

	return &RefreshResult{
		AccessToken:     access.Token,
		RefreshToken:    strings.TrimSpace(refreshToken),
		TokenType:       domain.BearerTokenType,
		ExpiresIn:       int64(s.accessTTL / time.Second),
		AccessExpiresAt: access.ExpiresAt,
	}, nil
}

// Logout revokes the presented access token. A companion refresh token that
// belongs to the same user is revoked as well.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	claims, userID, err := s.resolve(ctx, accessToken, domain.TokenKindAccess)
	if err != nil {
		if errors.Is(err, ErrTokenSubjectMismatch) {
			return ErrInvalidToken
		}
		return err
	}

	if err := s.registry.Revoke(ctx, claims.TokenID); err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}
	revoked := 1

	if refreshToken = strings.TrimSpace(refreshToken); refreshToken != "" && s.codec.Verify(refreshToken) {
		subject, subErr := s.codec.ExtractSubject(refreshToken)
		tokenID, idErr := s.codec.ExtractTokenID(refreshToken)
		if subErr == nil && idErr == nil && subject == userID {
			if owner, ok, _ := s.registry.Resolve(ctx, tokenID); ok && owner == userID {
				if err := s.registry.Revoke(ctx, tokenID); err != nil {
					s.logger.Warn("revoke refresh token failed", zap.Int64("user_id", userID), zap.Error(err))
				} else {
					revoked++
				}
			}
		}
	}

	s.metrics.ObserveRevocations("token", revoked)
	s.publish(ctx, domain.AuthEventLoggedOut, userID, claims.TokenID)
	s.logger.Info("user logged out", zap.Int64("user_id", userID), zap.String("token_id", claims.TokenID))
	return nil
}

// LogoutAll revokes every token issued to the principal.
func (s *AuthService) LogoutAll(ctx context.Context, principal *domain.Principal) (int, error) {
	if principal == nil {
		return 0, ErrUnauthenticated
	}
	revoked, err := s.registry.RevokeUser(ctx, principal.UserID())
	if err != nil {
		return 0, fmt.Errorf("revoke user tokens: %w", err)
	}
	s.metrics.ObserveRevocations("user", revoked)
	s.publish(ctx, domain.AuthEventLoggedOutAll, principal.UserID(), principal.TokenID)
	return revoked, nil
}

// Authenticate resolves a bearer access token into a principal. It is the
// per-request path used by the HTTP middleware.
func (s *AuthService) Authenticate(ctx context.Context, bearer string) (*domain.Principal, error) {
	claims, userID, err := s.resolve(ctx, bearer, domain.TokenKindAccess)
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenSubjectMismatch):
			s.metrics.ObserveAuthentication(telemetry.OutcomeSubjectMismatch)
		case errors.Is(err, ErrInvalidToken):
			s.metrics.ObserveAuthentication(telemetry.OutcomeInvalidToken)
		default:
			s.metrics.ObserveAuthentication(telemetry.OutcomeError)
		}
		return nil, err
	}

	principal, err := s.loadPrincipal(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrInactiveAccount) {
			s.metrics.ObserveAuthentication(telemetry.OutcomeInactive)
		} else {
			s.metrics.ObserveAuthentication(telemetry.OutcomeError)
		}
		return nil, err
	}

	s.metrics.ObserveAuthentication(telemetry.OutcomeSuccess)
	return principal.WithTokenID(claims.TokenID), nil
}

// resolve verifies the bearer, checks its kind and confirms the registry maps
// its id to the user named in the claims.
func (s *AuthService) resolve(ctx context.Context, bearer string, kind domain.TokenKind) (*security.TokenClaims, int64, error) {
	claims, err := s.codec.Parse(bearer)
	if err != nil || claims.Type != kind || claims.TokenID == "" {
		return nil, 0, ErrInvalidToken
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, 0, ErrInvalidToken
	}

	stored, ok, err := s.registry.Resolve(ctx, claims.TokenID)
	if err != nil {
		return nil, 0, fmt.Errorf("resolve token: %w", err)
	}
	if !ok {
		return nil, 0, ErrInvalidToken
	}
	if stored != userID {
		s.logger.Error("token subject mismatch",
			zap.String("token_id", claims.TokenID),
			zap.Int64("claimed_user_id", userID),
			zap.Int64("registered_user_id", stored),
		)
		return nil, 0, ErrTokenSubjectMismatch
	}
	return claims, userID, nil
}

func (s *AuthService) loadPrincipal(ctx context.Context, userID int64) (*domain.Principal, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(userID); ok {
			return cached, nil
		}
	}

	principal, err := LoadPrincipal(ctx, userID, s.users, s.roles, s.permissions)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Add(userID, principal)
	}
	return principal, nil
}

// LoadPrincipal assembles a principal from storage. A soft-deleted role grants nothing.
func LoadPrincipal(
	ctx context.Context,
	userID int64,
	users port.UserRepository,
	roles port.RoleRepository,
	permissions port.PermissionRepository,
) (*domain.Principal, error) {
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive() {
		return nil, ErrInactiveAccount
	}

	role, err := roles.GetByID(ctx, user.RoleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NewPrincipal(*user, domain.Role{}, nil), nil
		}
		return nil, fmt.Errorf("load role: %w", err)
	}

	var granted []domain.Permission
	if !role.Deleted {
		granted, err = permissions.ListByRole(ctx, role.ID)
		if err != nil {
			return nil, fmt.Errorf("load permissions: %w", err)
		}
	}
	return domain.NewPrincipal(*user, *role, granted), nil
}

func (s *AuthService) issue(ctx context.Context, userID int64, kind domain.TokenKind, ttl time.Duration) (security.IssuedToken, error) {
	issued, err := s.codec.Issue(userID, kind, ttl)
	if err != nil {
		return security.IssuedToken{}, fmt.Errorf("issue %s token: %w", kind, err)
	}
	// Registered before the caller ever sees the token.
	if err := s.registry.Put(ctx, issued.TokenID, userID, ttl); err != nil {
		return security.IssuedToken{}, fmt.Errorf("register %s token: %w", kind, err)
	}
	s.metrics.ObserveIssued(string(kind))
	return issued, nil
}

func (s *AuthService) publish(ctx context.Context, eventType domain.AuthEventType, userID int64, tokenID string) {
	if s.audit == nil {
		return
	}
	event := domain.AuthEvent{
		Type:       eventType,
		UserID:     userID,
		TokenID:    tokenID,
		OccurredAt: s.now(),
	}
	if err := s.audit.PublishAuthEvent(ctx, event); err != nil {
		s.logger.Warn("publish audit event failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

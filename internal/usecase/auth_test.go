package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap/zaptest"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
	"github.com/shakibbs/Event-Backend/internal/infra/cache"
	"github.com/shakibbs/Event-Backend/internal/infra/telemetry"
)

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (r *recordingAudit) PublishAuthEvent(_ context.Context, event domain.AuthEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingAudit) types() []domain.AuthEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuthEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func TestLoginRegistersBothTokens(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.auth.Login(ctx, "  Alice@Example.com ", testPassword)
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.TokenType != "Bearer" || res.ExpiresIn != int64((45*time.Minute)/time.Second) {
		t.Fatalf("unexpected token metadata %q %d", res.TokenType, res.ExpiresIn)
	}
	if res.User.ID != h.attendeeA || res.User.PasswordHash != "" {
		t.Fatalf("unexpected user summary %+v", res.User)
	}

	for _, token := range []string{res.AccessToken, res.RefreshToken} {
		tokenID, err := h.codec.ExtractTokenID(token)
		if err != nil {
			t.Fatalf("ExtractTokenID returned error: %v", err)
		}
		owner, ok, err := h.registry.Resolve(ctx, tokenID)
		if err != nil || !ok || owner != h.attendeeA {
			t.Fatalf("expected token %s registered to %d, got %d %v %v", tokenID, h.attendeeA, owner, ok, err)
		}
	}

	user, _ := h.users.GetByID(ctx, h.attendeeA)
	if user.LastLogin == nil {
		t.Fatal("expected last login to be recorded")
	}
}

func TestLoginDoesNotRevealWhichCredentialFailed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, unknownErr := h.auth.Login(ctx, "nobody@example.com", testPassword)
	_, wrongErr := h.auth.Login(ctx, "alice@example.com", "not-the-password")
	_, emptyErr := h.auth.Login(ctx, "", "")

	for _, err := range []error{unknownErr, wrongErr, emptyErr} {
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("messages differ: %q vs %q", unknownErr, wrongErr)
	}
	if h.registry.Len() != 0 {
		t.Fatalf("expected no registered tokens, got %d", h.registry.Len())
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if err := h.users.SetStatus(ctx, h.attendeeA, domain.UserStatusHeld); err != nil {
		t.Fatalf("SetStatus returned error: %v", err)
	}

	if _, err := h.auth.Login(ctx, "alice@example.com", testPassword); !errors.Is(err, ErrInactiveAccount) {
		t.Fatalf("expected ErrInactiveAccount, got %v", err)
	}
	if _, err := h.auth.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
}

func TestLoginUseLogout(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	audit := &recordingAudit{}
	h.auth.WithAuditPublisher(audit).WithLogger(zaptest.NewLogger(t))

	res, principal := h.login(t, "alice@example.com")
	if principal.UserID() != h.attendeeA {
		t.Fatalf("expected principal %d, got %d", h.attendeeA, principal.UserID())
	}
	if !principal.HasPermission(domain.PermEventAttend) || principal.HasPermission(domain.PermEventManageAll) {
		t.Fatalf("unexpected permissions %v", principal.Permissions())
	}
	if principal.TokenID == "" {
		t.Fatal("expected principal bound to token id")
	}

	if err := h.auth.Logout(ctx, res.AccessToken, res.RefreshToken); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if _, err := h.auth.Authenticate(ctx, res.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after logout, got %v", err)
	}
	if _, err := h.auth.Refresh(ctx, res.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected companion refresh token revoked, got %v", err)
	}
	if err := h.auth.Logout(ctx, res.AccessToken, ""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected second logout to fail, got %v", err)
	}

	got := audit.types()
	want := []domain.AuthEventType{domain.AuthEventLoginSucceeded, domain.AuthEventLoggedOut}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("unexpected audit trail %v", got)
	}
}

func TestLogoutIgnoresForeignRefreshToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	alice, _ := h.login(t, "alice@example.com")
	bob, _ := h.login(t, "bob@example.com")

	if err := h.auth.Logout(ctx, alice.AccessToken, bob.RefreshToken); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if _, err := h.auth.Refresh(ctx, bob.RefreshToken); err != nil {
		t.Fatalf("expected bob's refresh token to survive, got %v", err)
	}
}

func TestAuthenticateRejectsRefreshTokenAndGarbage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	res, _ := h.login(t, "alice@example.com")

	for name, bearer := range map[string]string{
		"refresh": res.RefreshToken,
		"empty":   "",
		"garbage": "not.a.jwt",
	} {
		if _, err := h.auth.Authenticate(ctx, bearer); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestAuthenticateDetectsSubjectMismatch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	res, _ := h.login(t, "alice@example.com")

	tokenID, err := h.codec.ExtractTokenID(res.AccessToken)
	if err != nil {
		t.Fatalf("ExtractTokenID returned error: %v", err)
	}
	if err := h.registry.Put(ctx, tokenID, h.attendeeB, time.Hour); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	if _, err := h.auth.Authenticate(ctx, res.AccessToken); !errors.Is(err, ErrTokenSubjectMismatch) {
		t.Fatalf("expected ErrTokenSubjectMismatch, got %v", err)
	}
}

func TestAuthenticateRejectsDeactivatedUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	res, _ := h.login(t, "alice@example.com")

	if err := h.users.SetStatus(ctx, h.attendeeA, domain.UserStatusInactive); err != nil {
		t.Fatalf("SetStatus returned error: %v", err)
	}
	if _, err := h.auth.Authenticate(ctx, res.AccessToken); !errors.Is(err, ErrInactiveAccount) {
		t.Fatalf("expected ErrInactiveAccount, got %v", err)
	}
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	res, _ := h.login(t, "alice@example.com")

	refreshed, err := h.auth.Refresh(ctx, res.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if refreshed.RefreshToken != res.RefreshToken {
		t.Fatal("expected refresh token to be returned unchanged")
	}
	if refreshed.AccessToken == res.AccessToken {
		t.Fatal("expected a new access token")
	}

	p, err := h.auth.Authenticate(ctx, refreshed.AccessToken)
	if err != nil || p.UserID() != h.attendeeA {
		t.Fatalf("expected refreshed token to authenticate alice, got %v %v", p, err)
	}
	if _, err := h.auth.Authenticate(ctx, res.AccessToken); err != nil {
		t.Fatalf("expected original access token to stay valid, got %v", err)
	}
	if _, err := h.auth.Refresh(ctx, res.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected access token to be rejected by Refresh, got %v", err)
	}
}

func TestLogoutAllRevokesEverySession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first, principal := h.login(t, "alice@example.com")
	second, _ := h.login(t, "alice@example.com")
	other, _ := h.login(t, "bob@example.com")

	revoked, err := h.auth.LogoutAll(ctx, principal)
	if err != nil {
		t.Fatalf("LogoutAll returned error: %v", err)
	}
	if revoked != 4 {
		t.Fatalf("expected 4 revoked tokens, got %d", revoked)
	}
	for _, token := range []string{first.AccessToken, second.AccessToken} {
		if _, err := h.auth.Authenticate(ctx, token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected revoked token, got %v", err)
		}
	}
	if _, err := h.auth.Authenticate(ctx, other.AccessToken); err != nil {
		t.Fatalf("expected other user's session to survive, got %v", err)
	}
	if _, err := h.auth.LogoutAll(ctx, nil); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthenticateUsesPrincipalCache(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	principals := cache.NewPrincipalCache(16, time.Minute)
	h.auth.WithPrincipalCache(principals)

	res, first := h.login(t, "alice@example.com")
	if principals.Len() != 1 {
		t.Fatalf("expected cached principal, got %d entries", principals.Len())
	}
	cached, ok := principals.Get(h.attendeeA)
	if !ok || cached.TokenID != "" {
		t.Fatalf("expected cached principal without token id, got %+v", cached)
	}

	second, err := h.auth.Authenticate(ctx, res.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if second.TokenID != first.TokenID {
		t.Fatalf("expected token id %s, got %s", first.TokenID, second.TokenID)
	}
}

func TestAuthServiceRecordsMetrics(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	metrics, err := telemetry.NewAuthMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewAuthMetrics returned error: %v", err)
	}
	h.auth.WithMetrics(metrics)

	h.login(t, "alice@example.com")
	_, _ = h.auth.Login(ctx, "alice@example.com", "wrong")
	_, _ = h.auth.Authenticate(ctx, "garbage")

	if got := testutil.ToFloat64(metrics.Logins.WithLabelValues(telemetry.OutcomeSuccess)); got != 1 {
		t.Fatalf("expected 1 successful login, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.Logins.WithLabelValues(telemetry.OutcomeInvalidCredentials)); got != 1 {
		t.Fatalf("expected 1 failed login, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.TokensIssued.WithLabelValues("refresh")); got != 1 {
		t.Fatalf("expected 1 refresh token issued, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.Authentications.WithLabelValues(telemetry.OutcomeInvalidToken)); got != 1 {
		t.Fatalf("expected 1 invalid bearer, got %v", got)
	}
}

package usecase

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
	"github.com/shakibbs/Event-Backend/internal/infra/config"
	"github.com/shakibbs/Event-Backend/internal/infra/security"
	"github.com/shakibbs/Event-Backend/internal/repository/memory"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// harness wires the services over in-memory repositories, seeded with the default
// roles and one user per role.
type harness struct {
	users       *memory.UserRepository
	roles       *memory.RoleRepository
	permissions *memory.PermissionRepository
	events      *memory.EventRepository
	registry    *security.MemoryTokenRegistry
	codec       *security.TokenCodec
	hasher      *security.BcryptHasher

	auth      *AuthService
	eventSvc  *EventService
	roleSvc   *RoleService
	userSvc   *UserService
	roleIDs   map[string]int64
	superID   int64
	adminID   int64
	attendeeA int64
	attendeeB int64
}

const testPassword = "Corr3ct-Horse-Battery"

func newHarness(t *testing.T) *harness {
	t.Helper()
	repos := memory.NewRepositories()
	h := &harness{
		users:       repos.Users,
		roles:       repos.Roles,
		permissions: repos.Permissions,
		events:      repos.Events,
		registry:    security.NewMemoryTokenRegistry(4),
		hasher:      security.NewBcryptHasher(bcrypt.MinCost),
		roleIDs:     map[string]int64{},
	}

	codec, err := security.NewTokenCodec(testSecret)
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}
	h.codec = codec

	ctx := context.Background()
	if err := NewSeeder(h.users, h.roles, h.permissions, h.hasher, config.BootstrapSettings{}).Seed(ctx); err != nil {
		t.Fatalf("Seed returned error: %v", err)
	}
	for _, name := range []string{domain.RoleSuperAdmin, domain.RoleAdmin, domain.RoleAttendee} {
		role, err := h.roles.GetByName(ctx, name)
		if err != nil {
			t.Fatalf("seeded role %s missing: %v", name, err)
		}
		h.roleIDs[name] = role.ID
	}

	h.superID = h.addUser(t, "root@example.com", domain.RoleSuperAdmin)
	h.adminID = h.addUser(t, "admin@example.com", domain.RoleAdmin)
	h.attendeeA = h.addUser(t, "alice@example.com", domain.RoleAttendee)
	h.attendeeB = h.addUser(t, "bob@example.com", domain.RoleAttendee)

	jwtCfg := config.JWTSettings{
		Secret:            testSecret,
		AccessTokenTTLMs:  int64(45 * time.Minute / time.Millisecond),
		RefreshTokenTTLMs: int64(7 * 24 * time.Hour / time.Millisecond),
	}
	authz := NewAuthorizer()
	h.auth = NewAuthService(jwtCfg, h.users, h.roles, h.permissions, h.registry, h.codec, h.hasher)
	h.eventSvc = NewEventService(h.events, h.users, authz)
	h.roleSvc = NewRoleService(h.roles, h.permissions, authz)
	h.userSvc = NewUserService(h.users, h.roles, h.hasher, h.registry, authz)
	return h
}

func (h *harness) addUser(t *testing.T, email, role string) int64 {
	t.Helper()
	hash, err := h.hasher.Hash(testPassword)
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	id, err := h.users.Create(context.Background(), domain.User{
		Email:        email,
		FullName:     email,
		PasswordHash: hash,
		Status:       domain.UserStatusActive,
		RoleID:       h.roleIDs[role],
	})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return id
}

// principal loads the principal exactly as the authentication path does.
func (h *harness) principal(t *testing.T, userID int64) *domain.Principal {
	t.Helper()
	p, err := LoadPrincipal(context.Background(), userID, h.users, h.roles, h.permissions)
	if err != nil {
		t.Fatalf("LoadPrincipal(%d) returned error: %v", userID, err)
	}
	return p
}

// login returns an authenticated principal for the user.
func (h *harness) login(t *testing.T, email string) (*LoginResult, *domain.Principal) {
	t.Helper()
	res, err := h.auth.Login(context.Background(), email, testPassword)
	if err != nil {
		t.Fatalf("Login(%s) returned error: %v", email, err)
	}
	p, err := h.auth.Authenticate(context.Background(), res.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	return res, p
}

package usecase

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
	"github.com/shakibbs/Event-Backend/internal/infra/config"
	"github.com/shakibbs/Event-Backend/internal/infra/security"
	"github.com/shakibbs/Event-Backend/internal/repository/memory"
)

func TestSeedGrantsDefaultRoles(t *testing.T) {
	h := newHarness(t)

	want := map[int64][]string{
		h.superID:   {domain.PermEventManageAll, domain.PermRoleManageAll, domain.PermSystemConfig, domain.PermUserManageAll},
		h.adminID:   {domain.PermEventInvite, domain.PermEventManageOwn, domain.PermEventViewAll, domain.PermUserManageOwn},
		h.attendeeA: {domain.PermEventAttend, domain.PermEventViewInvited, domain.PermEventViewPublic},
	}
	for userID, perms := range want {
		p := h.principal(t, userID)
		got := p.Permissions()
		if len(got) != len(perms) {
			t.Fatalf("user %d: expected %v, got %v", userID, perms, got)
		}
		for i := range perms {
			if got[i] != perms[i] {
				t.Fatalf("user %d: expected %v, got %v", userID, perms, got)
			}
		}
		if p.Authorities()[0] != domain.RoleAuthorityPrefix+p.Role.Name {
			t.Fatalf("expected role authority first, got %v", p.Authorities())
		}
	}
}

func TestSeedIsIdempotentAndCreatesBootstrapAdmin(t *testing.T) {
	repos := memory.NewRepositories()
	users, roles, perms := repos.Users, repos.Roles, repos.Permissions
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	bootstrap := config.BootstrapSettings{
		AdminEmail:    "Root@Example.com",
		AdminPassword: "Sup3r-Secret-Passw0rd",
		AdminName:     "Root",
	}
	seeder := NewSeeder(users, roles, perms, hasher, bootstrap)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := seeder.Seed(ctx); err != nil {
			t.Fatalf("Seed run %d returned error: %v", i, err)
		}
	}

	allPerms, _ := perms.List(ctx)
	if len(allPerms) != len(domain.DefaultPermissions()) {
		t.Fatalf("expected %d permissions, got %d", len(domain.DefaultPermissions()), len(allPerms))
	}
	allRoles, _ := roles.List(ctx)
	if len(allRoles) != len(domain.DefaultRoles()) {
		t.Fatalf("expected %d roles, got %d", len(domain.DefaultRoles()), len(allRoles))
	}

	admin, err := users.GetByEmail(ctx, "root@example.com")
	if err != nil {
		t.Fatalf("bootstrap admin missing: %v", err)
	}
	if !hasher.Verify(bootstrap.AdminPassword, admin.PasswordHash) {
		t.Fatal("expected bootstrap password to verify")
	}
	p, err := LoadPrincipal(ctx, admin.ID, users, roles, perms)
	if err != nil {
		t.Fatalf("LoadPrincipal returned error: %v", err)
	}
	if p.Role.Name != domain.RoleSuperAdmin || !p.HasPermission(domain.PermRoleManageAll) {
		t.Fatalf("expected SuperAdmin principal, got %v", p.Authorities())
	}
}

package usecase

import (
	"errors"
	"testing"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
)

func principalWith(userID int64, perms ...string) *domain.Principal {
	granted := make([]domain.Permission, 0, len(perms))
	for _, name := range perms {
		granted = append(granted, domain.Permission{Name: name})
	}
	return domain.NewPrincipal(domain.User{ID: userID}, domain.Role{Name: "Custom"}, granted)
}

func TestAuthorizerRequire(t *testing.T) {
	authz := NewAuthorizer()
	p := principalWith(1, domain.PermEventAttend)

	if err := authz.Require(nil, domain.PermEventAttend); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if err := authz.Require(p, domain.PermEventAttend); err != nil {
		t.Fatalf("expected grant, got %v", err)
	}
	if err := authz.Require(p, domain.PermEventInvite); !errors.Is(err, ErrInsufficientPermission) {
		t.Fatalf("expected ErrInsufficientPermission, got %v", err)
	}
	if err := authz.RequireAny(p, domain.PermEventInvite, domain.PermEventAttend); err != nil {
		t.Fatalf("expected RequireAny to pass, got %v", err)
	}
	if authz.HasPermission(nil, domain.PermEventAttend) {
		t.Fatal("nil principal must hold nothing")
	}
}

func TestAuthorizerCanManage(t *testing.T) {
	authz := NewAuthorizer()
	event := domain.Event{ID: 10, OrganizerID: 7}

	cases := []struct {
		name      string
		principal *domain.Principal
		want      bool
	}{
		{"manage all on foreign event", principalWith(1, domain.PermEventManageAll), true},
		{"manage own on own event", principalWith(7, domain.PermEventManageOwn), true},
		{"manage own on foreign event", principalWith(1, domain.PermEventManageOwn), false},
		{"owner without grant", principalWith(7, domain.PermEventViewAll), false},
		{"anonymous", nil, false},
	}
	for _, tc := range cases {
		if got := authz.CanManage(tc.principal, event, EventManageRule); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}

	if err := authz.RequireManage(principalWith(1, domain.PermEventManageOwn), event, EventManageRule); !errors.Is(err, ErrInsufficientPermission) {
		t.Fatalf("expected ErrInsufficientPermission, got %v", err)
	}
}

func TestAuthorizerCanView(t *testing.T) {
	authz := NewAuthorizer()
	const owner, invited, stranger = 7, 8, 9

	public := domain.Event{OrganizerID: owner, Visibility: domain.VisibilityPublic}
	private := domain.Event{OrganizerID: owner, Visibility: domain.VisibilityPrivate}
	inviteOnly := domain.Event{OrganizerID: owner, Visibility: domain.VisibilityInviteOnly, Invitees: []int64{invited}}

	attendee := func(id int64) *domain.Principal {
		return principalWith(id, domain.PermEventViewPublic, domain.PermEventViewInvited, domain.PermEventAttend)
	}

	cases := []struct {
		name      string
		principal *domain.Principal
		event     domain.Event
		want      bool
	}{
		{"attendee reads public", attendee(stranger), public, true},
		{"no grant reads public", principalWith(stranger), public, false},
		{"attendee reads private", attendee(stranger), private, false},
		{"owner reads private", principalWith(owner), private, true},
		{"view all reads private", principalWith(stranger, domain.PermEventViewAll), private, true},
		{"manage all reads private", principalWith(stranger, domain.PermEventManageAll), private, true},
		{"invitee reads invite only", attendee(invited), inviteOnly, true},
		{"stranger reads invite only", attendee(stranger), inviteOnly, false},
		{"invitee without grant", principalWith(invited, domain.PermEventViewPublic), inviteOnly, false},
		{"anonymous", nil, public, false},
	}
	for _, tc := range cases {
		if got := authz.CanView(tc.principal, tc.event, EventViewRule); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestUserManageRuleTreatsSelfAsOwner(t *testing.T) {
	authz := NewAuthorizer()
	self := domain.User{ID: 3}

	if !authz.CanManage(principalWith(3, domain.PermUserManageOwn), self, UserManageRule) {
		t.Fatal("expected user.manage.own to cover the caller's own record")
	}
	if authz.CanManage(principalWith(4, domain.PermUserManageOwn), self, UserManageRule) {
		t.Fatal("expected user.manage.own not to cover other users")
	}
	if !authz.CanManage(principalWith(4, domain.PermUserManageAll), self, UserManageRule) {
		t.Fatal("expected user.manage.all to cover any user")
	}
}

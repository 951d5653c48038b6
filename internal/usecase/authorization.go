package usecase

import (
	"github.com/shakibbs/Event-Backend/internal/core/domain"
)

// OwnedResource is anything with a single owning user.
type OwnedResource interface {
	OwnerID() int64
}

// VisibleResource is an owned resource whose readability depends on its visibility.
type VisibleResource interface {
	OwnedResource
	ResourceVisibility() domain.EventVisibility
	IsInvited(userID int64) bool
}

// OwnershipRule names the broad grant and the owner-scoped grant for managing a resource.
type OwnershipRule struct {
	All string
	Own string
}

// VisibilityRule names the grants consulted when reading a visible resource.
type VisibilityRule struct {
	ManageAll   string
	ViewAll     string
	ViewPublic  string
	ViewInvited string
}

var (
	EventManageRule = OwnershipRule{All: domain.PermEventManageAll, Own: domain.PermEventManageOwn}
	UserManageRule  = OwnershipRule{All: domain.PermUserManageAll, Own: domain.PermUserManageOwn}
	EventViewRule   = VisibilityRule{
		ManageAll:   domain.PermEventManageAll,
		ViewAll:     domain.PermEventViewAll,
		ViewPublic:  domain.PermEventViewPublic,
		ViewInvited: domain.PermEventViewInvited,
	}
)

// Authorizer evaluates permission and ownership checks. It is stateless; the
// zero value is ready to use.
type Authorizer struct{}

// NewAuthorizer returns an Authorizer.
func NewAuthorizer() *Authorizer {
	return &Authorizer{}
}

// HasPermission reports whether the principal holds the permission. A nil principal holds nothing.
func (a *Authorizer) HasPermission(p *domain.Principal, permission string) bool {
	return p.HasPermission(permission)
}

// Require returns ErrUnauthenticated for a nil principal and ErrInsufficientPermission
// when the permission is missing.
func (a *Authorizer) Require(p *domain.Principal, permission string) error {
	if p == nil {
		return ErrUnauthenticated
	}
	if !p.HasPermission(permission) {
		return ErrInsufficientPermission
	}
	return nil
}

// RequireAny succeeds when at least one of the permissions is held.
func (a *Authorizer) RequireAny(p *domain.Principal, permissions ...string) error {
	if p == nil {
		return ErrUnauthenticated
	}
	for _, permission := range permissions {
		if p.HasPermission(permission) {
			return nil
		}
	}
	return ErrInsufficientPermission
}

// CanManage grants on the broad permission alone, otherwise needs the owner-scoped
// permission and ownership together.
func (a *Authorizer) CanManage(p *domain.Principal, resource OwnedResource, rule OwnershipRule) bool {
	if p == nil || resource == nil {
		return false
	}
	if rule.All != "" && p.HasPermission(rule.All) {
		return true
	}
	return rule.Own != "" && p.HasPermission(rule.Own) && resource.OwnerID() == p.UserID()
}

// CanView applies the visibility matrix: broad grants and the owner always see the
// resource; PUBLIC needs ViewPublic; PRIVATE nothing else; INVITE_ONLY needs
// ViewInvited and an invitation.
func (a *Authorizer) CanView(p *domain.Principal, resource VisibleResource, rule VisibilityRule) bool {
	if p == nil || resource == nil {
		return false
	}
	if p.HasPermission(rule.ManageAll) || p.HasPermission(rule.ViewAll) {
		return true
	}
	if resource.OwnerID() == p.UserID() {
		return true
	}

	switch resource.ResourceVisibility() {
	case domain.VisibilityPublic:
		return p.HasPermission(rule.ViewPublic)
	case domain.VisibilityInviteOnly:
		return p.HasPermission(rule.ViewInvited) && resource.IsInvited(p.UserID())
	default:
		return false
	}
}

// RequireManage is CanManage expressed as an error.
func (a *Authorizer) RequireManage(p *domain.Principal, resource OwnedResource, rule OwnershipRule) error {
	if p == nil {
		return ErrUnauthenticated
	}
	if !a.CanManage(p, resource, rule) {
		return ErrInsufficientPermission
	}
	return nil
}

// RequireView is CanView expressed as an error.
func (a *Authorizer) RequireView(p *domain.Principal, resource VisibleResource, rule VisibilityRule) error {
	if p == nil {
		return ErrUnauthenticated
	}
	if !a.CanView(p, resource, rule) {
		return ErrInsufficientPermission
	}
	return nil
}

package domain

import "strings"

// Principal is the fully resolved identity attached to an authenticated request.
type Principal struct {
	User        User
	Role        Role
	TokenID     string
	permissions map[string]struct{}
	authorities []string
}

// NewPrincipal builds a principal and its authority list: one role authority
// followed by one authority per permission.
func NewPrincipal(user User, role Role, permissions []Permission) *Principal {
	p := &Principal{
		User:        user.Sanitized(),
		Role:        role,
		permissions: make(map[string]struct{}, len(permissions)),
		authorities: make([]string, 0, len(permissions)+1),
	}

	if role.Name != "" {
		p.authorities = append(p.authorities, RoleAuthorityPrefix+role.Name)
	}
	for _, perm := range permissions {
		if perm.Name == "" {
			continue
		}
		if _, dup := p.permissions[perm.Name]; dup {
			continue
		}
		p.permissions[perm.Name] = struct{}{}
		p.authorities = append(p.authorities, PermissionAuthorityPrefix+perm.Name)
	}

	return p
}

// UserID returns the principal's user identifier.
func (p *Principal) UserID() int64 {
	if p == nil {
		return 0
	}
	return p.User.ID
}

// HasPermission reports whether the permission is granted through the principal's role.
func (p *Principal) HasPermission(name string) bool {
	if p == nil {
		return false
	}
	_, ok := p.permissions[name]
	return ok
}

// Permissions returns the granted permission names in authority order.
func (p *Principal) Permissions() []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.permissions))
	for _, a := range p.authorities {
		if strings.HasPrefix(a, PermissionAuthorityPrefix) {
			names = append(names, strings.TrimPrefix(a, PermissionAuthorityPrefix))
		}
	}
	return names
}

// Authorities returns a copy of the flattened authority list.
func (p *Principal) Authorities() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.authorities))
	copy(out, p.authorities)
	return out
}

// WithTokenID returns a shallow copy bound to the token that authenticated the request.
func (p *Principal) WithTokenID(tokenID string) *Principal {
	if p == nil {
		return nil
	}
	cp := *p
	cp.TokenID = tokenID
	return &cp
}

package domain

import "time"

// Permission names seeded at startup.
const (
	PermUserManageAll    = "user.manage.all"
	PermRoleManageAll    = "role.manage.all"
	PermEventManageAll   = "event.manage.all"
	PermSystemConfig     = "system.config"
	PermUserManageOwn    = "user.manage.own"
	PermEventManageOwn   = "event.manage.own"
	PermEventViewAll     = "event.view.all"
	PermEventInvite      = "event.invite"
	PermEventViewPublic  = "event.view.public"
	PermEventViewInvited = "event.view.invited"
	PermEventAttend      = "event.attend"
)

// Role names seeded at startup.
const (
	RoleSuperAdmin = "SuperAdmin"
	RoleAdmin      = "Admin"
	RoleAttendee   = "Attendee"
)

// Authority prefixes used when flattening a role and its permissions.
const (
	RoleAuthorityPrefix       = "ROLE_"
	PermissionAuthorityPrefix = "PERMISSION_"
)

// Role defines a named set of permissions.
type Role struct {
	ID          int64
	Name        string
	Description *string
	Deleted     bool
	CreatedAt   time.Time
}

// Permission defines a named capability.
type Permission struct {
	ID          int64
	Name        string
	Description string
}

// RolePermission links a role with a permission. A (role, permission) pair is unique.
type RolePermission struct {
	RoleID       int64
	PermissionID int64
}

// PermissionSeed describes a permission created at startup.
type PermissionSeed struct {
	Name        string
	Description string
}

// RoleSeed describes a role and the permission names it is granted at startup.
type RoleSeed struct {
	Name        string
	Permissions []string
}

// DefaultPermissions lists every permission the service seeds.
func DefaultPermissions() []PermissionSeed {
	return []PermissionSeed{
		{Name: PermUserManageAll, Description: "Can manage all users in the system"},
		{Name: PermRoleManageAll, Description: "Can manage all roles in the system"},
		{Name: PermEventManageAll, Description: "Can manage all events in the system"},
		{Name: PermSystemConfig, Description: "Can configure system settings"},
		{Name: PermUserManageOwn, Description: "Can manage own users/team"},
		{Name: PermEventManageOwn, Description: "Can manage own events"},
		{Name: PermEventViewAll, Description: "Can view all events"},
		{Name: PermEventInvite, Description: "Can invite users to events"},
		{Name: PermEventViewPublic, Description: "Can view public events"},
		{Name: PermEventViewInvited, Description: "Can view invited events"},
		{Name: PermEventAttend, Description: "Can attend events"},
	}
}

// DefaultRoles lists the seeded roles with their grants.
func DefaultRoles() []RoleSeed {
	return []RoleSeed{
		{Name: RoleSuperAdmin, Permissions: []string{PermUserManageAll, PermRoleManageAll, PermEventManageAll, PermSystemConfig}},
		{Name: RoleAdmin, Permissions: []string{PermUserManageOwn, PermEventManageOwn, PermEventViewAll, PermEventInvite}},
		{Name: RoleAttendee, Permissions: []string{PermEventViewPublic, PermEventViewInvited, PermEventAttend}},
	}
}

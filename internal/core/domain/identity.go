package domain

import "time"

// UserStatus enumerates possible account states.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusHeld     UserStatus = "held"
)

// Valid reports whether the status is one of the known account states.
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusHeld:
		return true
	default:
		return false
	}
}

// User mirrors the persisted representation in the users table.
// Every user holds exactly one role.
type User struct {
	ID           int64
	Email        string
	FullName     string
	PasswordHash string
	Status       UserStatus
	RoleID       int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLogin    *time.Time
}

// IsActive reports whether the account may authenticate.
func (u User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Sanitized returns a copy of the user without credential material.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}

// OwnerID makes a user record owned by the user it describes.
func (u User) OwnerID() int64 {
	return u.ID
}

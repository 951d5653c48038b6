package domain

import "time"

// TokenKind distinguishes access tokens from refresh tokens.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Valid reports whether the kind is one the service issues.
func (k TokenKind) Valid() bool {
	return k == TokenKindAccess || k == TokenKindRefresh
}

// BearerTokenType is returned to clients alongside issued tokens.
const BearerTokenType = "Bearer"

// RegistryEntry is the server-side record that keeps a bearer token live.
type RegistryEntry struct {
	UserID    int64
	ExpiresAt time.Time
}

// Expired reports whether the entry has elapsed at the supplied instant.
func (e RegistryEntry) Expired(at time.Time) bool {
	return !e.ExpiresAt.After(at)
}

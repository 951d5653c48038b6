package port

import (
	"context"
	"time"
)

// TokenRegistry maps token identifiers to the user they were issued for.
// A bearer token is only live while its identifier resolves here.
// Implementations must be safe for concurrent use without caller locking.
type TokenRegistry interface {
	// Put stores tokenID -> userID until ttl elapses, replacing any previous entry.
	Put(ctx context.Context, tokenID string, userID int64, ttl time.Duration) error
	// Resolve returns the user id for a live entry. Expired entries are dropped.
	Resolve(ctx context.Context, tokenID string) (int64, bool, error)
	// Revoke removes the entry; unknown identifiers are not an error.
	Revoke(ctx context.Context, tokenID string) error
	// RevokeUser removes every entry issued to the user and reports how many were live.
	RevokeUser(ctx context.Context, userID int64) (int, error)
	// Clear removes all entries.
	Clear(ctx context.Context) error
}

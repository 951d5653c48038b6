package security

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
	"github.com/shakibbs/Event-Backend/internal/core/port"
)

const defaultRegistryShards = 32

// ErrTokenIDRequired is returned when an operation receives a blank token id.
var ErrTokenIDRequired = errors.New("token id is required")

var _ port.TokenRegistry = (*MemoryTokenRegistry)(nil)

type tokenShard struct {
	mu      sync.RWMutex
	entries map[string]domain.RegistryEntry
}

type userShard struct {
	mu     sync.Mutex
	tokens map[int64]map[string]struct{}
}

// MemoryTokenRegistry is a process-local token registry. Entries are spread
// over lock-striped shards so unrelated tokens never contend on one mutex.
type MemoryTokenRegistry struct {
	shards []*tokenShard
	users  []*userShard
	now    func() time.Time
}

// NewMemoryTokenRegistry constructs a registry with the given number of shards.
func NewMemoryTokenRegistry(shards int) *MemoryTokenRegistry {
	if shards <= 0 {
		shards = defaultRegistryShards
	}
	r := &MemoryTokenRegistry{
		shards: make([]*tokenShard, shards),
		users:  make([]*userShard, shards),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for i := range r.shards {
		r.shards[i] = &tokenShard{entries: make(map[string]domain.RegistryEntry)}
		r.users[i] = &userShard{tokens: make(map[int64]map[string]struct{})}
	}
	return r
}

// WithClock overrides the internal clock for deterministic testing.
func (r *MemoryTokenRegistry) WithClock(clock func() time.Time) *MemoryTokenRegistry {
	if clock != nil {
		r.now = clock
	}
	return r
}

func (r *MemoryTokenRegistry) Put(_ context.Context, tokenID string, userID int64, ttl time.Duration) error {
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return ErrTokenIDRequired
	}

	shard := r.tokenShard(tokenID)
	shard.mu.Lock()
	previous, replaced := shard.entries[tokenID]
	shard.entries[tokenID] = domain.RegistryEntry{UserID: userID, ExpiresAt: r.now().Add(ttl)}
	shard.mu.Unlock()

	if replaced && previous.UserID != userID {
		r.unindex(previous.UserID, tokenID)
	}
	r.index(userID, tokenID)
	return nil
}

func (r *MemoryTokenRegistry) Resolve(_ context.Context, tokenID string) (int64, bool, error) {
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return 0, false, nil
	}

	shard := r.tokenShard(tokenID)
	shard.mu.RLock()
	entry, ok := shard.entries[tokenID]
	shard.mu.RUnlock()
	if !ok {
		return 0, false, nil
	}

	if entry.Expired(r.now()) {
		shard.mu.Lock()
		// Re-check under the write lock; a concurrent Put may have refreshed it.
		current, still := shard.entries[tokenID]
		dropped := still && current.Expired(r.now())
		if dropped {
			delete(shard.entries, tokenID)
		}
		shard.mu.Unlock()
		if dropped {
			r.unindex(current.UserID, tokenID)
		}
		return 0, false, nil
	}
	return entry.UserID, true, nil
}

func (r *MemoryTokenRegistry) Revoke(_ context.Context, tokenID string) error {
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return nil
	}

	shard := r.tokenShard(tokenID)
	shard.mu.Lock()
	entry, ok := shard.entries[tokenID]
	delete(shard.entries, tokenID)
	shard.mu.Unlock()

	if ok {
		r.unindex(entry.UserID, tokenID)
	}
	return nil
}

func (r *MemoryTokenRegistry) RevokeUser(_ context.Context, userID int64) (int, error) {
	us := r.userShard(userID)
	us.mu.Lock()
	tokens := us.tokens[userID]
	delete(us.tokens, userID)
	us.mu.Unlock()

	now := r.now()
	revoked := 0
	for tokenID := range tokens {
		shard := r.tokenShard(tokenID)
		shard.mu.Lock()
		if entry, ok := shard.entries[tokenID]; ok && entry.UserID == userID {
			delete(shard.entries, tokenID)
			if !entry.Expired(now) {
				revoked++
			}
		}
		shard.mu.Unlock()
	}
	return revoked, nil
}

func (r *MemoryTokenRegistry) Clear(_ context.Context) error {
	for _, shard := range r.shards {
		shard.mu.Lock()
		shard.entries = make(map[string]domain.RegistryEntry)
		shard.mu.Unlock()
	}
	for _, us := range r.users {
		us.mu.Lock()
		us.tokens = make(map[int64]map[string]struct{})
		us.mu.Unlock()
	}
	return nil
}

// Len reports the number of stored entries, including expired ones not yet pruned.
func (r *MemoryTokenRegistry) Len() int {
	total := 0
	for _, shard := range r.shards {
		shard.mu.RLock()
		total += len(shard.entries)
		shard.mu.RUnlock()
	}
	return total
}

// Prune drops entries that expired at or before now and returns how many were removed.
func (r *MemoryTokenRegistry) Prune(now time.Time) int {
	removed := 0
	for _, shard := range r.shards {
		var dropped []domain.RegistryEntry
		var ids []string
		shard.mu.Lock()
		for tokenID, entry := range shard.entries {
			if entry.Expired(now) {
				delete(shard.entries, tokenID)
				dropped = append(dropped, entry)
				ids = append(ids, tokenID)
			}
		}
		shard.mu.Unlock()

		for i, entry := range dropped {
			r.unindex(entry.UserID, ids[i])
		}
		removed += len(dropped)
	}
	return removed
}

// Sweep prunes expired entries every interval until ctx is cancelled.
func (r *MemoryTokenRegistry) Sweep(ctx context.Context, interval time.Duration, onPrune func(removed int)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := r.Prune(r.now())
			if onPrune != nil {
				onPrune(removed)
			}
		}
	}
}

func (r *MemoryTokenRegistry) index(userID int64, tokenID string) {
	us := r.userShard(userID)
	us.mu.Lock()
	set, ok := us.tokens[userID]
	if !ok {
		set = make(map[string]struct{})
		us.tokens[userID] = set
	}
	set[tokenID] = struct{}{}
	us.mu.Unlock()
}

func (r *MemoryTokenRegistry) unindex(userID int64, tokenID string) {
	us := r.userShard(userID)
	us.mu.Lock()
	if set, ok := us.tokens[userID]; ok {
		delete(set, tokenID)
		if len(set) == 0 {
			delete(us.tokens, userID)
		}
	}
	us.mu.Unlock()
}

func (r *MemoryTokenRegistry) tokenShard(tokenID string) *tokenShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(tokenID))
	return r.shards[h.Sum32()%uint32(len(r.shards))]
}

func (r *MemoryTokenRegistry) userShard(userID int64) *userShard {
	idx := uint64(userID) % uint64(len(r.users))
	return r.users[idx]
}

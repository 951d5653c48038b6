package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/shakibbs/Event-Backend/internal/core/port"
)

const (
	defaultRegistryPrefix = "ems:token"
	clearScanBatch        = 500
)

// ErrTokenIDRequired is returned when a blank token id is stored.
var ErrTokenIDRequired = errors.New("token id is required")

// TokenRegistry is the Redis-backed token registry shared by every API instance.
// Entries live under <prefix>:id:<tokenID> with a native TTL; a per-user set
// under <prefix>:user:<userID> indexes them for RevokeUser.
type TokenRegistry struct {
	client *red.Client
	prefix string
}

var _ port.TokenRegistry = (*TokenRegistry)(nil)

// NewTokenRegistry wires a Redis client into a token registry.
func NewTokenRegistry(client *red.Client, keyPrefix string) *TokenRegistry {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultRegistryPrefix
	}
	return &TokenRegistry{client: client, prefix: prefix}
}

func (r *TokenRegistry) Put(ctx context.Context, tokenID string, userID int64, ttl time.Duration) error {
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return ErrTokenIDRequired
	}

	key := r.tokenKey(tokenID)
	if ttl < time.Millisecond {
		// Already dead; make sure a stale entry does not linger.
		return r.Revoke(ctx, tokenID)
	}

	previous, err := r.client.Get(ctx, key).Result()
	if err != nil && !errors.Is(err, red.Nil) {
		return fmt.Errorf("redis get token: %w", err)
	}

	userKey := r.userKey(userID)
	_, err = r.client.TxPipelined(ctx, func(pipe red.Pipeliner) error {
		pipe.Set(ctx, key, strconv.FormatInt(userID, 10), ttl)
		pipe.SAdd(ctx, userKey, tokenID)
		if previous != "" && previous != strconv.FormatInt(userID, 10) {
			pipe.SRem(ctx, r.userKeyRaw(previous), tokenID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put token: %w", err)
	}

	// The index must outlive the longest token it references.
	current, err := r.client.PTTL(ctx, userKey).Result()
	if err != nil {
		return fmt.Errorf("redis ttl user index: %w", err)
	}
	if current < ttl {
		if err := r.client.PExpire(ctx, userKey, ttl).Err(); err != nil {
			return fmt.Errorf("redis expire user index: %w", err)
		}
	}
	return nil
}

func (r *TokenRegistry) Resolve(ctx context.Context, tokenID string) (int64, bool, error) {
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return 0, false, nil
	}

	value, err := r.client.Get(ctx, r.tokenKey(tokenID)).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("redis get token: %w", err)
	}

	userID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("redis token value %q: %w", value, err)
	}
	return userID, true, nil
}

func (r *TokenRegistry) Revoke(ctx context.Context, tokenID string) error {
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return nil
	}

	key := r.tokenKey(tokenID)
	owner, err := r.client.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return nil
		}
		return fmt.Errorf("redis revoke token: %w", err)
	}

	if err := r.client.SRem(ctx, r.userKeyRaw(owner), tokenID).Err(); err != nil {
		return fmt.Errorf("redis unindex token: %w", err)
	}
	return nil
}

func (r *TokenRegistry) RevokeUser(ctx context.Context, userID int64) (int, error) {
	userKey := r.userKey(userID)
	tokenIDs, err := r.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return 0, fmt.Errorf("redis list user tokens: %w", err)
	}

	owner := strconv.FormatInt(userID, 10)
	revoked := 0
	for _, tokenID := range tokenIDs {
		key := r.tokenKey(tokenID)
		value, err := r.client.Get(ctx, key).Result()
		if errors.Is(err, red.Nil) {
			continue
		}
		if err != nil {
			return revoked, fmt.Errorf("redis get token: %w", err)
		}
		if value != owner {
			continue
		}
		deleted, err := r.client.Del(ctx, key).Result()
		if err != nil {
			return revoked, fmt.Errorf("redis delete token: %w", err)
		}
		revoked += int(deleted)
	}

	if err := r.client.Del(ctx, userKey).Err(); err != nil {
		return revoked, fmt.Errorf("redis delete user index: %w", err)
	}
	return revoked, nil
}

func (r *TokenRegistry) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+":*", clearScanBatch).Result()
		if err != nil {
			return fmt.Errorf("redis scan registry: %w", err)
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis clear registry: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Ping reports whether the backing Redis is reachable.
func (r *TokenRegistry) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *TokenRegistry) tokenKey(tokenID string) string {
	return fmt.Sprintf("%s:id:%s", r.prefix, tokenID)
}

func (r *TokenRegistry) userKey(userID int64) string {
	return r.userKeyRaw(strconv.FormatInt(userID, 10))
}

func (r *TokenRegistry) userKeyRaw(userID string) string {
	return fmt.Sprintf("%s:user:%s", r.prefix, userID)
}

package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
	"github.com/shakibbs/Event-Backend/internal/core/port"
)

const (
	defaultPrincipalSize = 1024
	defaultPrincipalTTL  = 30 * time.Second
)

// PrincipalCache keeps recently resolved principals so that authenticated
// requests skip the user/role/permission lookups. Entries are stored without a
// token id and age out after the configured TTL.
type PrincipalCache struct {
	cache *lru.LRU[int64, *domain.Principal]
}

var _ port.PrincipalCache = (*PrincipalCache)(nil)

// NewPrincipalCache creates an expirable LRU cache. A non-positive ttl falls back to the default.
func NewPrincipalCache(size int, ttl time.Duration) *PrincipalCache {
	if size <= 0 {
		size = defaultPrincipalSize
	}
	if ttl <= 0 {
		ttl = defaultPrincipalTTL
	}
	return &PrincipalCache{cache: lru.NewLRU[int64, *domain.Principal](size, nil, ttl)}
}

func (c *PrincipalCache) Get(userID int64) (*domain.Principal, bool) {
	return c.cache.Get(userID)
}

func (c *PrincipalCache) Add(userID int64, principal *domain.Principal) {
	if principal == nil {
		return
	}
	c.cache.Add(userID, principal.WithTokenID(""))
}

func (c *PrincipalCache) Remove(userID int64) {
	c.cache.Remove(userID)
}

func (c *PrincipalCache) Purge() {
	c.cache.Purge()
}

// Len reports the number of cached principals.
func (c *PrincipalCache) Len() int {
	return c.cache.Len()
}

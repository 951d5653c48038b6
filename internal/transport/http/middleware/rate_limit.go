package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	appLogger "github.com/shakibbs/Event-Backend/internal/infra/logger"
)

const (
	rateLimitProblemType  = "https://events.example.com/errors/rate-limit-exceeded"
	rateLimitProblemTitle = "Rate Limit Exceeded"
	defaultBucketIdleTTL  = 10 * time.Minute
)

// IdentifierFunc extracts the identifier used to scope rate limits (e.g., client IP).
type IdentifierFunc func(*gin.Context) (string, bool)

// RateLimitRule configures a token bucket per identifier: Limit requests per
// Window on average, with bursts of up to Burst.
type RateLimitRule struct {
	Name       string
	Limit      int
	Window     time.Duration
	Burst      int
	Identifier IdentifierFunc
}

// ProblemDetails represents an RFC 9457 compatible error payload for rate limits.
type ProblemDetails struct {
	Type       string `json:"type"`
	Title      string `json:"title"`
	Status     int    `json:"status"`
	Detail     string `json:"detail"`
	Instance   string `json:"instance"`
	RetryAfter int    `json:"retry_after"`
	TraceID    string `json:"trace_id,omitempty"`
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per rule and identifier in memory.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	idleTTL time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewRateLimiter builds a reusable rate limiter middleware helper.
func NewRateLimiter(logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		idleTTL: defaultBucketIdleTTL,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock allows injection of a custom clock.
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	if now != nil {
		rl.now = now
	}
	return rl
}

// ClientIPIdentifier builds an IdentifierFunc using the request's client IP.
func ClientIPIdentifier() IdentifierFunc {
	return func(c *gin.Context) (string, bool) {
		ip := c.ClientIP()
		if ip == "" {
			return "", false
		}
		return ip, true
	}
}

// PerMinute is a convenience constructor for the login throttle configuration.
func PerMinute(name string, perMinute, burst int) RateLimitRule {
	return RateLimitRule{
		Name:       name,
		Limit:      perMinute,
		Window:     time.Minute,
		Burst:      burst,
		Identifier: ClientIPIdentifier(),
	}
}

// RateLimit returns a Gin middleware enforcing the provided rules.
func (rl *RateLimiter) RateLimit(rules ...RateLimitRule) gin.HandlerFunc {
	filtered := make([]RateLimitRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Identifier == nil || rule.Limit <= 0 || rule.Window <= 0 {
			continue
		}
		if rule.Name == "" {
			rule.Name = "default"
		}
		if rule.Burst <= 0 {
			rule.Burst = rule.Limit
		}
		filtered = append(filtered, rule)
	}

	return func(c *gin.Context) {
		if len(filtered) == 0 {
			c.Next()
			return
		}

		now := rl.now()
		for _, rule := range filtered {
			identifier, ok := rule.Identifier(c)
			if !ok || identifier == "" {
				continue
			}

			lim := rl.limiter(rule, identifier, now)
			reservation := lim.ReserveN(now, 1)
			delay := reservation.DelayFrom(now)
			if !reservation.OK() || delay > 0 {
				reservation.CancelAt(now)
				rl.logger.Warn("rate limit exceeded",
					zap.String("rule", rule.Name),
					zap.String("client_ip", appLogger.MaskIP(identifier)),
				)
				rl.respondRateLimited(c, rule, delay)
				return
			}

			remaining := int(math.Floor(lim.TokensAt(now)))
			headers := c.Writer.Header()
			headers.Set("X-RateLimit-Limit", strconv.Itoa(rule.Limit))
			headers.Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
		}

		c.Next()
	}
}

// Sweep drops buckets idle for longer than the idle TTL until ctx is cancelled.
func (rl *RateLimiter) Sweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.prune(rl.now())
		}
	}
}

func (rl *RateLimiter) prune(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	removed := 0
	for key, b := range rl.buckets {
		if now.Sub(b.lastSeen) > rl.idleTTL {
			delete(rl.buckets, key)
			removed++
		}
	}
	return removed
}

func (rl *RateLimiter) limiter(rule RateLimitRule, identifier string, now time.Time) *rate.Limiter {
	key := fmt.Sprintf("%s:%s", rule.Name, identifier)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	b, ok := rl.buckets[key]
	if !ok {
		every := rule.Window / time.Duration(rule.Limit)
		b = &bucket{limiter: rate.NewLimiter(rate.Every(every), rule.Burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

func (rl *RateLimiter) respondRateLimited(c *gin.Context, rule RateLimitRule, delay time.Duration) {
	if delay <= 0 || delay == rate.InfDuration {
		delay = rule.Window
	}
	retrySeconds := int(math.Ceil(delay.Seconds()))

	instance := c.FullPath()
	if instance == "" {
		instance = c.Request.URL.Path
	}

	headers := c.Writer.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(rule.Limit))
	headers.Set("X-RateLimit-Remaining", "0")
	headers.Set("Retry-After", strconv.Itoa(retrySeconds))

	c.AbortWithStatusJSON(http.StatusTooManyRequests, ProblemDetails{
		Type:       rateLimitProblemType,
		Title:      rateLimitProblemTitle,
		Status:     http.StatusTooManyRequests,
		Detail:     fmt.Sprintf("Too many requests. Try again in %d seconds.", retrySeconds),
		Instance:   instance,
		RetryAfter: retrySeconds,
		TraceID:    GetTraceID(c),
	})
}

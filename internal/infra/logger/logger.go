package logger

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName is stamped on every entry written by the process logger.
const ServiceName = "event-backend"

var (
	base     *zap.Logger
	baseOnce sync.Once
)

// New builds the process-wide logger once. Production emits sampled JSON;
// every other environment gets colored console output at debug level.
func New(env string) (*zap.Logger, error) {
	var err error
	baseOnce.Do(func() {
		var cfg zap.Config
		if env == "production" {
			cfg = zap.NewProductionConfig()
			cfg.EncoderConfig.TimeKey = "ts"
			cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		} else {
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		cfg.InitialFields = map[string]any{"service": ServiceName, "env": env}

		base, err = cfg.Build()
	})
	return base, err
}

// WithContext returns the process logger tagged with the request id carried by ctx.
// Before New has run it returns a no-op logger.
func WithContext(ctx context.Context) *zap.Logger {
	if base == nil {
		return zap.NewNop()
	}
	if id := RequestIDFromContext(ctx); id != "" {
		return base.With(zap.String("request_id", id))
	}
	return base
}

// RequestIDKey is the context key holding the request correlation id.
type RequestIDKey struct{}

// RequestIDFromContext returns the correlation id stored on ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(RequestIDKey{}).(string)
	return id
}

// MaskEmail keeps at most three leading characters of the mailbox and the
// whole domain, e.g. john.doe@example.com -> joh***@example.com.
func MaskEmail(email string) string {
	if email == "" {
		return ""
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok || domain == "" {
		return "***"
	}
	if len(local) > 3 {
		local = local[:3]
	}
	return local + "***@" + domain
}

// MaskIP hides the host part of an address: the last two IPv4 octets or
// everything after the fourth IPv6 group.
func MaskIP(ip string) string {
	switch {
	case ip == "":
		return ""
	case strings.Count(ip, ".") == 3:
		octets := strings.Split(ip, ".")
		return octets[0] + "." + octets[1] + ".*.*"
	case strings.Count(ip, ":") >= 3:
		groups := strings.Split(ip, ":")
		return strings.Join(groups[:4], ":") + ":*:*:*:*"
	default:
		return "***"
	}
}

// MaskToken reduces a bearer string to its first and last four characters.
func MaskToken(token string) string {
	if len(token) <= 16 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

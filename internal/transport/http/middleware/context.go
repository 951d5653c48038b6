package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
)

const (
	// TraceIDHeader is the HTTP header name for trace ID
	TraceIDHeader = "X-Trace-ID"
	// TraceIDKey is the gin context key for trace ID
	TraceIDKey = "trace_id"
	// PrincipalKey is the gin context key for the authenticated principal
	PrincipalKey = "principal"
)

type principalContextKey struct{}

// EnrichContext assigns a trace id to each request and echoes it back.
func EnrichContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)

		c.Next()
	}
}

// GetTraceID retrieves the trace ID from the context
func GetTraceID(c *gin.Context) string {
	if traceID, exists := c.Get(TraceIDKey); exists {
		if id, ok := traceID.(string); ok {
			return id
		}
	}
	return ""
}

// GetPrincipal returns the authenticated principal, or nil for anonymous requests.
func GetPrincipal(c *gin.Context) *domain.Principal {
	if v, exists := c.Get(PrincipalKey); exists {
		if p, ok := v.(*domain.Principal); ok {
			return p
		}
	}
	return nil
}

// PrincipalFromContext returns the principal stored on a request context.
func PrincipalFromContext(ctx context.Context) *domain.Principal {
	if ctx == nil {
		return nil
	}
	p, _ := ctx.Value(principalContextKey{}).(*domain.Principal)
	return p
}

func setPrincipal(c *gin.Context, p *domain.Principal) {
	c.Set(PrincipalKey, p)
	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), principalContextKey{}, p))
}

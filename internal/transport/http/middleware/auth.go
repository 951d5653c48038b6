package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
	appLogger "github.com/shakibbs/Event-Backend/internal/infra/logger"
	"github.com/shakibbs/Event-Backend/internal/usecase"
)

// Authenticator resolves a bearer token into a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, bearer string) (*domain.Principal, error)
}

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Authenticate attaches a principal to requests carrying a live access token.
// It never rejects a request: any failure leaves the request anonymous and
// RequireAuth decides whether that matters.
func Authenticate(authenticator Authenticator, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		if token, ok := BearerToken(c.GetHeader("Authorization")); ok && authenticator != nil {
			if principal := resolvePrincipal(c, authenticator, token, log); principal != nil {
				setPrincipal(c, principal)
			}
		}
		c.Next()
	}
}

func resolvePrincipal(c *gin.Context, authenticator Authenticator, token string, log *zap.Logger) (principal *domain.Principal) {
	ctx := c.Request.Context()
	defer func() {
		if r := recover(); r != nil {
			log.Error("authentication panicked", zap.String("trace_id", GetTraceID(c)), zap.Any("panic", r))
			principal = nil
		}
	}()

	principal, err := authenticator.Authenticate(ctx, token)
	if err == nil {
		return principal
	}

	switch {
	case errors.Is(err, usecase.ErrTokenSubjectMismatch):
		log.Error("bearer token rejected: registry subject mismatch",
			zap.String("trace_id", GetTraceID(c)),
			zap.String("client_ip", appLogger.MaskIP(c.ClientIP())),
		)
	case errors.Is(err, usecase.ErrInvalidToken), errors.Is(err, usecase.ErrInactiveAccount):
		log.Debug("bearer token rejected",
			zap.String("trace_id", GetTraceID(c)),
			zap.String("token", appLogger.MaskToken(token)),
			zap.Error(err),
		)
	default:
		log.Warn("bearer token check failed", zap.String("trace_id", GetTraceID(c)), zap.Error(err))
	}
	return nil
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetPrincipal(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, newErrorResponse(c, "authentication required"))
			return
		}
		c.Next()
	}
}

// RequirePermission rejects anonymous requests with 401 and principals lacking
// the permission with 403.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := GetPrincipal(c)
		if principal == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, newErrorResponse(c, "authentication required"))
			return
		}
		if !principal.HasPermission(permission) {
			c.AbortWithStatusJSON(http.StatusForbidden, newErrorResponse(c, "insufficient permissions"))
			return
		}
		c.Next()
	}
}

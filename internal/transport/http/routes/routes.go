package routes

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/shakibbs/Event-Backend/internal/infra/config"
	"github.com/shakibbs/Event-Backend/internal/transport/http/handlers"
	"github.com/shakibbs/Event-Backend/internal/transport/http/middleware"
	"github.com/shakibbs/Event-Backend/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth   *usecase.AuthService
	Users  *usecase.UserService
	Events *usecase.EventService
	Roles  *usecase.RoleService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	HTTPMetrics *middleware.HTTPMetrics
	// Gatherer backs /metrics; the default registry is used when nil.
	Gatherer prometheus.Gatherer
	Services ServiceSet
	Database DatabaseChecker
	Cache    CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	Name() string
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config != nil && deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(deps.HTTPMetrics.Handler())
	r.Use(middleware.Logger(log))
	if deps.Services.Auth != nil {
		r.Use(middleware.Authenticate(deps.Services.Auth, log))
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck(deps.Cache.Name(), deps.Cache.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(metricsHandler(deps.Gatherer)))

	api := r.Group("/api")
	{
		if deps.Services.Auth != nil {
			authHandler := handlers.NewAuthHandler(deps.Services.Auth)
			authHandler.RegisterRoutes(api.Group("/auth"), buildLoginMiddlewares(deps)...)
		}

		if deps.Services.Users != nil {
			handlers.NewUserHandler(deps.Services.Users).RegisterRoutes(api.Group("/users"))
		}

		if deps.Services.Events != nil {
			handlers.NewEventHandler(deps.Services.Events).RegisterRoutes(api.Group("/events"))
		}

		if deps.Services.Roles != nil {
			roleHandler := handlers.NewRoleHandler(deps.Services.Roles)
			roleHandler.RegisterRoutes(api.Group("/roles"))
			roleHandler.RegisterPermissionRoutes(api.Group("/permissions"))
		}
	}

	return r
}

func metricsHandler(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func buildLoginMiddlewares(deps Dependencies) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil {
		return nil
	}

	limit := deps.Config.RateLimit.LoginPerMinute
	if limit <= 0 {
		return nil
	}

	rule := middleware.PerMinute("auth_login_ip", limit, deps.Config.RateLimit.LoginBurst)
	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}

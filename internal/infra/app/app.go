package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/shakibbs/Event-Backend/internal/core/port"
	"github.com/shakibbs/Event-Backend/internal/infra/cache"
	"github.com/shakibbs/Event-Backend/internal/infra/config"
	"github.com/shakibbs/Event-Backend/internal/infra/database"
	kafkainfra "github.com/shakibbs/Event-Backend/internal/infra/kafka"
	"github.com/shakibbs/Event-Backend/internal/infra/logger"
	redisinfra "github.com/shakibbs/Event-Backend/internal/infra/redis"
	"github.com/shakibbs/Event-Backend/internal/infra/security"
	"github.com/shakibbs/Event-Backend/internal/infra/telemetry"
	memoryrepo "github.com/shakibbs/Event-Backend/internal/repository/memory"
	postgresrepo "github.com/shakibbs/Event-Backend/internal/repository/postgres"
	redisrepo "github.com/shakibbs/Event-Backend/internal/repository/redis"
	"github.com/shakibbs/Event-Backend/internal/transport/http/middleware"
	"github.com/shakibbs/Event-Backend/internal/transport/http/routes"
	"github.com/shakibbs/Event-Backend/internal/usecase"
)

const rateLimitSweepInterval = 5 * time.Minute

type Application struct {
	cfg         *config.AppConfig
	engine      *gin.Engine
	logger      *zap.Logger
	pool        *pgxpool.Pool
	redis       *redisinfra.Client
	producer    *kafkainfra.Producer
	registry    *security.MemoryTokenRegistry
	rateLimiter *middleware.RateLimiter
}

type repositories struct {
	users       port.UserRepository
	roles       port.RoleRepository
	permissions port.PermissionRepository
	events      port.EventRepository
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &Application{cfg: cfg, logger: log}
	engine, err := a.wire(ctx)
	if err != nil {
		a.close()
		return nil, err
	}
	a.engine = engine
	return a, nil
}

func (a *Application) wire(ctx context.Context) (*gin.Engine, error) {
	cfg, log := a.cfg, a.logger

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	repos, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}

	tokens, err := a.openTokenRegistry(reg)
	if err != nil {
		return nil, err
	}

	codec, err := security.NewTokenCodec(cfg.JWT.Secret)
	if err != nil {
		return nil, fmt.Errorf("init token codec: %w", err)
	}
	hasher := security.NewBcryptHasher(cfg.Bcrypt.Cost)
	if hasher.Cost() != cfg.Bcrypt.Cost {
		log.Warn("bcrypt cost out of range, using default",
			zap.Int("configured", cfg.Bcrypt.Cost),
			zap.Int("effective", hasher.Cost()),
		)
	}

	authMetrics, err := telemetry.NewAuthMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("init auth metrics: %w", err)
	}
	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{Registerer: reg})
	if err != nil {
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	principals := cache.NewPrincipalCache(cfg.Cache.PrincipalSize, cfg.Cache.PrincipalTTL)
	authz := usecase.NewAuthorizer()

	authService := usecase.NewAuthService(cfg.JWT, repos.users, repos.roles, repos.permissions, tokens, codec, hasher).
		WithAuditPublisher(a.auditPublisher()).
		WithPrincipalCache(principals).
		WithMetrics(authMetrics).
		WithLogger(log)
	userService := usecase.NewUserService(repos.users, repos.roles, hasher, tokens, authz).
		WithPrincipalCache(principals).
		WithLogger(log)
	eventService := usecase.NewEventService(repos.events, repos.users, authz).
		WithLogger(log)
	roleService := usecase.NewRoleService(repos.roles, repos.permissions, authz).
		WithPrincipalCache(principals).
		WithLogger(log)

	seeder := usecase.NewSeeder(repos.users, repos.roles, repos.permissions, hasher, cfg.Bootstrap).WithLogger(log)
	if err := seeder.Seed(ctx); err != nil {
		return nil, fmt.Errorf("seed rbac data: %w", err)
	}

	a.rateLimiter = middleware.NewRateLimiter(log)

	deps := routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: a.rateLimiter,
		HTTPMetrics: httpMetrics,
		Gatherer:    reg,
		Services: routes.ServiceSet{
			Auth:   authService,
			Users:  userService,
			Events: eventService,
			Roles:  roleService,
		},
	}
	// Interfaces stay nil unless the backend is in use so readiness skips them.
	if a.pool != nil {
		deps.Database = a.pool
	}
	if a.redis != nil {
		deps.Cache = a.redis
	}

	return routes.Register(deps), nil
}

func (a *Application) openStorage(ctx context.Context) (repositories, error) {
	if a.cfg.Storage.Backend == "memory" {
		a.logger.Warn("using in-memory storage; data is lost on restart")
		repos := memoryrepo.NewRepositories()
		return repositories{repos.Users, repos.Roles, repos.Permissions, repos.Events}, nil
	}

	pool, err := database.NewPostgresPool(ctx, a.cfg.Postgres, a.logger)
	if err != nil {
		return repositories{}, fmt.Errorf("init postgres: %w", err)
	}
	a.pool = pool

	schema := a.cfg.Postgres.Schema
	if schema == "" {
		schema = "public"
	}
	if err := postgresrepo.EnsureSchema(ctx, pool, schema); err != nil {
		return repositories{}, err
	}

	repos := postgresrepo.NewRepositories(pool, schema)
	return repositories{repos.Users, repos.Roles, repos.Permissions, repos.Events}, nil
}

func (a *Application) openTokenRegistry(reg prometheus.Registerer) (port.TokenRegistry, error) {
	if a.cfg.Registry.Backend == "redis" {
		client, err := redisinfra.NewClient(a.cfg.Redis, a.logger)
		if err != nil {
			return nil, fmt.Errorf("init redis: %w", err)
		}
		a.redis = client
		return redisrepo.NewTokenRegistry(client.Client(), a.cfg.Redis.RegistryPrefix), nil
	}

	a.registry = security.NewMemoryTokenRegistry(a.cfg.Registry.Shards)
	if err := telemetry.RegisterRegistrySize(reg, a.registry.Len); err != nil {
		return nil, fmt.Errorf("register registry gauge: %w", err)
	}
	return a.registry, nil
}

func (a *Application) auditPublisher() port.AuditPublisher {
	if len(a.cfg.Kafka.Brokers) == 0 {
		a.logger.Info("kafka brokers not configured, using stub publisher")
		return kafkainfra.NewStubPublisher(a.logger)
	}

	producer, err := kafkainfra.NewProducer(a.cfg.Kafka, a.logger)
	if err != nil {
		a.logger.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
		return kafkainfra.NewStubPublisher(a.logger)
	}
	a.producer = producer
	a.logger.Info("kafka audit publisher initialized", zap.Strings("brokers", a.cfg.Kafka.Brokers))
	return kafkainfra.NewAuditPublisher(producer, a.cfg.App, a.logger)
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer a.close()

	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()

	if a.registry != nil {
		go a.registry.Sweep(bgCtx, a.cfg.Registry.SweepInterval, func(removed int) {
			if removed > 0 {
				a.logger.Debug("pruned expired tokens", zap.Int("removed", removed))
			}
		})
	}
	go a.rateLimiter.Sweep(bgCtx, rateLimitSweepInterval)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting event management API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
		zap.String("storage", a.cfg.Storage.Backend),
		zap.String("registry", a.cfg.Registry.Backend),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		a.logger.Info("server stopped")
		return nil
	case err := <-serverErrCh:
		return err
	}
}

func (a *Application) close() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("close kafka producer", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

package database

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/shakibbs/Event-Backend/internal/infra/config"
)

// NewPostgresPool opens the pool holding users, roles and events and verifies
// it with a ping before handing it out.
func NewPostgresPool(ctx context.Context, cfg config.PostgresSettings, log *zap.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool for %s: %w", cfg.Database, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres %s not answering: %w", poolCfg.ConnConfig.Host, err)
	}

	log.Info("event store connected",
		zap.String("host", poolCfg.ConnConfig.Host),
		zap.String("database", cfg.Database),
		zap.String("search_path", poolCfg.ConnConfig.RuntimeParams["search_path"]),
		zap.Int32("max_conns", poolCfg.MaxConns),
	)
	return pool, nil
}

// PoolConfig turns settings into a pgxpool config. Zero-valued limits keep the
// pgx defaults and an empty schema resolves to public.
func PoolConfig(cfg config.PostgresSettings) (*pgxpool.Config, error) {
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.Database,
		RawQuery: url.Values{"sslmode": {cfg.SSLMode}}.Encode(),
	}
	if cfg.SSLMode == "" {
		dsn.RawQuery = ""
	}

	poolCfg, err := pgxpool.ParseConfig(dsn.String())
	if err != nil {
		return nil, fmt.Errorf("invalid postgres settings: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.HealthCheckPeriod > 0 {
		poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod
	}

	searchPath := "public"
	if cfg.Schema != "" && cfg.Schema != "public" {
		searchPath = cfg.Schema + ",public"
	}
	poolCfg.ConnConfig.RuntimeParams["search_path"] = searchPath
	return poolCfg, nil
}

package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shakibbs/Event-Backend/internal/infra/config"
)

const connectTimeout = 5 * time.Second

// Client owns the connection pool backing the token registry.
type Client struct {
	rdb    *redis.Client
	addr   string
	logger *zap.Logger
}

// NewClient dials Redis and fails fast when the first PING does not answer
// within connectTimeout.
func NewClient(cfg config.RedisSettings, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	opts := &redis.Options{
		Addr:            addr,
		Password:        cfg.Password,
		DB:              cfg.DB,
		PoolSize:        10,
		MinIdleConns:    2,
		MaxRetries:      3,
		DialTimeout:     connectTimeout,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
		PoolTimeout:     4 * time.Second,
		ConnMaxIdleTime: 5 * time.Minute,
	}
	if cfg.TLSEnabled {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("token registry redis at %s unreachable: %w", addr, err)
	}

	logger.Info("token registry redis ready",
		zap.String("addr", addr),
		zap.Int("db", cfg.DB),
		zap.Bool("tls", cfg.TLSEnabled),
		zap.String("key_prefix", cfg.RegistryPrefix),
	)
	return &Client{rdb: rdb, addr: addr, logger: logger}, nil
}

// Client exposes the pool to the registry implementation.
func (c *Client) Client() *redis.Client {
	return c.rdb
}

// Name labels the dependency in readiness reports.
func (c *Client) Name() string {
	return "redis"
}

// HealthCheck pings the server.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis at %s: %w", c.addr, err)
	}
	return nil
}

// Close drains the pool.
func (c *Client) Close() error {
	stats := c.rdb.PoolStats()
	c.logger.Info("closing token registry redis",
		zap.String("addr", c.addr),
		zap.Uint32("open_conns", stats.TotalConns),
	)
	if err := c.rdb.Close(); err != nil {
		return fmt.Errorf("close redis pool: %w", err)
	}
	return nil
}

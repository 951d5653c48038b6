package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/shakibbs/Event-Backend/internal/infra/security"
)

// envPrefix namespaces every environment variable, e.g. EMS_JWT_SECRET.
const envPrefix = "EMS"

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	Storage   StorageSettings   `mapstructure:"storage"`
	Postgres  PostgresSettings  `mapstructure:"postgres"`
	Redis     RedisSettings     `mapstructure:"redis"`
	Kafka     KafkaSettings     `mapstructure:"kafka"`
	JWT       JWTSettings       `mapstructure:"jwt"`
	Bcrypt    BcryptSettings    `mapstructure:"bcrypt"`
	Registry  RegistrySettings  `mapstructure:"registry"`
	Cache     CacheSettings     `mapstructure:"cache"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
	Bootstrap BootstrapSettings `mapstructure:"bootstrap"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// StorageSettings selects where users, roles and events live
type StorageSettings struct {
	Backend string `mapstructure:"backend"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	Schema            string        `mapstructure:"schema"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures Redis connection and TLS
type RedisSettings struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	DB             int    `mapstructure:"db"`
	Password       string `mapstructure:"password"`
	TLSEnabled     bool   `mapstructure:"tls_enabled"`
	RegistryPrefix string `mapstructure:"registry_prefix"`
}

// KafkaSettings configures the audit event producer
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
}

// JWTSettings carries the HMAC secret and token lifetimes. Lifetimes are
// expressed in milliseconds to stay compatible with existing deployments.
type JWTSettings struct {
	Secret            string `mapstructure:"secret"`
	AccessTokenTTLMs  int64  `mapstructure:"access_token_ttl_ms"`
	RefreshTokenTTLMs int64  `mapstructure:"refresh_token_ttl_ms"`
}

// AccessTokenTTL returns the access token lifetime.
func (s JWTSettings) AccessTokenTTL() time.Duration {
	return time.Duration(s.AccessTokenTTLMs) * time.Millisecond
}

// RefreshTokenTTL returns the refresh token lifetime.
func (s JWTSettings) RefreshTokenTTL() time.Duration {
	return time.Duration(s.RefreshTokenTTLMs) * time.Millisecond
}

// BcryptSettings configures password hashing cost
type BcryptSettings struct {
	Cost int `mapstructure:"cost"`
}

// RegistrySettings selects the token registry backend
type RegistrySettings struct {
	Backend       string        `mapstructure:"backend"`
	Shards        int           `mapstructure:"shards"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// CacheSettings configures the resolved-principal cache
type CacheSettings struct {
	PrincipalSize int           `mapstructure:"principal_size"`
	PrincipalTTL  time.Duration `mapstructure:"principal_ttl"`
}

// RateLimitSettings configures per-IP throttling of the login endpoint
type RateLimitSettings struct {
	LoginPerMinute int `mapstructure:"login_per_minute"`
	LoginBurst     int `mapstructure:"login_burst"`
}

// BootstrapSettings describes the optional SuperAdmin created at startup
type BootstrapSettings struct {
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
	AdminName     string `mapstructure:"admin_name"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(envPrefix)

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"storage.backend",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.schema",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.registry_prefix",
		"kafka.brokers",
		"kafka.topic_prefix",
		"jwt.secret",
		"jwt.access_token_ttl_ms",
		"jwt.refresh_token_ttl_ms",
		"bcrypt.cost",
		"registry.backend",
		"registry.shards",
		"registry.sweep_interval",
		"cache.principal_size",
		"cache.principal_ttl",
		"rate_limit.login_per_minute",
		"rate_limit.login_burst",
		"bootstrap.admin_email",
		"bootstrap.admin_password",
		"bootstrap.admin_name",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *AppConfig) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if len(c.JWT.Secret) < security.MinSecretLength {
		return fmt.Errorf("jwt.secret must be at least %d bytes", security.MinSecretLength)
	}
	if c.JWT.AccessTokenTTLMs <= 0 {
		return errors.New("jwt.access_token_ttl_ms must be positive")
	}
	if c.JWT.RefreshTokenTTLMs <= 0 {
		return errors.New("jwt.refresh_token_ttl_ms must be positive")
	}
	switch c.Storage.Backend {
	case "memory", "postgres":
	default:
		return fmt.Errorf("storage.backend must be memory or postgres, got %q", c.Storage.Backend)
	}
	switch c.Registry.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("registry.backend must be memory or redis, got %q", c.Registry.Backend)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "event-management")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)

	v.SetDefault("storage.backend", "postgres")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "ems")
	v.SetDefault("postgres.password", "ems_password")
	v.SetDefault("postgres.database", "ems")
	v.SetDefault("postgres.schema", "ems")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)
	v.SetDefault("redis.registry_prefix", "ems:token")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "ems")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.access_token_ttl_ms", 45*60*1000)
	v.SetDefault("jwt.refresh_token_ttl_ms", 7*24*60*60*1000)

	v.SetDefault("bcrypt.cost", 12)

	v.SetDefault("registry.backend", "memory")
	v.SetDefault("registry.shards", 32)
	v.SetDefault("registry.sweep_interval", "5m")

	v.SetDefault("cache.principal_size", 1024)
	v.SetDefault("cache.principal_ttl", "30s")

	v.SetDefault("rate_limit.login_per_minute", 10)
	v.SetDefault("rate_limit.login_burst", 5)

	v.SetDefault("bootstrap.admin_email", "")
	v.SetDefault("bootstrap.admin_password", "")
	v.SetDefault("bootstrap.admin_name", "Super Admin")
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envPrefix+"_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}

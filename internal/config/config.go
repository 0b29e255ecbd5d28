// AngelaMos | 2026
// config.go

package config

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	JWT       JWTConfig       `koanf:"jwt"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	Log       LogConfig       `koanf:"log"`
	Otel      OtelConfig      `koanf:"otel"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Sessions  SessionsConfig  `koanf:"sessions"`
	Reviews   ReviewsConfig   `koanf:"reviews"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

type JWTConfig struct {
	PrivateKeyPath    string        `koanf:"private_key_path"`
	PublicKeyPath     string        `koanf:"public_key_path"`
	AccessTokenExpire time.Duration `koanf:"access_token_expire"`
	Issuer            string        `koanf:"issuer"`
	Audience          string        `koanf:"audience"`
}

// RateLimitConfig is the anonymous per-IP limit. Authenticated traffic is
// limited per plan on top of it.
type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Burst    int           `koanf:"burst"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

const (
	CatalogSourceDatabase = "database"
	CatalogSourceFile     = "file"
)

// CatalogConfig selects where the resource directory is read from.
type CatalogConfig struct {
	Source   string `koanf:"source"`
	FilePath string `koanf:"file_path"`
}

type SessionsConfig struct {
	IdleTTL         time.Duration `koanf:"idle_ttl"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	MaxPerOwner     int           `koanf:"max_per_owner"`
}

type ReviewsConfig struct {
	DefaultLimit int             `koanf:"default_limit"`
	MaxLimit     int             `koanf:"max_limit"`
	VoteDedup    VoteDedupConfig `koanf:"vote_dedup"`
	Breaker      BreakerConfig   `koanf:"breaker"`
}

type VoteDedupConfig struct {
	Enabled bool          `koanf:"enabled"`
	TTL     time.Duration `koanf:"ttl"`
}

type BreakerConfig struct {
	MaxRequests         uint32        `koanf:"max_requests"`
	Interval            time.Duration `koanf:"interval"`
	Timeout             time.Duration `koanf:"timeout"`
	ConsecutiveFailures uint32        `koanf:"consecutive_failures"`
}

var (
	cfg  *Config
	once sync.Once
)

// Load parses the configuration once per process. Later calls return the
// first result.
func Load(configPath string) (*Config, error) {
	var loadErr error

	once.Do(func() {
		cfg, loadErr = Parse(configPath)
	})

	if loadErr != nil {
		return nil, loadErr
	}

	return cfg, nil
}

// Parse layers defaults, the optional YAML file and environment overrides.
func Parse(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKeyReplacer), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	c := &Config{}
	if err := k.Unmarshal("", c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call Load() first")
	}
	return cfg
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":        "Resource Directory",
		"app.version":     "1.0.0",
		"app.environment": "development",

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",

		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",

		"redis.pool_size":      10,
		"redis.min_idle_conns": 5,

		"jwt.access_token_expire": "15m",
		"jwt.issuer":              "resource-directory",
		"jwt.audience":            "resource-directory-api",
		"jwt.private_key_path":    "keys/private.pem",
		"jwt.public_key_path":     "keys/public.pem",

		"rate_limit.requests": 100,
		"rate_limit.window":   "1m",
		"rate_limit.burst":    20,

		"cors.allowed_origins": []string{"http://localhost:3000"},
		"cors.allowed_methods": []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
		},
		"cors.allowed_headers": []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "resource-directory",

		"catalog.source":    CatalogSourceDatabase,
		"catalog.file_path": "catalog.yaml",

		"sessions.idle_ttl":         "30m",
		"sessions.cleanup_interval": "1m",
		"sessions.max_per_owner":    8,

		"reviews.default_limit":                50,
		"reviews.max_limit":                    200,
		"reviews.vote_dedup.enabled":           true,
		"reviews.vote_dedup.ttl":               "720h",
		"reviews.breaker.max_requests":         1,
		"reviews.breaker.interval":             "1m",
		"reviews.breaker.timeout":              "30s",
		"reviews.breaker.consecutive_failures": 5,
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"DATABASE_URL":                "database.url",
	"REDIS_URL":                   "redis.url",
	"ENVIRONMENT":                 "app.environment",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"JWT_PRIVATE_KEY_PATH":        "jwt.private_key_path",
	"JWT_PUBLIC_KEY_PATH":         "jwt.public_key_path",
	"JWT_ACCESS_TOKEN_EXPIRE":     "jwt.access_token_expire",
	"JWT_ISSUER":                  "jwt.issuer",
	"JWT_AUDIENCE":                "jwt.audience",
	"RATE_LIMIT_REQUESTS":         "rate_limit.requests",
	"RATE_LIMIT_WINDOW":           "rate_limit.window",
	"RATE_LIMIT_BURST":            "rate_limit.burst",
	"OTEL_ENDPOINT":               "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
	"CATALOG_SOURCE":              "catalog.source",
	"CATALOG_FILE_PATH":           "catalog.file_path",
	"SESSIONS_IDLE_TTL":           "sessions.idle_ttl",
	"SESSIONS_MAX_PER_OWNER":      "sessions.max_per_owner",
	"REVIEWS_DEFAULT_LIMIT":       "reviews.default_limit",
	"REVIEWS_MAX_LIMIT":           "reviews.max_limit",
	"REVIEWS_VOTE_DEDUP_ENABLED":  "reviews.vote_dedup.enabled",
	"REVIEWS_VOTE_DEDUP_TTL":      "reviews.vote_dedup.ttl",
}

func envKeyReplacer(s string) string {
	if mapped, ok := envKeyMap[s]; ok {
		return mapped
	}
	return ""
}

func validate(c *Config) error {
	var errs []error

	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}

	if c.Redis.URL == "" {
		errs = append(errs, errors.New("REDIS_URL is required"))
	}

	if c.JWT.PrivateKeyPath == "" {
		errs = append(errs, errors.New("JWT_PRIVATE_KEY_PATH is required"))
	}

	if c.JWT.AccessTokenExpire <= 0 {
		errs = append(errs, errors.New("jwt.access_token_expire must be positive"))
	}

	if c.CORS.AllowCredentials {
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				errs = append(errs, errors.New(
					"CORS wildcard '*' cannot be used with AllowCredentials",
				))
				break
			}
		}
	}

	if c.IsProduction() && c.Otel.Enabled && c.Otel.Insecure {
		errs = append(errs, errors.New("OTEL_INSECURE must be false in production"))
	}

	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server read and write timeouts must be positive"))
	}

	switch c.Catalog.Source {
	case CatalogSourceDatabase:
	case CatalogSourceFile:
		if c.Catalog.FilePath == "" {
			errs = append(errs, errors.New("catalog.file_path is required for the file source"))
		}
	default:
		errs = append(errs, fmt.Errorf("catalog.source %q is not database or file", c.Catalog.Source))
	}

	if c.Sessions.IdleTTL <= 0 || c.Sessions.CleanupInterval <= 0 {
		errs = append(errs, errors.New("sessions.idle_ttl and sessions.cleanup_interval must be positive"))
	}

	if c.Reviews.DefaultLimit < 1 || c.Reviews.MaxLimit < c.Reviews.DefaultLimit {
		errs = append(errs, errors.New("reviews limits must satisfy 1 <= default_limit <= max_limit"))
	}

	if c.Reviews.VoteDedup.Enabled && c.Reviews.VoteDedup.TTL <= 0 {
		errs = append(errs, errors.New("reviews.vote_dedup.ttl must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

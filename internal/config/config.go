package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Store backends for catalog entries.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config holds configuration for the catalog service.
type Config struct {
	HTTPPort        string        `env:"HTTP_PORT" envDefault:"8080"`
	JWTSecret       string        `env:"JWT_SECRET"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`

	Database   DatabaseConfig
	Redis      RedisConfig
	Catalog    CatalogConfig
	Credential CredentialConfig

	RefreshRateLimit int `env:"REFRESH_RATE_LIMIT" envDefault:"10"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"2"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"1m"`
	QueryTimeout    time.Duration `env:"DB_QUERY_TIMEOUT" envDefault:"5s"`
}

// RedisConfig holds Redis connection settings. An empty address disables Redis.
type RedisConfig struct {
	Address      string        `env:"REDIS_ADDRESS"`
	Password     string        `env:"REDIS_PASSWORD"`
	DB           int           `env:"REDIS_DB" envDefault:"0"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// CatalogConfig holds model catalog settings
type CatalogConfig struct {
	TTL               time.Duration `env:"CATALOG_TTL" envDefault:"24h"`
	FetchTimeout      time.Duration `env:"CATALOG_FETCH_TIMEOUT" envDefault:"15s"`
	Store             string        `env:"CATALOG_STORE" envDefault:"memory"`
	RedisRetention    time.Duration `env:"CATALOG_REDIS_RETENTION" envDefault:"168h"`
	Coalesce          bool          `env:"CATALOG_COALESCE" envDefault:"false"`
	FingerprintSecret string        `env:"CATALOG_FINGERPRINT_SECRET"`
	ProvidersFile     string        `env:"CATALOG_PROVIDERS_FILE"`
	OpenAIBaseURL     string        `env:"OPENAI_BASE_URL"`
	DeepSeekBaseURL   string        `env:"DEEPSEEK_BASE_URL"`
}

// CredentialConfig holds stored-credential settings
type CredentialConfig struct {
	EncryptionKey string        `env:"ENCRYPTION_KEY"`
	CacheSize     int           `env:"CREDENTIAL_CACHE_SIZE" envDefault:"100"`
	CacheTTL      time.Duration `env:"CREDENTIAL_CACHE_TTL" envDefault:"5m"`
}

// LoadEnvFiles loads .env files that exist. Variables already set in the
// environment take precedence.
func LoadEnvFiles(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	c.Catalog.Store = strings.ToLower(strings.TrimSpace(c.Catalog.Store))
	switch c.Catalog.Store {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.Address == "" {
			return fmt.Errorf("REDIS_ADDRESS is required when CATALOG_STORE is redis")
		}
	default:
		return fmt.Errorf("CATALOG_STORE must be %q or %q, got %q", StoreMemory, StoreRedis, c.Catalog.Store)
	}

	if c.Catalog.TTL <= 0 {
		return fmt.Errorf("CATALOG_TTL must be positive")
	}
	if c.Catalog.FetchTimeout <= 0 {
		return fmt.Errorf("CATALOG_FETCH_TIMEOUT must be positive")
	}

	if c.Database.URL != "" && c.Credential.EncryptionKey == "" {
		return fmt.Errorf("ENCRYPTION_KEY is required when DATABASE_URL is set")
	}
	if c.Credential.EncryptionKey != "" && len(c.Credential.EncryptionKey) != 64 {
		return fmt.Errorf("ENCRYPTION_KEY must be 64 hex characters")
	}

	if c.RefreshRateLimit < 0 {
		return fmt.Errorf("REFRESH_RATE_LIMIT cannot be negative")
	}

	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return ":" + c.HTTPPort
}

// DatabaseEnabled reports whether stored credentials are available.
func (c *Config) DatabaseEnabled() bool {
	return c.Database.URL != ""
}

// RedisEnabled reports whether a Redis address is configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Address != ""
}

// Package config loads service settings from the environment.
// .env and .env.local are read when present; variables already set in the process win.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	BackendMySQL    = "mysql"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Chain    ChainConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Host         string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port         int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	Environment  string        `envconfig:"ENVIRONMENT" default:"development"`
	CORSOrigins  []string      `envconfig:"CORS_ORIGINS" default:"*"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type StoreConfig struct {
	Backend     string `envconfig:"STORE_BACKEND" default:"mysql"`
	AutoMigrate bool   `envconfig:"STORE_AUTO_MIGRATE" default:"true"`
}

type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"3306"`
	User            string        `envconfig:"DB_USER" default:"app"`
	Password        string        `envconfig:"DB_PASSWORD" default:"apppassword"`
	Name            string        `envconfig:"DB_NAME" default:"shrimp_oracle"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
}

type PostgresConfig struct {
	URL      string `envconfig:"POSTGRES_URL" default:""`
	MaxConns int32  `envconfig:"POSTGRES_MAX_CONNS" default:"10"`
	MinConns int32  `envconfig:"POSTGRES_MIN_CONNS" default:"0"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	// Enabled=false runs without nonce cache and rate limiting
	Enabled bool `envconfig:"REDIS_ENABLED" default:"true"`
}

type ChainConfig struct {
	RPCURL      string `envconfig:"CHAIN_RPC_URL" default:"https://ethereum.publicnode.com"`
	FeedAddress string `envconfig:"CHAIN_FEED_ADDRESS" default:"0xF4030086522a5bEEa4988F8cA5B36dbC97BeE88c"`
	Decimals    uint8  `envconfig:"CHAIN_FEED_DECIMALS" default:"8"`
	FeedName    string `envconfig:"CHAIN_FEED_NAME" default:"BTC/USD"`
	ChainID     int64  `envconfig:"CHAIN_ID" default:"1"`
}

type AuthConfig struct {
	AppName          string        `envconfig:"AUTH_APP_NAME" default:"OracleNet"`
	Domain           string        `envconfig:"AUTH_DOMAIN" default:"localhost:8080"`
	URI              string        `envconfig:"AUTH_URI" default:"http://localhost:8080"`
	AllowedDomains   []string      `envconfig:"AUTH_ALLOWED_DOMAINS"`
	MaxRoundAge      uint64        `envconfig:"AUTH_MAX_ROUND_AGE" default:"10"`
	OracleTimeout    time.Duration `envconfig:"AUTH_ORACLE_TIMEOUT" default:"5s"`
	StoreTimeout     time.Duration `envconfig:"AUTH_STORE_TIMEOUT" default:"3s"`
	NonceCacheTTL    time.Duration `envconfig:"AUTH_NONCE_CACHE_TTL" default:"5s"`
	VerifyRateLimit  int           `envconfig:"AUTH_VERIFY_RATE_LIMIT" default:"30"`
	VerifyRateWindow time.Duration `envconfig:"AUTH_VERIFY_RATE_WINDOW" default:"1m"`
	JWTSecret        string        `envconfig:"JWT_SECRET" default:""`
	JWTIssuer        string        `envconfig:"JWT_ISSUER" default:"shrimp-oracle"`
	JWTTTL           time.Duration `envconfig:"JWT_TTL" default:"24h"`
}

// devJWTSecret signs tokens in development when JWT_SECRET is unset
const devJWTSecret = "development-only-secret-change-me"

// Load reads .env files (if any) and the process environment
func Load() (*Config, error) {
	loadDotEnv()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case BackendMySQL, BackendMemory:
	case BackendPostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("POSTGRES_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}

	if c.Auth.JWTSecret == "" {
		if c.Server.Environment != EnvDevelopment {
			return fmt.Errorf("JWT_SECRET is required in %s", c.Server.Environment)
		}
		c.Auth.JWTSecret = devJWTSecret
	}

	if c.Chain.RPCURL == "" {
		return fmt.Errorf("CHAIN_RPC_URL is required")
	}

	for i, d := range c.Auth.AllowedDomains {
		c.Auth.AllowedDomains[i] = strings.TrimSpace(d)
	}
	return nil
}

func loadDotEnv() {
	for _, file := range []string{".env", ".env.local"} {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		// Load never overrides variables that are already set
		if err := godotenv.Load(file); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", file, err)
		}
	}
}

// ToolConfig is the subset of settings command-line tools need
type ToolConfig struct {
	Chain ChainConfig
	Auth  AuthConfig
}

// LoadTool reads the chain and auth sections without validating service-only
// settings, so tools run without store or JWT configuration.
func LoadTool() (*ToolConfig, error) {
	loadDotEnv()

	var cfg ToolConfig
	if err := envconfig.Process("", &cfg.Chain); err != nil {
		return nil, fmt.Errorf("failed to load chain config: %w", err)
	}
	if err := envconfig.Process("", &cfg.Auth); err != nil {
		return nil, fmt.Errorf("failed to load auth config: %w", err)
	}
	if cfg.Chain.RPCURL == "" {
		return nil, fmt.Errorf("CHAIN_RPC_URL is required")
	}
	return &cfg, nil
}

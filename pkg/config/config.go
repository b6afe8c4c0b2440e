package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultSecretKey is only meant for local development.
const DefaultSecretKey = "change-me-in-production"

type Config struct {
	Port     string `env:"PORT" envDefault:"8000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	SecretKey                string `env:"SECRET_KEY" envDefault:"change-me-in-production"`
	Algorithm                string `env:"ALGORITHM" envDefault:"HS256"`
	AccessTokenExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"30"`
	BcryptCost               int    `env:"BCRYPT_COST" envDefault:"10"`

	Neo4jURI        string        `env:"NEO4J_URI" envDefault:"bolt://graphdb:7687"`
	Neo4jUser       string        `env:"NEO4J_USER" envDefault:"neo4j"`
	Neo4jPassword   string        `env:"NEO4J_PASSWORD,required,notEmpty"`
	Neo4jDatabase   string        `env:"NEO4J_DATABASE"`
	Neo4jMaxRetries int           `env:"NEO4J_MAX_RETRIES" envDefault:"5"`
	Neo4jRetryDelay time.Duration `env:"NEO4J_RETRY_DELAY" envDefault:"3s"`

	MinioEndpoint   string `env:"MINIO_ENDPOINT" envDefault:"objectstore:9000"`
	MinioAccessKey  string `env:"MINIO_ACCESS_KEY" envDefault:"minioadmin"`
	MinioSecretKey  string `env:"MINIO_SECRET_KEY,required,notEmpty"`
	MinioBucketName string `env:"MINIO_BUCKET_NAME" envDefault:"selkie-documents"`
	MinioUseSSL     bool   `env:"MINIO_USE_SSL" envDefault:"false"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID,required,notEmpty"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET,required,notEmpty"`
	GoogleRedirectURI  string `env:"GOOGLE_REDIRECT_URI,required,notEmpty"`

	FrontendURL        string   `env:"FRONTEND_URL" envDefault:"/"`
	CookieSecure       bool     `env:"COOKIE_SECURE" envDefault:"true"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	AuthRateLimitPerMinute int    `env:"AUTH_RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	OTelEndpoint           string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	MaxUploadMB            int64  `env:"MAX_UPLOAD_MB" envDefault:"100"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("unsupported ALGORITHM %q", c.Algorithm)
	}
	if c.AccessTokenExpireMinutes <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", c.AccessTokenExpireMinutes)
	}
	if c.Neo4jMaxRetries <= 0 {
		return fmt.Errorf("NEO4J_MAX_RETRIES must be positive, got %d", c.Neo4jMaxRetries)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	return nil
}

// AccessTokenTTL is the default lifetime of issued session tokens.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

func (c *Config) UsesDefaultSecret() bool {
	return c.SecretKey == DefaultSecretKey
}

func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    Server    `yaml:"server"`
	Database  Database  `yaml:"database"`
	Redis     Redis     `yaml:"redis"`
	Auth      Auth      `yaml:"auth"`
	RateLimit RateLimit `yaml:"rate_limit"`
	Scheduler Scheduler `yaml:"scheduler"`
	S3        S3        `yaml:"s3"`
	CORS      CORS      `yaml:"cors"`
	Community Community `yaml:"community"`
}

// S3 holds S3/MinIO storage configuration for post images
type S3 struct {
	Endpoint        string `yaml:"endpoint" env:"S3_ENDPOINT" env-default:"http://localhost:9000"`
	AccessKeyID     string `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID" env-default:"minioadmin"`
	SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY" env-default:"minioadmin"`
	Bucket          string `yaml:"bucket" env:"S3_BUCKET" env-default:"community"`
	Region          string `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
	PublicURL       string `yaml:"public_url" env:"S3_PUBLIC_URL" env-default:"http://localhost:9000/community"`
	MaxUploadSize   int64  `yaml:"max_upload_size" env:"S3_MAX_UPLOAD_SIZE" env-default:"5242880"`
}

// Server holds HTTP server configuration
type Server struct {
	Host           string        `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port           string        `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"SERVER_REQUEST_TIMEOUT" env-default:"60s"`
}

// Address returns the full server address
func (s Server) Address() string {
	return s.Host + ":" + s.Port
}

// Database holds database configuration
type Database struct {
	PostgresDSN string `yaml:"postgres_dsn" env:"DATABASE_URL"`

	// Connection pool settings
	MaxOpenConns int32         `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns int32         `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnLifetime time.Duration `yaml:"conn_lifetime" env:"DB_CONN_LIFETIME" env-default:"5m"`

	// Apply the embedded schema on start
	Migrate bool `yaml:"migrate" env:"DB_MIGRATE" env-default:"true"`
}

// Redis holds cache configuration. An empty address disables caching.
type Redis struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	Prefix   string        `yaml:"prefix" env:"REDIS_PREFIX" env-default:"community"`
	TTL      time.Duration `yaml:"ttl" env:"REDIS_TTL" env-default:"10m"`
}

// Auth holds access token configuration
type Auth struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	Issuer    string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"nextstepz"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"JWT_TTL" env-default:"168h"`
}

// RateLimit holds the per-IP request limit. Like toggles are never limited.
type RateLimit struct {
	Enabled   bool `yaml:"enabled" env:"RATE_LIMIT_ENABLED" env-default:"true"`
	PerMinute int  `yaml:"per_minute" env:"RATE_LIMIT_PER_MINUTE" env-default:"120"`
	Burst     int  `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"30"`
}

// Scheduler holds scheduler configuration
type Scheduler struct {
	Enabled      bool          `yaml:"enabled" env:"SCHEDULER_ENABLED" env-default:"true"`
	Interval     time.Duration `yaml:"interval" env:"SCHEDULER_INTERVAL" env-default:"5m"`
	InitialDelay time.Duration `yaml:"initial_delay" env:"SCHEDULER_INITIAL_DELAY" env-default:"10s"`
}

// CORS holds the origins allowed to call the API from a browser
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000"`
}

// Community holds settings of the API client used by communityctl
type Community struct {
	BaseURL string        `yaml:"base_url" env:"COMMUNITY_BASE_URL" env-default:"http://localhost:8080/api/v1/community"`
	Token   string        `yaml:"token" env:"COMMUNITY_TOKEN"`
	Timeout time.Duration `yaml:"timeout" env:"COMMUNITY_TIMEOUT" env-default:"30s"`
}

// MustLoad loads configuration from environment and panics on error
func MustLoad() Config {
	// Load .env file if exists (for development)
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	return cfg
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadClient loads only the client section; it needs no server secrets
func LoadClient() (Community, error) {
	_ = godotenv.Load()

	var c Community
	if err := cleanenv.ReadEnv(&c); err != nil {
		return c, err
	}
	return c, nil
}

// Storage is the subset of Config that offline tools need to reach Postgres and Redis
type Storage struct {
	Database Database `yaml:"database"`
	Redis    Redis    `yaml:"redis"`
}

// LoadStorage loads the database and cache sections from the environment
func LoadStorage() (Storage, error) {
	_ = godotenv.Load()

	var s Storage
	if err := cleanenv.ReadEnv(&s); err != nil {
		return s, err
	}
	return s, nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	BackendDisk = "disk"
	BackendS3   = "s3"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	S3      S3Config
	Redis   RedisConfig
	OTEL    OTELConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port               string
	BodyLimitMB        int64
	MaxUploadSizeMB    int64
	EnforceUploadRules bool
}

// StorageConfig describes where uploaded files land and how they are served back
type StorageConfig struct {
	Backend    string
	StaticRoot string
	UploadDir  string
	PublicPath string
}

// S3Config holds S3-compatible object storage configuration
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// RedisConfig holds Redis connection configuration.
// An empty Addr disables idempotent replay.
type RedisConfig struct {
	Addr           string
	Password       string
	IdempotencyTTL time.Duration
}

// OTELConfig holds OpenTelemetry export configuration
type OTELConfig struct {
	Enabled        bool
	Endpoint       string
	ServiceName    string
	ServiceVersion string
	Environment    string
	InstanceID     string
	Token          string
}

// Load reads configuration from environment variables
// It attempts to load from .env file first, then falls back to system env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			BodyLimitMB:        getEnvAsInt64("BODY_LIMIT_MB", 32),
			MaxUploadSizeMB:    getEnvAsInt64("MAX_UPLOAD_SIZE_MB", 5),
			EnforceUploadRules: getEnvAsBool("ENFORCE_UPLOAD_RULES", false),
		},
		Storage: StorageConfig{
			Backend:    getEnv("STORAGE_BACKEND", BackendDisk),
			StaticRoot: getEnv("STATIC_ROOT", "public"),
			UploadDir:  getEnv("UPLOAD_DIR", "uploads"),
			PublicPath: getEnv("PUBLIC_PATH", "/uploads"),
		},
		S3: S3Config{
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			Region:    getEnv("S3_REGION", "us-east-1"),
			Bucket:    getEnv("S3_BUCKET", "uploads"),
			AccessKey: getEnv("S3_ACCESS_KEY", "any"),
			SecretKey: getEnv("S3_SECRET_KEY", "any"),
		},
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", ""),
			Password:       getEnv("REDIS_PASSWORD", ""),
			IdempotencyTTL: getEnvAsDuration("IDEMPOTENCY_TTL", 10*time.Minute),
		},
		OTEL: OTELConfig{
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "file-upload"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Environment:    getEnv("OTEL_ENVIRONMENT", "development"),
			InstanceID:     getEnv("OTEL_INSTANCE_ID", ""),
			Token:          getEnv("OTEL_TOKEN", ""),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.Server.MaxUploadSizeMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE_MB must be positive")
	}
	if c.Server.BodyLimitMB <= 0 {
		return fmt.Errorf("BODY_LIMIT_MB must be positive")
	}
	switch c.Storage.Backend {
	case BackendDisk:
		if c.Storage.UploadDir == "" {
			return fmt.Errorf("UPLOAD_DIR is required")
		}
	case BackendS3:
		if c.S3.Endpoint == "" {
			return fmt.Errorf("S3_ENDPOINT is required for the s3 backend")
		}
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}
	if c.OTEL.Enabled && c.OTEL.Endpoint == "" {
		return fmt.Errorf("OTEL_ENDPOINT is required when OTEL_ENABLED is set")
	}
	return nil
}

// UploadPath is the filesystem directory uploads are written to
func (s StorageConfig) UploadPath() string {
	return filepath.Join(s.StaticRoot, s.UploadDir)
}

// MaxUploadBytes converts the MB cap to bytes
func (s ServerConfig) MaxUploadBytes() int64 {
	return s.MaxUploadSizeMB * 1024 * 1024
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt64 retrieves an environment variable as int64 or returns a default value
func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

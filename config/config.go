package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	// DevJWTSecret is the fallback signing secret; rejected in production.
	DevJWTSecret = "change-me-in-production"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	CORSOrigins []string

	StoreDriver string
	MongoURI    string
	DBName      string

	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	S3Bucket      string
	S3Region      string
	S3AccessKeyID string
	S3SecretKey   string
	MaxUploadMB   int64

	// Bootstrap administrator, created or promoted at startup when all three are set.
	AdminEmail    string
	AdminUsername string
	AdminPassword string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Environment:   getEnv("APP_ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		CORSOrigins:   getList("CORS_ORIGINS"),
		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:        getEnv("MONGODB_DB", "reelbase"),
		JWTSecret:     getEnv("JWT_SECRET", DevJWTSecret),
		TokenTTL:      getDuration("TOKEN_TTL", 30*24*time.Hour),
		BcryptCost:    getInt("BCRYPT_COST", bcrypt.DefaultCost),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),
		S3Bucket:      getEnv("AWS_S3_BUCKET", ""),
		S3Region:      getEnv("AWS_REGION", "us-east-1"),
		S3AccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		S3SecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		MaxUploadMB:   int64(getInt("MAX_UPLOAD_MB", 512)),
		AdminEmail:    strings.TrimSpace(strings.ToLower(getEnv("ADMIN_EMAIL", ""))),
		AdminUsername: strings.TrimSpace(getEnv("ADMIN_USERNAME", "")),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service must not start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.Environment == "production" && c.JWTSecret == DevJWTSecret {
		return errors.New("JWT_SECRET must be set to a strong secret in production")
	}
	if c.StoreDriver != StoreMongo && c.StoreDriver != StoreMemory {
		return fmt.Errorf("unknown STORE_DRIVER %q (use %s or %s)", c.StoreDriver, StoreMongo, StoreMemory)
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}

// AdminBootstrap reports whether a bootstrap administrator is configured.
func (c *Config) AdminBootstrap() bool {
	return c.AdminEmail != "" && c.AdminUsername != "" && c.AdminPassword != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

// getList splits a comma-separated variable, dropping empty entries.
func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

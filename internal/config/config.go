package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration loaded from the environment.
type Config struct {
	Port        string
	DatabaseURL string
	RedisAddr   string
	RedisDB     int
	JWTSecret   string
	UploadDir   string
	MaxFileSize int64

	// LiveChannelDisabled forces all sends onto the REST fallback path.
	// It is a runtime setting, not a build-time constant, so both delivery
	// modes are testable without code changes.
	LiveChannelDisabled bool

	// SignedURLTTL is the lifetime of issued file download/view URLs.
	SignedURLTTL time.Duration
}

// Load reads configuration from the environment, applying defaults.
func Load() *Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	return &Config{
		Port:                getEnv("PORT", "8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:             getEnvAsInt("REDIS_DB", 0),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		UploadDir:           getEnv("UPLOAD_DIR", "./uploads"),
		MaxFileSize:         int64(getEnvAsInt("MAX_FILE_SIZE", 5*1024*1024)),
		LiveChannelDisabled: getEnvAsBool("LIVE_CHANNEL_DISABLED", false),
		SignedURLTTL:        getEnvAsDuration("SIGNED_URL_TTL", 5*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

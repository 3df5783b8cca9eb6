package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort    string
	Environment   string
	MySQLDSN      string
	RedisAddr     string
	RedisDB       int
	RedisPass     string
	EncryptionKey string
	AccessSecret  string
	RefreshSecret string
	PendingSecret string
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string
	EmailFrom     string
	FrontendURL   string
	SwaggerHost   string
}

// Load builds Config from environment with sensible defaults. A local .env
// file is honored when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		MySQLDSN:      getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/cuprewards?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisPass:     os.Getenv("REDIS_PASSWORD"),
		EncryptionKey: getEnv("ENCRYPTION_KEY", "change-me"),
		AccessSecret:  getEnv("JWT_ACCESS_SECRET", "change-me-access"),
		RefreshSecret: getEnv("JWT_REFRESH_SECRET", "change-me-refresh"),
		PendingSecret: getEnv("JWT_PENDING_SECRET", "change-me-pending"),
		SMTPHost:      getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      getEnvInt("SMTP_PORT", 587),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPass:      os.Getenv("SMTP_PASSWORD"),
		EmailFrom:     getEnv("EMAIL_FROM", "no-reply@cuprewards.local"),
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:3000"),
		SwaggerHost:   os.Getenv("SWAGGER_HOST"),
	}
}

// Production reports whether the service runs with production hardening
// (secure cookies, info-level logs).
func (c *Config) Production() bool {
	return c.Environment == "production"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

package config

import (
	"os"
	"time"
)

type AppConfig struct {
	// Server
	HTTPAddr string

	// Redis
	RedisAddr string
	RedisPass string

	// JWT
	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	// Sessions
	SessionTTL time.Duration

	// Super admin seed
	SuperAdminEmail    string
	SuperAdminPassword string
}

// Load loads environment variables into AppConfig. DATABASE_URL is read
// directly by the db package.
func Load() AppConfig {
	return AppConfig{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass: getEnv("REDIS_PASSWORD", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "service-admin"),
		JWTTTL:    getEnvDuration("JWT_TTL", 24*time.Hour),

		SessionTTL: getEnvDuration("SESSION_TTL", 24*time.Hour),

		SuperAdminEmail:    getEnv("SUPER_ADMIN_EMAIL", ""),
		SuperAdminPassword: getEnv("SUPER_ADMIN_PASSWORD", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

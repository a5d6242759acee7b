package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string

	DatabaseURL    string
	CatalogDriver  string
	MigrateOnStart bool

	ChangefeedDriver string
	RedisURL         string

	JWTSecret         string
	JWTAccessExpiry   time.Duration
	AdminEmail        string
	AdminPasswordHash string

	StorageDriver string

	MinIOEndpoint       string
	MinIOPublicEndpoint string
	MinIOAccessKey      string
	MinIOSecretKey      string
	MinIOBucket         string
	MinIOUseSSL         bool
	MinIOPublicUseSSL   bool

	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string
	S3PublicURL string

	CORSOrigins string

	ResendAPIKey      string
	FromEmail         string
	InquiryToEmail    string
	InquiryRateLimit  int
	InquiryRateWindow time.Duration

	SentryDSN string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		DatabaseURL:    getEnv("DATABASE_URL", ""),
		CatalogDriver:  getEnv("CATALOG_DRIVER", "postgres"),
		MigrateOnStart: getBoolEnv("MIGRATE_ON_START", true),

		ChangefeedDriver: getEnv("CHANGEFEED_DRIVER", "postgres"),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379"),

		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:   getDurationEnv("JWT_ACCESS_EXPIRY", 12*time.Hour),
		AdminEmail:        getEnv("ADMIN_EMAIL", ""),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),

		StorageDriver: getEnv("STORAGE_DRIVER", "minio"),

		MinIOEndpoint:       getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOPublicEndpoint: getEnv("MINIO_PUBLIC_ENDPOINT", getEnv("MINIO_ENDPOINT", "localhost:9000")),
		MinIOAccessKey:      getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey:      getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinIOBucket:         getEnv("MINIO_BUCKET", "portfolio-media"),
		MinIOUseSSL:         getBoolEnv("MINIO_USE_SSL", false),
		MinIOPublicUseSSL:   getBoolEnv("MINIO_PUBLIC_USE_SSL", true),

		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Bucket:    getEnv("S3_BUCKET", "portfolio-media"),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3PublicURL: getEnv("S3_PUBLIC_URL", ""),

		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173"),

		ResendAPIKey:      getEnv("RESEND_API_KEY", ""),
		FromEmail:         getEnv("FROM_EMAIL", "noreply@example.com"),
		InquiryToEmail:    getEnv("INQUIRY_TO_EMAIL", ""),
		InquiryRateLimit:  getIntEnv("INQUIRY_RATE_LIMIT", 5),
		InquiryRateWindow: getDurationEnv("INQUIRY_RATE_WINDOW", 15*time.Minute),

		SentryDSN: getEnv("SENTRY_DSN", ""),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

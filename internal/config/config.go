package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port        string
	Env         string
	APIUrl      string
	FrontendURL string
	LogLevel    string

	// Database
	DBDriver   string // postgres|sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT
	JWTSecret              string
	JWTAccessTokenDuration time.Duration

	// Admin
	AdminUsername     string
	AdminPassword     string
	AdminPasswordHash string
	BcryptCost        int

	// Cover storage
	StorageDriver     string // local|s3
	LocalAssetsPath   string
	CoverMaxBytes     int64
	CoverMaxDimension int

	// Media S3
	MediaS3Endpoint        string
	MediaS3Region          string
	MediaS3AccessKeyID     string
	MediaS3SecretAccessKey string
	MediaS3UsePathStyle    bool
	MediaCoversBucket      string
	MediaPublicURL         string

	// Rate limiting
	RateLimitRequests int
	RateLimitDuration time.Duration
	UploadMaxPerDay   int

	// Admin action limiting (deletes)
	AdminRateLimitActions int
	AdminRateLimitWindow  time.Duration

	// Catalog exports; zero disables the schedule. Exports hold private
	// songs and are kept apart from the public cover storage.
	BackupInterval time.Duration
	BackupPath     string
	BackupS3Bucket string

	// CORS
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

func New() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		APIUrl:      strings.TrimRight(getEnv("API_URL", "http://localhost:8080"), "/"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Database
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "songhub"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "songhub_db"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "songhub.db"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// JWT
		JWTSecret:              getEnv("JWT_SECRET", "your-secret-key"),
		JWTAccessTokenDuration: getEnvAsDuration("JWT_ACCESS_TOKEN_DURATION", "12h"),

		// Admin
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:     getEnv("ADMIN_PASSWORD", ""),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		BcryptCost:        getEnvAsInt("BCRYPT_COST", 12),

		// Cover storage
		StorageDriver:     getEnv("STORAGE_DRIVER", "local"),
		LocalAssetsPath:   getEnv("LOCAL_ASSETS_PATH", "./storage"),
		CoverMaxBytes:     int64(getEnvAsInt("COVER_MAX_BYTES", 2*1024*1024)),
		CoverMaxDimension: getEnvAsInt("COVER_MAX_DIMENSION", 1600),

		// Media S3
		MediaS3Endpoint:        getEnv("MEDIA_S3_ENDPOINT", ""),
		MediaS3Region:          getEnv("MEDIA_S3_REGION", "us-east-1"),
		MediaS3AccessKeyID:     getEnv("MEDIA_S3_ACCESS_KEY_ID", ""),
		MediaS3SecretAccessKey: getEnv("MEDIA_S3_SECRET_ACCESS_KEY", ""),
		MediaS3UsePathStyle:    getEnv("MEDIA_S3_USE_PATH_STYLE", "true") == "true",
		MediaCoversBucket:      getEnv("MEDIA_COVERS_BUCKET", "songhub-covers"),
		MediaPublicURL:         strings.TrimRight(getEnv("MEDIA_PUBLIC_URL", ""), "/"),

		// Rate limiting
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitDuration: getEnvAsDuration("RATE_LIMIT_DURATION", "1m"),
		UploadMaxPerDay:   getEnvAsInt("UPLOAD_MAX_PER_DAY", 200),

		// Admin action limiting
		AdminRateLimitActions: getEnvAsInt("ADMIN_RATE_LIMIT_ACTIONS", 30),
		AdminRateLimitWindow:  getEnvAsDuration("ADMIN_RATE_LIMIT_WINDOW", "10m"),

		BackupInterval: getEnvAsDuration("BACKUP_INTERVAL", "0s"),
		BackupPath:     getEnv("BACKUP_PATH", "./backups"),
		BackupS3Bucket: getEnv("BACKUP_S3_BUCKET", ""),

		// CORS
		AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		AllowedMethods: getEnvAsSlice("ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		AllowedHeaders: getEnvAsSlice("ALLOWED_HEADERS", []string{"Content-Type", "Authorization", "X-HTTP-Method-Override"}),
	}
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	if duration, err := time.ParseDuration(defaultValue); err == nil {
		return duration
	}
	return time.Hour
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

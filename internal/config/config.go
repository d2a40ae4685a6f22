package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Port string

	// Database
	DBDriver   string // "postgres" or "sqlite"
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string // sqlite only

	// Meta Graph API
	GraphBaseURL    string
	GraphAPIVersion string
	HTTPTimeout     time.Duration
	FieldRetryLimit int

	// Optional cron expression for a recurring full sweep ("" disables it)
	SyncCron string

	// Logging
	LogMode       string // "production" or "development"
	LogFileEnable bool
	LogFilename   string
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		zap.S().Warn("no .env file found, using environment only")
	}

	return &Config{
		Port: getEnv("PORT", "8080"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "whatsapp_admin"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBPath:     getEnv("DB_PATH", "./whatsapp_admin.db"),

		GraphBaseURL:    getEnv("GRAPH_BASE_URL", "https://graph.facebook.com"),
		GraphAPIVersion: getEnv("GRAPH_API_VERSION", "v19.0"),
		HTTPTimeout:     getEnvDuration("GRAPH_HTTP_TIMEOUT", 30*time.Second),
		FieldRetryLimit: getEnvInt("GRAPH_FIELD_RETRY_LIMIT", 8),

		SyncCron: getEnv("SYNC_CRON", ""),

		LogMode:       getEnv("LOG_MODE", "development"),
		LogFileEnable: getEnvBool("LOG_FILE_ENABLE", false),
		LogFilename:   getEnv("LOG_FILENAME", "./whatsapp_admin.log"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port                 string
	LogLevel             string
	MaxUploadSizeBytes   int64
	DefaultFinancialYear string
	DefaultQuarterScheme string
	APIKey               string
	CORSAllowedOrigins   []string
	ReportCacheTTL       time.Duration
	ReportCacheCleanup   time.Duration
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	maxUploadSizeBytesStr := getEnv("MAX_UPLOAD_SIZE_BYTES", "10485760")
	maxUploadSizeBytes, err := strconv.ParseInt(maxUploadSizeBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_UPLOAD_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxUploadSizeBytesStr, err)
		maxUploadSizeBytes = 10 * 1024 * 1024
	}

	apiKey := getEnv("API_KEY", "")
	if apiKey == "" {
		log.Println("WARNING: API_KEY not set; API key authentication is disabled.")
	}

	corsOrigins := strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"), ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}

	Cfg = &AppConfig{
		Port:                 getEnv("PORT", "8080"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		MaxUploadSizeBytes:   maxUploadSizeBytes,
		DefaultFinancialYear: getEnv("DEFAULT_FINANCIAL_YEAR", "FY 2024-25"),
		DefaultQuarterScheme: getEnv("DEFAULT_QUARTER_SCHEME", "Q5_IT_PORTAL"),
		APIKey:               apiKey,
		CORSAllowedOrigins:   corsOrigins,
		ReportCacheTTL:       getEnvAsDuration("REPORT_CACHE_TTL", 15*time.Minute),
		ReportCacheCleanup:   getEnvAsDuration("REPORT_CACHE_CLEANUP_INTERVAL", 30*time.Minute),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DefaultFY=%s, DefaultScheme=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DefaultFinancialYear, Cfg.DefaultQuarterScheme)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Duration value for %s not set or empty, using default: %s", key, fallback.String())
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// AdDiscoveryConfig holds credentials and limits for the external ad
// discovery service. An empty APIKey means the integration is not
// configured; callers surface that as a distinct error rather than
// attempting a request.
type AdDiscoveryConfig struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
	DetailTimeout  time.Duration
	EnrichWorkers  int
}

// Configured reports whether the discovery credentials are present.
func (a *AdDiscoveryConfig) Configured() bool {
	return a.APIKey != ""
}

// BrandAIConfig points at the brand-intelligence generation service.
type BrandAIConfig struct {
	BaseURL string
	APIKey  string
}

type Config struct {
	// Server
	ServerPort string
	ServerEnv  string
	ServerHost string

	// Database
	DatabaseURL string

	// External ad discovery service
	AdDiscovery AdDiscoveryConfig

	// AI copy/brand-intelligence service
	BrandAI BrandAIConfig

	// Internal API (metrics guard bypass, service-to-service calls)
	InternalAPIKey string

	// SigNoz / OTLP
	SigNozEndpoint string
}

func Load() *Config {
	return &Config{
		// Server
		ServerPort: getEnv("SERVER_PORT", "3000"),
		ServerEnv:  getEnv("SERVER_ENV", "development"),
		ServerHost: getEnv("SERVER_HOST", "localhost:3000"),

		// Database - DATABASE_URL wins, otherwise built from parts
		DatabaseURL: getDatabaseURL(),

		AdDiscovery: AdDiscoveryConfig{
			BaseURL:        getEnv("AD_DISCOVERY_BASE_URL", "https://api.adsearch.io"),
			APIKey:         getEnv("AD_DISCOVERY_API_KEY", ""),
			RequestTimeout: time.Duration(getEnvAsInt("AD_DISCOVERY_TIMEOUT_SECONDS", 25)) * time.Second,
			DetailTimeout:  time.Duration(getEnvAsInt("AD_DISCOVERY_DETAIL_TIMEOUT_SECONDS", 8)) * time.Second,
			EnrichWorkers:  getEnvAsInt("AD_DISCOVERY_ENRICH_WORKERS", 8),
		},

		BrandAI: BrandAIConfig{
			BaseURL: getEnv("BRAND_AI_BASE_URL", ""),
			APIKey:  getEnv("BRAND_AI_API_KEY", ""),
		},

		InternalAPIKey: getEnv("INTERNAL_API_KEY", ""),

		// SigNoz
		SigNozEndpoint: getEnv("SIGNOZ_ENDPOINT", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDatabaseURL returns DATABASE_URL or builds it from individual env vars
func getDatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("POSTGRES_HOST", "localhost")
	port := getEnv("POSTGRES_PORT", "5432")
	user := getEnv("POSTGRES_USER", "postgres")
	password := getEnv("POSTGRES_PASSWORD", "")
	dbname := getEnv("POSTGRES_DB", "brandradar")
	sslmode := getEnv("POSTGRES_SSLMODE", "disable")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, password, host, port, dbname, sslmode)
}

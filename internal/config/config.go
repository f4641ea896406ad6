package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	GoEnv string `env:"GO_ENV" default:"development"`

	// Service
	HTTPPort int `env:"HTTP_PORT" default:"8080"`

	// Database
	DatabaseURL string `env:"DATABASE_URL" required:"true"`

	// TMDB upstream
	TMDBAPIURL      string `env:"TMDB_API_URL" default:"https://api.themoviedb.org/3"`
	TMDBAPIKey      string `env:"TMDB_API_KEY" required:"true"`
	PrimaryLanguage string `env:"PRIMARY_LANGUAGE" default:"en-US"`

	// Cache policy
	CacheMaxAgeDays   int `env:"CACHE_MAX_AGE_DAYS" default:"7"`
	PopulateTopN      int `env:"POPULATE_TOP_N" default:"10"`
	RetentionSweepAge int `env:"RETENTION_SWEEP_AGE_DAYS" default:"90"`

	// Provider merge: countries whose ordering wins, comma separated
	ProviderCountries []string `env:"PROVIDER_COUNTRIES" default:"KR,US"`

	// Redis hot cache (optional; empty URL disables it)
	RedisURL      string        `env:"REDIS_URL"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	HotCacheTTL   time.Duration `env:"HOT_CACHE_TTL" default:"15m"`

	// Push campaign trigger (optional; empty disables notifications)
	PushTriggerURL string `env:"PUSH_TRIGGER_URL"`

	// Scheduler (cron specs with seconds field; empty disables the job)
	StaleRefreshSpec   string `env:"STALE_REFRESH_SPEC" default:"0 0 4 * * *"`
	RetentionSweepSpec string `env:"RETENTION_SWEEP_SPEC" default:"0 30 4 * * 0"`

	// Development
	LogLevel    string   `env:"LOG_LEVEL" default:"debug"`
	LogFormat   string   `env:"LOG_FORMAT" default:"text"`
	CORSOrigins []string `env:"CORS_ORIGINS" default:"http://localhost:3000"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Try to load .env file from project root
	if err := godotenv.Load(".env"); err != nil {
		// If .env file doesn't exist, that's OK - we can still use system env vars
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	config := &Config{}

	if err := loadEnvString(&config.GoEnv, "GO_ENV", "development"); err != nil {
		return nil, err
	}

	if err := loadEnvInt(&config.HTTPPort, "HTTP_PORT", 8080); err != nil {
		return nil, err
	}

	// Database
	if err := loadEnvStringRequired(&config.DatabaseURL, "DATABASE_URL"); err != nil {
		return nil, err
	}

	// TMDB upstream
	if err := loadEnvString(&config.TMDBAPIURL, "TMDB_API_URL", "https://api.themoviedb.org/3"); err != nil {
		return nil, err
	}
	if err := loadEnvStringRequired(&config.TMDBAPIKey, "TMDB_API_KEY"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.PrimaryLanguage, "PRIMARY_LANGUAGE", "en-US"); err != nil {
		return nil, err
	}

	// Cache policy
	if err := loadEnvInt(&config.CacheMaxAgeDays, "CACHE_MAX_AGE_DAYS", 7); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.PopulateTopN, "POPULATE_TOP_N", 10); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.RetentionSweepAge, "RETENTION_SWEEP_AGE_DAYS", 90); err != nil {
		return nil, err
	}
	if err := loadEnvStringSlice(&config.ProviderCountries, "PROVIDER_COUNTRIES", []string{"KR", "US"}); err != nil {
		return nil, err
	}

	// Redis
	if err := loadEnvString(&config.RedisURL, "REDIS_URL", ""); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.RedisPassword, "REDIS_PASSWORD", ""); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.HotCacheTTL, "HOT_CACHE_TTL", 15*time.Minute); err != nil {
		return nil, err
	}

	// Push campaigns
	if err := loadEnvString(&config.PushTriggerURL, "PUSH_TRIGGER_URL", ""); err != nil {
		return nil, err
	}

	// Scheduler
	if err := loadEnvString(&config.StaleRefreshSpec, "STALE_REFRESH_SPEC", "0 0 4 * * *"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.RetentionSweepSpec, "RETENTION_SWEEP_SPEC", "0 30 4 * * 0"); err != nil {
		return nil, err
	}

	// Development
	if err := loadEnvString(&config.LogLevel, "LOG_LEVEL", "debug"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.LogFormat, "LOG_FORMAT", "text"); err != nil {
		return nil, err
	}
	if err := loadEnvStringSlice(&config.CORSOrigins, "CORS_ORIGINS", []string{"http://localhost:3000"}); err != nil {
		return nil, err
	}

	return config, nil
}

// Helper functions for type conversion and validation
func loadEnvString(target *string, key, defaultValue string) error {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvStringRequired(target *string, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return fmt.Errorf("required environment variable %s is not set", key)
	}
	*target = value
	return nil
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvDuration(target *time.Duration, key string, defaultValue time.Duration) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvStringSlice(target *[]string, key string, defaultValue []string) error {
	if value := os.Getenv(key); value != "" {
		*target = strings.Split(value, ",")
		// Trim whitespace from each element
		for i, v := range *target {
			(*target)[i] = strings.TrimSpace(v)
		}
	} else {
		*target = defaultValue
	}
	return nil
}

// Validate performs validation on the loaded configuration
func (c *Config) Validate() error {
	var errors []string

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errors = append(errors, "HTTP_PORT must be between 1 and 65535")
	}

	if c.CacheMaxAgeDays < 1 {
		errors = append(errors, "CACHE_MAX_AGE_DAYS must be at least 1")
	}
	if c.RetentionSweepAge < c.CacheMaxAgeDays {
		errors = append(errors, "RETENTION_SWEEP_AGE_DAYS must not be smaller than CACHE_MAX_AGE_DAYS")
	}

	if len(c.ProviderCountries) == 0 {
		errors = append(errors, "PROVIDER_COUNTRIES must list at least one country code")
	}

	validLogLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}

	validLogFormats := []string{"text", "json"}
	if !contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// Helper function to check if slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// ABOUTME: Configuration loader for the recipes CLI
// ABOUTME: Loads settings from an optional .env file and environment variables with defaults

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL            = "http://localhost:8080"
	DefaultTimeout           = 30
	DefaultImportConcurrency = 4
)

type Config struct {
	// Backend
	APIURL  string
	Timeout int // seconds per request

	// Local state
	SessionFile string // empty = default path under the config dir
	ConfigDir   string
	SamplesPath string

	// Bulk import
	ImportConcurrency int

	// Logging
	LogLevel  string
	LogFormat string
}

// RequestTimeout returns Timeout as a duration
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// Load reads the environment. Files named in envFiles are loaded first when
// present; variables already set in the environment win.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	cfg := &Config{
		APIURL:  ensureScheme(getEnv("RECIPES_API_URL", DefaultAPIURL)),
		Timeout: getEnvInt("RECIPES_TIMEOUT", DefaultTimeout),

		SessionFile: os.Getenv("RECIPES_SESSION_FILE"),
		ConfigDir:   os.Getenv("RECIPES_CONFIG_DIR"),
		SamplesPath: os.Getenv("RECIPES_SAMPLES_PATH"),

		ImportConcurrency: getEnvInt("RECIPES_IMPORT_CONCURRENCY", DefaultImportConcurrency),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	if cfg.Timeout < 1 || cfg.Timeout > 600 {
		return nil, fmt.Errorf("RECIPES_TIMEOUT must be between 1 and 600, got %d", cfg.Timeout)
	}
	if cfg.ImportConcurrency < 1 || cfg.ImportConcurrency > 64 {
		return nil, fmt.Errorf("RECIPES_IMPORT_CONCURRENCY must be between 1 and 64, got %d", cfg.ImportConcurrency)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// ensureScheme adds http:// prefix if the URL has no scheme. The recipe
// backend listens on plain HTTP by default.
func ensureScheme(url string) string {
	url = strings.TrimSuffix(url, "/")
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "http://" + url
	}
	return url
}

// EnsureScheme is ensureScheme for values that arrive through flags
func EnsureScheme(url string) string {
	return ensureScheme(url)
}

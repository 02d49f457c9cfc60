package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// withCleanEnv clears the environment, sets extra, and restores the original
// environment on cleanup
func withCleanEnv(t *testing.T, extra map[string]string) {
	t.Helper()

	originalEnv := os.Environ()
	os.Clearenv()
	for key, value := range extra {
		os.Setenv(key, value)
	}

	t.Cleanup(func() {
		os.Clearenv()
		for _, env := range originalEnv {
			for i := 0; i < len(env); i++ {
				if env[i] == '=' {
					os.Setenv(env[:i], env[i+1:])
					break
				}
			}
		}
	})
}

func TestLoadConfig_Defaults(t *testing.T) {
	withCleanEnv(t, nil)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("Expected default API URL %s, got %s", DefaultAPIURL, cfg.APIURL)
	}
	if cfg.RequestTimeout() != 30*time.Second {
		t.Errorf("Expected default timeout 30s, got %v", cfg.RequestTimeout())
	}
	if cfg.ImportConcurrency != DefaultImportConcurrency {
		t.Errorf("Expected default import concurrency %d, got %d", DefaultImportConcurrency, cfg.ImportConcurrency)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("Expected info/text logging, got %s/%s", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.SessionFile != "" {
		t.Errorf("Expected no session file override, got %s", cfg.SessionFile)
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	withCleanEnv(t, map[string]string{
		"RECIPES_API_URL":            "recipes.example.com:9000/",
		"RECIPES_TIMEOUT":            "5",
		"RECIPES_SESSION_FILE":       "/tmp/session.json",
		"RECIPES_IMPORT_CONCURRENCY": "8",
		"LOG_LEVEL":                  "debug",
	})

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.APIURL != "http://recipes.example.com:9000" {
		t.Errorf("Expected scheme added, got %s", cfg.APIURL)
	}
	if cfg.Timeout != 5 {
		t.Errorf("Expected timeout 5, got %d", cfg.Timeout)
	}
	if cfg.SessionFile != "/tmp/session.json" {
		t.Errorf("Expected session file override, got %s", cfg.SessionFile)
	}
	if cfg.ImportConcurrency != 8 {
		t.Errorf("Expected import concurrency 8, got %d", cfg.ImportConcurrency)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected debug log level, got %s", cfg.LogLevel)
	}
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	withCleanEnv(t, map[string]string{"RECIPES_TIMEOUT": "7"})

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "RECIPES_API_URL=https://api.recipes.test\nRECIPES_TIMEOUT=99\n"
	if err := os.WriteFile(envFile, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.APIURL != "https://api.recipes.test" {
		t.Errorf("Expected API URL from .env, got %s", cfg.APIURL)
	}
	if cfg.Timeout != 7 {
		t.Errorf("Expected environment to win over .env, got %d", cfg.Timeout)
	}
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"zero timeout", map[string]string{"RECIPES_TIMEOUT": "0"}},
		{"huge timeout", map[string]string{"RECIPES_TIMEOUT": "10000"}},
		{"zero concurrency", map[string]string{"RECIPES_IMPORT_CONCURRENCY": "0"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			withCleanEnv(t, tc.env)
			if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestLoadConfig_NonNumericFallsBack(t *testing.T) {
	withCleanEnv(t, map[string]string{"RECIPES_TIMEOUT": "soon"})

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Expected default timeout, got %d", cfg.Timeout)
	}
}

func TestEnsureScheme(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"localhost:8080", "http://localhost:8080"},
		{"https://api.test/", "https://api.test"},
		{"http://api.test", "http://api.test"},
	}
	for _, tc := range tests {
		if got := EnsureScheme(tc.in); got != tc.want {
			t.Errorf("EnsureScheme(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

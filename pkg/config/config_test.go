package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Steam.CountryCode != "cn" {
		t.Errorf("Expected default country code to be cn, got %s", config.Steam.CountryCode)
	}

	if config.Steam.Language != "schinese" {
		t.Errorf("Expected default language to be schinese, got %s", config.Steam.Language)
	}

	if config.RateLimit.Delay != 2*time.Second {
		t.Errorf("Expected default delay to be 2s, got %v", config.RateLimit.Delay)
	}

	if config.RateLimit.Jitter != time.Second {
		t.Errorf("Expected default jitter to be 1s, got %v", config.RateLimit.Jitter)
	}

	if config.Output.Directory != "output" {
		t.Errorf("Expected default output directory to be output, got %s", config.Output.Directory)
	}

	if config.SteamDB.Strategy != "cookie" {
		t.Errorf("Expected default steamdb strategy to be cookie, got %s", config.SteamDB.Strategy)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STEAMFETCH_COUNTRY_CODE", "us")
	t.Setenv("STEAMFETCH_LANGUAGE", "english")
	t.Setenv("STEAMFETCH_OUTPUT_DIR", "/tmp/test-output")
	t.Setenv("STEAMFETCH_DELAY", "5s")
	t.Setenv("STEAMFETCH_JITTER", "500ms")
	t.Setenv("STEAMFETCH_STEAMDB_STRATEGY", "Browser")
	t.Setenv("STEAMFETCH_LOG_LEVEL", "debug")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	if config.Steam.CountryCode != "us" {
		t.Errorf("Expected country code to be us, got %s", config.Steam.CountryCode)
	}

	if config.Steam.Language != "english" {
		t.Errorf("Expected language to be english, got %s", config.Steam.Language)
	}

	if config.Output.Directory != "/tmp/test-output" {
		t.Errorf("Expected output directory to be /tmp/test-output, got %s", config.Output.Directory)
	}

	if config.RateLimit.Delay != 5*time.Second {
		t.Errorf("Expected delay to be 5s, got %v", config.RateLimit.Delay)
	}

	if config.RateLimit.Jitter != 500*time.Millisecond {
		t.Errorf("Expected jitter to be 500ms, got %v", config.RateLimit.Jitter)
	}

	if config.SteamDB.Strategy != "browser" {
		t.Errorf("Expected strategy to be lowercased to browser, got %s", config.SteamDB.Strategy)
	}

	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level to be debug, got %s", config.Logging.Level)
	}
}

func TestLoadFromEnvInvalidDelay(t *testing.T) {
	t.Setenv("STEAMFETCH_DELAY", "not-a-duration")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err == nil {
		t.Error("Expected error for invalid STEAMFETCH_DELAY")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	// yaml.v3 decodes durations as integer nanoseconds.
	content := `
steam:
  country_code: jp
  language: japanese
output:
  directory: /data/games
rate_limit:
  delay: 3000000000
steamdb:
  strategy: browser
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config := DefaultConfig()
	if err := config.LoadFromFile(path); err != nil {
		t.Fatalf("Failed to load config file: %v", err)
	}

	if config.Steam.CountryCode != "jp" {
		t.Errorf("Expected country code to be jp, got %s", config.Steam.CountryCode)
	}

	if config.Output.Directory != "/data/games" {
		t.Errorf("Expected output directory to be /data/games, got %s", config.Output.Directory)
	}

	if config.RateLimit.Delay != 3*time.Second {
		t.Errorf("Expected delay to be 3s, got %v", config.RateLimit.Delay)
	}

	if config.SteamDB.Strategy != "browser" {
		t.Errorf("Expected strategy to be browser, got %s", config.SteamDB.Strategy)
	}

	// Values absent from the file keep their defaults.
	if config.Steam.Timeout != 10*time.Second {
		t.Errorf("Expected steam timeout to keep default 10s, got %v", config.Steam.Timeout)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	config := DefaultConfig()
	if err := config.LoadFromFile("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error when an explicit config path does not exist")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "no input files",
			mutate: func(c *Config) {
				c.Input.JSONFiles = nil
				c.Input.CSVFiles = nil
			},
			wantErr: true,
		},
		{
			name:    "empty output directory",
			mutate:  func(c *Config) { c.Output.Directory = "" },
			wantErr: true,
		},
		{
			name:    "negative delay",
			mutate:  func(c *Config) { c.RateLimit.Delay = -time.Second },
			wantErr: true,
		},
		{
			name:    "unknown steamdb strategy",
			mutate:  func(c *Config) { c.SteamDB.Strategy = "carrier-pigeon" },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected config to validate, got %v", err)
			}
		})
	}
}

func TestMergeFlags(t *testing.T) {
	config := DefaultConfig()

	config.MergeFlags(map[string]interface{}{
		"output":     "/flag/output",
		"json-files": []string{"a.json", "b.json"},
		"delay":      4 * time.Second,
		"strategy":   "browser",
		"log-level":  "error",
	})

	if config.Output.Directory != "/flag/output" {
		t.Errorf("Expected output directory to be /flag/output, got %s", config.Output.Directory)
	}

	if len(config.Input.JSONFiles) != 2 || config.Input.JSONFiles[0] != "a.json" {
		t.Errorf("Expected JSON files from flags, got %v", config.Input.JSONFiles)
	}

	if config.RateLimit.Delay != 4*time.Second {
		t.Errorf("Expected delay to be 4s, got %v", config.RateLimit.Delay)
	}

	if config.SteamDB.Strategy != "browser" {
		t.Errorf("Expected strategy to be browser, got %s", config.SteamDB.Strategy)
	}

	if config.Logging.Level != "error" {
		t.Errorf("Expected log level to be error, got %s", config.Logging.Level)
	}

	// Empty flag values never override.
	config.MergeFlags(map[string]interface{}{"output": ""})
	if config.Output.Directory != "/flag/output" {
		t.Errorf("Expected empty flag to be ignored, got %s", config.Output.Directory)
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	config := DefaultConfig()
	config.Steam.CountryCode = "de"
	config.RateLimit.Jitter = 0

	if err := config.Save(path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	reloaded := DefaultConfig()
	if err := reloaded.LoadFromFile(path); err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}

	if reloaded.Steam.CountryCode != "de" {
		t.Errorf("Expected reloaded country code to be de, got %s", reloaded.Steam.CountryCode)
	}

	if reloaded.RateLimit.Jitter != 0 {
		t.Errorf("Expected reloaded jitter to be 0, got %v", reloaded.RateLimit.Jitter)
	}
}

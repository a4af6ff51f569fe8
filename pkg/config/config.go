package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the Steam fetcher
type Config struct {
	// Steam storefront API settings
	Steam SteamConfig `yaml:"steam" json:"steam"`

	// Identifier input sources
	Input InputConfig `yaml:"input" json:"input"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// SteamDB scraper settings
	SteamDB SteamDBConfig `yaml:"steamdb" json:"steamdb"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// SteamConfig holds storefront API configuration
type SteamConfig struct {
	CountryCode string        `yaml:"country_code" json:"country_code"`
	Language    string        `yaml:"language" json:"language"`
	UserAgent   string        `yaml:"user_agent" json:"user_agent"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
}

// InputConfig holds the identifier source file lists
type InputConfig struct {
	JSONFiles []string `yaml:"json_files" json:"json_files"`
	CSVFiles  []string `yaml:"csv_files" json:"csv_files"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	Directory string `yaml:"directory" json:"directory"`
}

// RateLimitConfig holds the inter-request delay configuration.
// When Jitter is non-zero each delay is drawn uniformly from
// [Delay, Delay+Jitter].
type RateLimitConfig struct {
	Delay  time.Duration `yaml:"delay" json:"delay"`
	Jitter time.Duration `yaml:"jitter" json:"jitter"`
}

// SteamDBConfig holds SteamDB listing scraper configuration
type SteamDBConfig struct {
	// Strategy selects the page access method: "cookie" or "browser".
	// Static choice, no in-run failover.
	Strategy   string        `yaml:"strategy" json:"strategy"`
	CookieFile string        `yaml:"cookie_file" json:"cookie_file"`
	Pages      []string      `yaml:"pages" json:"pages"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Steam: SteamConfig{
			CountryCode: "cn",
			Language:    "schinese",
			UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			Timeout:     10 * time.Second,
		},
		Input: InputConfig{
			JSONFiles: []string{"json-config/formatted-cloud-storage-namespace.json"},
			CSVFiles:  []string{"id.csv"},
		},
		Output: OutputConfig{
			Directory: "output",
		},
		RateLimit: RateLimitConfig{
			Delay:  2 * time.Second,
			Jitter: time.Second,
		},
		SteamDB: SteamDBConfig{
			Strategy:   "cookie",
			CookieFile: filepath.Join("json-config", "support", "cookies.txt"),
			Timeout:    30 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if cc := os.Getenv("STEAMFETCH_COUNTRY_CODE"); cc != "" {
		c.Steam.CountryCode = cc
	}
	if lang := os.Getenv("STEAMFETCH_LANGUAGE"); lang != "" {
		c.Steam.Language = lang
	}
	if ua := os.Getenv("STEAMFETCH_USER_AGENT"); ua != "" {
		c.Steam.UserAgent = ua
	}
	if outputDir := os.Getenv("STEAMFETCH_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}
	if delay := os.Getenv("STEAMFETCH_DELAY"); delay != "" {
		d, err := time.ParseDuration(delay)
		if err != nil {
			return fmt.Errorf("invalid STEAMFETCH_DELAY: %w", err)
		}
		c.RateLimit.Delay = d
	}
	if jitter := os.Getenv("STEAMFETCH_JITTER"); jitter != "" {
		d, err := time.ParseDuration(jitter)
		if err != nil {
			return fmt.Errorf("invalid STEAMFETCH_JITTER: %w", err)
		}
		c.RateLimit.Jitter = d
	}
	if strategy := os.Getenv("STEAMFETCH_STEAMDB_STRATEGY"); strategy != "" {
		c.SteamDB.Strategy = strings.ToLower(strategy)
	}
	if cookieFile := os.Getenv("STEAMFETCH_COOKIE_FILE"); cookieFile != "" {
		c.SteamDB.CookieFile = cookieFile
	}
	if logLevel := os.Getenv("STEAMFETCH_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".steamfetch.yaml",
		".steamfetch.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "steamfetch", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "steamfetch", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if len(c.Input.JSONFiles) == 0 && len(c.Input.CSVFiles) == 0 {
		errs = append(errs, errors.New("at least one JSON or CSV input file is required"))
	}
	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.RateLimit.Delay < 0 {
		errs = append(errs, errors.New("rate limit delay cannot be negative"))
	}
	if c.RateLimit.Jitter < 0 {
		errs = append(errs, errors.New("rate limit jitter cannot be negative"))
	}
	if c.Steam.Timeout <= 0 {
		errs = append(errs, errors.New("steam timeout must be positive"))
	}

	switch strings.ToLower(c.SteamDB.Strategy) {
	case "cookie", "browser":
	default:
		errs = append(errs, fmt.Errorf("invalid steamdb strategy %q (want cookie or browser)", c.SteamDB.Strategy))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeFlags merges command line flag values into the configuration
func (c *Config) MergeFlags(flags map[string]interface{}) {
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if jsonFiles, ok := flags["json-files"].([]string); ok && len(jsonFiles) > 0 {
		c.Input.JSONFiles = jsonFiles
	}
	if csvFiles, ok := flags["csv-files"].([]string); ok && len(csvFiles) > 0 {
		c.Input.CSVFiles = csvFiles
	}
	if delay, ok := flags["delay"].(time.Duration); ok && delay > 0 {
		c.RateLimit.Delay = delay
	}
	if strategy, ok := flags["strategy"].(string); ok && strategy != "" {
		c.SteamDB.Strategy = strategy
	}
	if cookieFile, ok := flags["cookie-file"].(string); ok && cookieFile != "" {
		c.SteamDB.CookieFile = cookieFile
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".steamfetch.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

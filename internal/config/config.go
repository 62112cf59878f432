// Package config loads the guardrails configuration file.
//
// The file is YAML. ${VAR_NAME} references are expanded from the environment
// before parsing, and missing fields fall back to defaults. A missing file is
// not an error for LoadOrDefault, so guardrails runs without one.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "guardrails.yaml"

// DefaultConvertDirs are the outline directories converted to markdown,
// relative to ConvertConfig.Root.
var DefaultConvertDirs = []string{
	"partials/general",
	"partials/modes",
	"partials/phases",
	"partials/roles",
	"iterations/pass_2",
}

// Config represents the complete guardrails configuration
type Config struct {
	OpsDir  string        `yaml:"ops_dir"`
	Logging LoggingConfig `yaml:"logging"`
	Store   StoreConfig   `yaml:"store"`
	Convert ConvertConfig `yaml:"convert"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// StoreConfig holds database settings
type StoreConfig struct {
	BusyTimeout    time.Duration `yaml:"-"`
	BusyTimeoutRaw string        `yaml:"busy_timeout"`
}

// ConvertConfig holds the outline converter settings
type ConvertConfig struct {
	Pandoc string   `yaml:"pandoc"`
	Root   string   `yaml:"root"`
	Dirs   []string `yaml:"dirs"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if cfg.Store.BusyTimeoutRaw != "" {
		cfg.Store.BusyTimeout, err = time.ParseDuration(cfg.Store.BusyTimeoutRaw)
		if err != nil {
			return nil, fmt.Errorf("parsing store.busy_timeout %q: %w", cfg.Store.BusyTimeoutRaw, err)
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads path, returning defaults when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// applyDefaults fills zero-valued fields.
func (c *Config) applyDefaults() {
	if c.OpsDir == "" {
		c.OpsDir = "ops"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Store.BusyTimeoutRaw == "" && c.Store.BusyTimeout == 0 {
		c.Store.BusyTimeout = 5 * time.Second
	}
	if c.Convert.Pandoc == "" {
		c.Convert.Pandoc = "pandoc"
	}
	if c.Convert.Root == "" {
		c.Convert.Root = "."
	}
	if len(c.Convert.Dirs) == 0 {
		c.Convert.Dirs = append([]string(nil), DefaultConvertDirs...)
	}
}

// Validate checks that all configuration values are usable.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	if c.Store.BusyTimeout < 0 {
		return fmt.Errorf("store.busy_timeout must not be negative")
	}
	return nil
}

// ParseLevel converts a logging.level value to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("logging.level must be debug, info, warn or error, got %q", level)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

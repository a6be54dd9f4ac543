// Package config holds the explicit runtime configuration for rc.
//
// A Config is built once at startup (defaults, then the YAML file, then
// environment, then flags) and handed by pointer to the components that need
// it. Nothing reads process-wide settings after that point.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL  = "http://localhost:8000"
	DefaultAPIKey   = "dev-key-12345"
	DefaultLogLevel = "info"
	configFileName  = "config.yaml"
	appDirName      = "rc"
)

// Config is the full runtime configuration
type Config struct {
	API     APIConfig     `yaml:"api"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	Journal JournalConfig `yaml:"journal"`
	UI      UIConfig      `yaml:"ui"`

	// Path is the file the config was read from, empty if none
	Path string `yaml:"-"`
}

// APIConfig locates the remote reviews service
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// LogConfig controls the zerolog output
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // "-" writes to stderr
}

// MetricsConfig enables the optional prometheus endpoint
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// JournalConfig locates the local activity journal
type JournalConfig struct {
	Path     string `yaml:"path"`
	Disabled bool   `yaml:"disabled"`
	Operator string `yaml:"operator"`
}

// UIConfig holds presentation preferences
type UIConfig struct {
	WatchConfig bool `yaml:"watch_config"`
	// glamour standard style for review bodies: dark, light, notty, ...
	MarkdownStyle string `yaml:"markdown_style"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			APIKey:  DefaultAPIKey,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
			File:  filepath.Join(StateDir(), "rc.log"),
		},
		Journal: JournalConfig{
			Path: filepath.Join(StateDir(), "journal.db"),
		},
		UI: UIConfig{
			WatchConfig:   true,
			MarkdownStyle: "dark",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (or the default
// location when path is empty) and the environment.
// A missing file at the default location is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if err := cfg.mergeFile(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			path = ""
		} else {
			return nil, err
		}
	}
	cfg.Path = path

	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from RC_* environment variables
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set("RC_API_URL", &c.API.BaseURL)
	set("RC_API_KEY", &c.API.APIKey)
	set("RC_LOG_LEVEL", &c.Log.Level)
	set("RC_LOG_FILE", &c.Log.File)
	set("RC_METRICS_ADDR", &c.Metrics.Addr)
	set("RC_JOURNAL", &c.Journal.Path)
	set("RC_OPERATOR", &c.Journal.Operator)
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api base_url cannot be empty")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid api base_url %q: %w", c.API.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api base_url must be http or https, got %q", c.API.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api base_url %q has no host", c.API.BaseURL)
	}
	return nil
}

// BaseURL returns the API base without a trailing slash
func (c *Config) BaseURL() string {
	return strings.TrimRight(c.API.BaseURL, "/")
}

// Save writes the configuration as YAML, creating parent directories
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	// The file holds the API key
	return os.WriteFile(path, data, 0o600)
}

// DefaultPath returns the default config file location
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appDirName, configFileName)
	}
	return filepath.Join(homeDir(), ".rc", configFileName)
}

// StateDir returns the directory for logs and the journal
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appDirName)
	}
	return filepath.Join(homeDir(), ".rc")
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

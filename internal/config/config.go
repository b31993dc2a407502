package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Makepad-fr/itemdash/internal/logging"
	"github.com/Makepad-fr/itemdash/internal/ui"
)

// EnvPrefix is prepended to every environment override,
// e.g. ITEMDASH_API_BASE_URL for api.base_url.
const EnvPrefix = "ITEMDASH"

// Config represents the complete itemdash configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Logging LoggingConfig `mapstructure:"logging"`
	TUI     TUIConfig     `mapstructure:"tui"`
}

// APIConfig points the client at the items service
type APIConfig struct {
	// BaseURL is the service root, without a trailing slash
	BaseURL string `mapstructure:"base_url"`
	// Timeout bounds every request (default: 10s)
	Timeout time.Duration `mapstructure:"timeout"`
}

// SessionConfig controls where the bearer token is kept
type SessionConfig struct {
	// Backend is "file" (credentials.json) or "sqlite" (session.db)
	Backend string `mapstructure:"backend"`
	// Dir holds the token and the debug log. Supports ~ expansion.
	Dir string `mapstructure:"dir"`
}

// LoggingConfig controls debug logging
type LoggingConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Level   string `mapstructure:"level"`
}

// TUIConfig controls the dashboard
type TUIConfig struct {
	// Theme is one of "classic", "neon", "mono"
	Theme string `mapstructure:"theme"`
	// ToastTTL is how long a notice stays on screen
	ToastTTL time.Duration `mapstructure:"toast_ttl"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8080",
			Timeout: 10 * time.Second,
		},
		Session: SessionConfig{
			Backend: BackendFile,
			Dir:     "~/.itemdash",
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
		TUI: TUIConfig{
			Theme:    "classic",
			ToastTTL: 4 * time.Second,
		},
	}
}

// Session backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// SetDefaults registers default values with v
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("session.backend", d.Session.Backend)
	v.SetDefault("session.dir", d.Session.Dir)
	v.SetDefault("logging.enabled", d.Logging.Enabled)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("tui.theme", d.TUI.Theme)
	v.SetDefault("tui.toast_ttl", d.TUI.ToastTTL)
}

// Init prepares v: defaults, env overrides and the config file.
// An explicit cfgFile must exist; the default location is optional.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load reads the configuration from v into a Config struct and validates it
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &cfg, nil
}

// Validate returns every problem found in c.
func (c *Config) Validate() []error {
	var errs []error
	if c.API.BaseURL == "" {
		errs = append(errs, fmt.Errorf("api.base_url: must not be empty"))
	} else if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		errs = append(errs, fmt.Errorf("api.base_url: %q is not an http(s) URL", c.API.BaseURL))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("api.timeout: must be positive, got %s", c.API.Timeout))
	}
	switch c.Session.Backend {
	case BackendFile, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("session.backend: %q is not one of %s, %s", c.Session.Backend, BackendFile, BackendSQLite))
	}
	if !oneOf(c.Logging.Level, logging.ValidLevels()) {
		errs = append(errs, fmt.Errorf("logging.level: %q is not one of %s", c.Logging.Level, strings.Join(logging.ValidLevels(), ", ")))
	}
	if !oneOf(c.TUI.Theme, ui.Themes()) {
		errs = append(errs, fmt.Errorf("tui.theme: %q is not one of %s", c.TUI.Theme, strings.Join(ui.Themes(), ", ")))
	}
	if c.TUI.ToastTTL <= 0 {
		errs = append(errs, fmt.Errorf("tui.toast_ttl: must be positive, got %s", c.TUI.ToastTTL))
	}
	return errs
}

// oneOf matches case-insensitively.
func oneOf(s string, allowed []string) bool {
	return slices.ContainsFunc(allowed, func(a string) bool { return strings.EqualFold(a, s) })
}

// SessionDir returns session.dir with ~ expanded.
func (c *Config) SessionDir() string {
	return expandHome(c.Session.Dir)
}

// YAML renders c the way a config file would hold it.
func (c *Config) YAML() ([]byte, error) {
	doc := map[string]any{
		"api": map[string]any{
			"base_url": c.API.BaseURL,
			"timeout":  c.API.Timeout.String(),
		},
		"session": map[string]any{
			"backend": c.Session.Backend,
			"dir":     c.Session.Dir,
		},
		"logging": map[string]any{
			"enabled": c.Logging.Enabled,
			"level":   c.Logging.Level,
		},
		"tui": map[string]any{
			"theme":     c.TUI.Theme,
			"toast_ttl": c.TUI.ToastTTL.String(),
		},
	}
	return yaml.Marshal(doc)
}

// WriteFile writes c to path, refusing to clobber an existing file.
func (c *Config) WriteFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	b, err := c.YAML()
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "itemdash")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".itemdash"
	}
	return filepath.Join(home, ".config", "itemdash")
}

// ConfigFile returns the path to the default config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

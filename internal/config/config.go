package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"simscan/internal/tokenizer"
)

var (
	// ErrUnknownFormat is returned for an unsupported report format.
	ErrUnknownFormat = errors.New("unknown report format")
	// ErrUnknownStore is returned for an unsupported result store type.
	ErrUnknownStore = errors.New("unknown result store")
)

// CollectorConfig configures how group texts are gathered from disk.
type CollectorConfig struct {
	Extensions []string `yaml:"extensions"`
	SkipHidden bool     `yaml:"skip_hidden"`
}

// TokenizerConfig selects the reserved words removed before counting.
type TokenizerConfig struct {
	Preset   string   `yaml:"preset"`
	Reserved []string `yaml:"reserved,omitempty"`
}

// StoreConfig selects where pair scores are kept.
type StoreConfig struct {
	Type string `yaml:"type"`
	Path string `yaml:"path,omitempty"`
}

// ReportConfig controls output of pair scores.
type ReportConfig struct {
	Format   string   `yaml:"format"`
	Top      int      `yaml:"top"`
	MinScore *float64 `yaml:"min_score,omitempty"`
	Explain  int      `yaml:"explain"`
}

// LoggingConfig sets operational log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Collector CollectorConfig `yaml:"collector"`
	Tokenizer TokenizerConfig `yaml:"tokenizer"`
	Store     StoreConfig     `yaml:"store"`
	Report    ReportConfig    `yaml:"report"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(cfg)
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault tries ./simscan.yaml first, then ~/.config/simscan/config.yaml.
// If neither exists, it writes defaults to ~/.config/simscan/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "simscan.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := DefaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnvOverrides(cfg)
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// DefaultUserConfigPath returns ~/.config/simscan/config.yaml.
func DefaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "simscan", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	return &AppConfig{
		Collector: CollectorConfig{Extensions: []string{".py"}, SkipHidden: true},
		Tokenizer: TokenizerConfig{Preset: tokenizer.PresetPython},
		Store:     StoreConfig{Type: "memory"},
		Report:    ReportConfig{Format: "auto"},
		Logging:   LoggingConfig{Level: "info"},
	}
}

// Validate checks enumerated fields.
func (c *AppConfig) Validate() error {
	switch c.Report.Format {
	case "auto", "csv", "table", "json":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, c.Report.Format)
	}
	switch c.Store.Type {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return errors.New("store.path is required for sqlite store")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStore, c.Store.Type)
	}
	if _, err := tokenizer.Preset(c.Tokenizer.Preset); err != nil {
		return err
	}
	if c.Report.Top < 0 {
		return errors.New("report.top must not be negative")
	}
	return nil
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Report.Format == "" {
		cfg.Report.Format = "auto"
	}
	cfg.Report.Format = strings.ToLower(cfg.Report.Format)
	if cfg.Store.Type == "" {
		cfg.Store.Type = "memory"
	}
	cfg.Store.Type = strings.ToLower(cfg.Store.Type)
	if cfg.Store.Type == "sqlite" && cfg.Store.Path == "" {
		cfg.Store.Path = DefaultStorePath()
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// DefaultStorePath returns the sqlite database path under the user cache
// directory, or "" when that directory is unknown.
func DefaultStorePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "simscan", "scores.db")
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("SIMSCAN_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SIMSCAN_STORE_PATH"); v != "" {
		cfg.Store.Type = "sqlite"
		cfg.Store.Path = v
	}
}

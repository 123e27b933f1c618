// Package config loads the matrixplan service configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LegacyConfig configures conversion of legacy .ppt uploads.
type LegacyConfig struct {
	// SofficePath is the LibreOffice executable. Empty searches PATH for
	// soffice, then libreoffice.
	SofficePath string `yaml:"soffice_path"`

	// Timeout bounds a single conversion.
	Timeout time.Duration `yaml:"timeout"`
}

// Config represents matrixplan configuration options.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// LogConsole switches to human-readable console output.
	LogConsole bool `yaml:"log_console"`

	// MaxUploadBytes caps the size of an uploaded deck.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// StaticDir is an optional directory served at "/".
	StaticDir string `yaml:"static_dir"`

	// Legacy contains .ppt conversion settings.
	Legacy LegacyConfig `yaml:"legacy"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Listen:         ":8000",
		LogLevel:       "info",
		MaxUploadBytes: 50 << 20,
		Legacy: LegacyConfig{
			Timeout: 60 * time.Second,
		},
	}
}

// LoadConfig reads path and merges it over the defaults. A missing file
// yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Durations are written as strings ("90s") in the file.
	type yamlLegacy struct {
		SofficePath string `yaml:"soffice_path"`
		Timeout     string `yaml:"timeout"`
	}
	type yamlConfig struct {
		Listen         string     `yaml:"listen"`
		LogLevel       string     `yaml:"log_level"`
		LogConsole     bool       `yaml:"log_console"`
		MaxUploadBytes int64      `yaml:"max_upload_bytes"`
		StaticDir      string     `yaml:"static_dir"`
		Legacy         yamlLegacy `yaml:"legacy"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.Listen != "" {
		cfg.Listen = yamlCfg.Listen
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogConsole {
		cfg.LogConsole = true
	}
	if yamlCfg.MaxUploadBytes != 0 {
		cfg.MaxUploadBytes = yamlCfg.MaxUploadBytes
	}
	if yamlCfg.StaticDir != "" {
		cfg.StaticDir = yamlCfg.StaticDir
	}
	if yamlCfg.Legacy.SofficePath != "" {
		cfg.Legacy.SofficePath = yamlCfg.Legacy.SofficePath
	}
	if yamlCfg.Legacy.Timeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.Legacy.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid legacy.timeout format %q: %w", yamlCfg.Legacy.Timeout, err)
		}
		cfg.Legacy.Timeout = timeout
	}

	return cfg, nil
}

// MergeWithFlags applies CLI flag values; nil pointers leave the field alone.
func (c *Config) MergeWithFlags(listen, logLevel *string) {
	if listen != nil {
		c.Listen = *listen
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return errors.New("listen cannot be empty")
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be > 0, got %d", c.MaxUploadBytes)
	}
	if c.Legacy.Timeout <= 0 {
		return fmt.Errorf("legacy.timeout must be > 0, got %v", c.Legacy.Timeout)
	}

	if c.StaticDir != "" {
		info, err := os.Stat(c.StaticDir)
		if err != nil {
			return fmt.Errorf("static_dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("static_dir %q is not a directory", c.StaticDir)
		}
	}

	return nil
}

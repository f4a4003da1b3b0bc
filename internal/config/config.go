// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultAPIURL is the backend used when nothing else is configured.
const DefaultAPIURL = "http://localhost:3000/api"

// Config holds all configuration values for orbitfund.
type Config struct {
	APIURL         string        `mapstructure:"api_url" yaml:"api_url"`
	DataDir        string        `mapstructure:"data_dir" yaml:"data_dir"`
	LogLevel       string        `mapstructure:"log_level" yaml:"log_level"`
	LogFile        string        `mapstructure:"log_file" yaml:"log_file"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
	PreviewWorkers int           `mapstructure:"preview_workers" yaml:"preview_workers"`
	Journal        bool          `mapstructure:"journal" yaml:"journal"`
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("orbitfund")

	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("data_dir", ".orbitfund")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("preview_workers", 4)
	v.SetDefault("journal", true)

	// Setup ENV binding with ORBITFUND_ prefix
	v.SetEnvPrefix("ORBITFUND")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range []string{"api_url", "data_dir", "log_level", "log_file", "timeout", "preview_workers", "journal"} {
		if err := v.BindEnv(key, "ORBITFUND_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	// Load global config first (if exists)
	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	// Merge project config on top (if exists)
	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that would otherwise fail much later.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return fmt.Errorf("api_url cannot be empty")
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("api_url must start with http:// or https://: %s", c.APIURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0")
	}
	if c.PreviewWorkers < 1 {
		return fmt.Errorf("preview_workers must be >= 1")
	}
	return nil
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalDir returns the XDG config directory for orbitfund.
func GlobalDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "orbitfund")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "orbitfund")
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/orbitfund/orbitfund.yml or $XDG_CONFIG_HOME/orbitfund/orbitfund.yml.
func GlobalPath() string {
	return filepath.Join(GlobalDir(), "orbitfund.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "orbitfund.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Package config provides centralized configuration management using Viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Defaults mirror the hosted onboarding service.
const (
	DefaultEndpoint       = "https://onboarding-api.bajgo.com/api/vendors/onboarding"
	DefaultDomain         = "bajgo.com"
	DefaultRequestTimeout = 60 * time.Second
	DefaultTickInterval   = time.Second
	DefaultGraceDelay     = 2 * time.Second
	DefaultCountdown      = 600
)

// Config holds all configuration values for storelaunch.
type Config struct {
	Endpoint       string        `mapstructure:"endpoint" yaml:"endpoint"`
	Domain         string        `mapstructure:"domain" yaml:"domain"`
	LogLevel       string        `mapstructure:"log_level" yaml:"log_level"`
	LogFile        string        `mapstructure:"log_file" yaml:"log_file"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	TickInterval   time.Duration `mapstructure:"tick_interval" yaml:"tick_interval"`
	GraceDelay     time.Duration `mapstructure:"grace_delay" yaml:"grace_delay"`
	Countdown      int           `mapstructure:"countdown" yaml:"countdown"`
	Events         bool          `mapstructure:"events" yaml:"events"`
	OutputDir      string        `mapstructure:"output_dir" yaml:"output_dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Endpoint:       DefaultEndpoint,
		Domain:         DefaultDomain,
		LogLevel:       "info",
		RequestTimeout: DefaultRequestTimeout,
		TickInterval:   DefaultTickInterval,
		GraceDelay:     DefaultGraceDelay,
		Countdown:      DefaultCountdown,
		Events:         true,
		OutputDir:      ".",
	}
}

// envKeys lists every key bound to a STORELAUNCH_ variable.
var envKeys = []string{
	"endpoint",
	"domain",
	"log_level",
	"log_file",
	"request_timeout",
	"tick_interval",
	"grace_delay",
	"countdown",
	"events",
	"output_dir",
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("storelaunch")

	d := Default()
	v.SetDefault("endpoint", d.Endpoint)
	v.SetDefault("domain", d.Domain)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", "")
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("tick_interval", d.TickInterval)
	v.SetDefault("grace_delay", d.GraceDelay)
	v.SetDefault("countdown", d.Countdown)
	v.SetDefault("events", d.Events)
	v.SetDefault("output_dir", d.OutputDir)

	v.SetEnvPrefix("STORELAUNCH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit bindings so durations and bools parse from the environment.
	for _, key := range envKeys {
		if err := v.BindEnv(key, "STORELAUNCH_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

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

	return &cfg, nil
}

// Validate checks the values the deployment tracker depends on.
func (c *Config) Validate() error {
	var errs []error
	if c.Endpoint == "" {
		errs = append(errs, errors.New("endpoint is required"))
	}
	if c.Domain == "" {
		errs = append(errs, errors.New("domain is required"))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval))
	}
	if c.GraceDelay < 0 {
		errs = append(errs, fmt.Errorf("grace_delay must not be negative, got %s", c.GraceDelay))
	}
	if c.Countdown <= 0 {
		errs = append(errs, fmt.Errorf("countdown must be positive, got %d", c.Countdown))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("request_timeout must not be negative, got %s", c.RequestTimeout))
	}
	return errors.Join(errs...)
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/storelaunch/storelaunch.yml or $XDG_CONFIG_HOME/storelaunch/storelaunch.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "storelaunch", "storelaunch.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "storelaunch", "storelaunch.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "storelaunch.yml"
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

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

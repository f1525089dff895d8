package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Global settings
	Format  string `mapstructure:"format"`
	Quiet   bool   `mapstructure:"quiet"`
	Verbose bool   `mapstructure:"verbose"`

	// Default values for commands
	Defaults DefaultsConfig `mapstructure:"defaults"`
}

// DefaultsConfig holds default values for the tail/watch commands
type DefaultsConfig struct {
	URL            string `mapstructure:"url"`
	LoadBytes      int64  `mapstructure:"load_bytes"`
	PollIntervalMs int64  `mapstructure:"poll_interval_ms"`
	Paused         bool   `mapstructure:"paused"`
	Debug          bool   `mapstructure:"debug"`
	Heartbeat      string `mapstructure:"heartbeat"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Format:  "auto",
		Quiet:   false,
		Verbose: false,
		Defaults: DefaultsConfig{
			LoadBytes:      30720,
			PollIntervalMs: 1000,
			Paused:         false,
			Debug:          false,
		},
	}
}

// Validate rejects values the tail loop cannot run with.
func (c *Config) Validate() error {
	if c.Defaults.LoadBytes <= 0 {
		return fmt.Errorf("defaults.load_bytes must be a positive integer, got %d", c.Defaults.LoadBytes)
	}
	if c.Defaults.PollIntervalMs <= 0 {
		return fmt.Errorf("defaults.poll_interval_ms must be a positive integer, got %d", c.Defaults.PollIntervalMs)
	}
	switch c.Format {
	case "auto", "ndjson", "text":
	default:
		return fmt.Errorf("format must be auto, ndjson or text, got %q", c.Format)
	}
	return nil
}

// Load loads configuration from files and environment
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("rtw")
	v.SetConfigType("yaml")

	// Config paths, lowest precedence first
	v.AddConfigPath("/etc/rtw/")
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, "rtw"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.SetConfigName(".rtw")
	}
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("RTW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.BindEnv("format", "RTW_FORMAT")
	v.BindEnv("quiet", "RTW_QUIET")
	v.BindEnv("verbose", "RTW_VERBOSE")
	v.BindEnv("defaults.url", "RTW_URL")
	v.BindEnv("defaults.load_bytes", "RTW_LOAD_BYTES")
	v.BindEnv("defaults.poll_interval_ms", "RTW_POLL_INTERVAL_MS")

	cfg := Default()
	v.SetDefault("format", cfg.Format)
	v.SetDefault("quiet", cfg.Quiet)
	v.SetDefault("verbose", cfg.Verbose)
	v.SetDefault("defaults.load_bytes", cfg.Defaults.LoadBytes)
	v.SetDefault("defaults.poll_interval_ms", cfg.Defaults.PollIntervalMs)
	v.SetDefault("defaults.paused", cfg.Defaults.Paused)
	v.SetDefault("defaults.debug", cfg.Defaults.Debug)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found; use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ConfigFile returns the path to the config file that was loaded
func ConfigFile() string {
	v := viper.New()

	v.SetConfigName("rtw")
	v.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err == nil {
		return v.ConfigFileUsed()
	}

	v.SetConfigName(".rtw")
	if err := v.ReadInConfig(); err == nil {
		return v.ConfigFileUsed()
	}

	return ""
}

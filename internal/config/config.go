// Package config loads service configuration with viper. Everything here is
// fixed at construction time; nothing in the core mutates configuration.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Server struct {
		Port         int      `mapstructure:"port"`
		AllowOrigins []string `mapstructure:"allow_origins"`
	} `mapstructure:"server"`

	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`

	Auth struct {
		JWTSecret  string `mapstructure:"jwt_secret"`
		TokenHours int    `mapstructure:"token_hours"`
	} `mapstructure:"auth"`

	Authority struct {
		URL            string `mapstructure:"url"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	} `mapstructure:"authority"`

	// Network selects which funding-token binding to use. The selection
	// happens once at startup; the bound token never changes afterwards.
	Network string `mapstructure:"network"`

	// Tokens maps a network name to its funding-token service URL.
	Tokens map[string]string `mapstructure:"tokens"`

	// Treasury is the account direct payments are transferred into.
	Treasury string `mapstructure:"treasury"`

	Hooks struct {
		Enabled  bool   `mapstructure:"enabled"`
		Endpoint string `mapstructure:"endpoint"`
	} `mapstructure:"hooks"`
}

// Load reads config.yaml from the working directory (or CONFIG_PATH) with
// environment variable overrides.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("server.port", 8080)
	v.SetDefault("database.path", "./data/chaintab.db")
	v.SetDefault("auth.token_hours", 24)
	v.SetDefault("authority.timeout_seconds", 30)
	v.SetDefault("network", "local")
	v.SetDefault("treasury", "treasury")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine; defaults plus env cover dev setups.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// TokenURL returns the funding-token service URL for the configured network.
func (c *Config) TokenURL() (string, error) {
	u, ok := c.Tokens[c.Network]
	if !ok {
		return "", fmt.Errorf("no token binding for network %q", c.Network)
	}
	return u, nil
}

// TokenDuration returns the JWT lifetime.
func (c *Config) TokenDuration() time.Duration {
	return time.Duration(c.Auth.TokenHours) * time.Hour
}

// AuthorityTimeout returns the transmitter call timeout.
func (c *Config) AuthorityTimeout() time.Duration {
	return time.Duration(c.Authority.TimeoutSeconds) * time.Second
}

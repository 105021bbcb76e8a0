// Package config loads the client configuration: a .env file for secrets
// and a YAML file for everything else.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	APIBaseURL   string `mapstructure:"api_base_url"`
	GatewayURL   string `mapstructure:"gateway_url"`
	SessionToken string `mapstructure:"session_token"`

	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	RowHeight         float64       `mapstructure:"row_height"`
	LogLevel          string        `mapstructure:"log_level"`
}

// Load reads the YAML config at path, layered over environment variables
// prefixed with CHATAPP_. A missing .env or config file falls back to
// defaults, the environment may already be populated.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CHATAPP")
	v.AutomaticEnv()

	v.SetDefault("api_base_url", "http://localhost:8080/api/protected")
	v.SetDefault("gateway_url", "ws://localhost:8080/api/protected/ws")
	v.SetDefault("session_token", "")
	v.SetDefault("heartbeat_interval", 10*time.Second)
	v.SetDefault("row_height", 50.0)
	v.SetDefault("log_level", "debug")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.Wrap(err, "reading config file")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshalling config")
	}

	return &cfg, nil
}

// Package config loads runtime configuration from a config.yaml file and the
// environment. Environment variables override file settings; a missing file
// just means defaults plus environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type GeneratorConfig struct {
	BaseURL string
	APIKey  string
	Model   string

	// Persist controls whether a generated draft is published immediately
	// or returned to the client for review.
	Persist bool
}

type Config struct {
	Port          int
	SQLitePath    string
	AllowedOrigin string
	LogLevel      string

	// RedisAddr enables the read cache when non-empty.
	RedisAddr string
	CacheTTL  time.Duration

	Generator GeneratorConfig
}

// Load reads .env, config.yaml and the environment, in increasing order of
// precedence.
func Load() (*Config, error) {
	// Load environment variables from .env; a missing file is fine.
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, skipping")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("port", 8080)
	v.SetDefault("sqlite.path", "./blogwire.db")
	v.SetDefault("allowed.origin", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("redis.addr", "")
	v.SetDefault("cache.ttl", "60s")
	v.SetDefault("generator.base.url", "")
	v.SetDefault("generator.api.key", "")
	v.SetDefault("generator.model", "")
	v.SetDefault("generator.persist", false)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		log.Debug().Msg("No config.yaml found, using defaults and environment")
	}

	return &Config{
		Port:          v.GetInt("port"),
		SQLitePath:    v.GetString("sqlite.path"),
		AllowedOrigin: v.GetString("allowed.origin"),
		LogLevel:      v.GetString("log.level"),
		RedisAddr:     v.GetString("redis.addr"),
		CacheTTL:      v.GetDuration("cache.ttl"),
		Generator: GeneratorConfig{
			BaseURL: v.GetString("generator.base.url"),
			APIKey:  v.GetString("generator.api.key"),
			Model:   v.GetString("generator.model"),
			Persist: v.GetBool("generator.persist"),
		},
	}, nil
}

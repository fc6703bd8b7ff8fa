package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix shared by every configuration environment variable.
const EnvPrefix = "MAGICPHOTO"

// Default values applied before any file or environment source.
var defaults = map[string]any{
	"server.port":                        8080,
	"server.log_level":                   "info",
	"server.public_base_url":             "",
	"database.url":                       "",
	"database.max_open_conns":            25,
	"database.max_idle_conns":            25,
	"database.conn_max_lifetime_minutes": 5,
	"auth.jwt_secret":                    "",
	"auth.token_lifetime_minutes":        7 * 24 * 60,
	"llm.gemini_api_key":                 "",
	"llm.image_model":                    "imagen-3.0-generate-002",
	"llm.text_model":                     "gemini-2.0-flash",
	"llm.aspect_ratio":                   "1:1",
	"llm.negative_prompt":                "low quality, blurry, distorted",
	"llm.sample_count":                   1,
	"llm.provider_timeout_seconds":       60,
	"llm.enhancer_timeout_seconds":       30,
	"task.worker_count":                  4,
	"task.queue_size":                    100,
	"task.estimated_seconds":             30,
	"storage.upload_dir":                 "uploads",
	"storage.max_upload_bytes":           10 << 20,
	"account.initial_points":             10,
	"account.generation_cost":            1,
}

// Load configuration from a .env file, an optional config file, and
// environment variables. Environment variables take precedence over values
// from the config file. Returns a populated Config or an error if loading or
// validation fails.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the struct tags on cfg.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// BaseURL returns the externally visible origin of the server.
func (c *Config) BaseURL() string {
	if c.Server.PublicBaseURL != "" {
		return strings.TrimRight(c.Server.PublicBaseURL, "/")
	}
	return fmt.Sprintf("http://localhost:%d", c.Server.Port)
}

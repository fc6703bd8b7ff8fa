package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage" validate:"required"`
	Account  AccountConfig  `mapstructure:"account" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// PublicBaseURL prefixes URLs handed out for uploaded and generated images.
	// When empty, http://localhost:<port> is used.
	PublicBaseURL string `mapstructure:"public_base_url" validate:"omitempty,url"`
}

// DatabaseConfig contains all database-related configuration settings.
// An empty URL selects the in-memory store.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url" validate:"omitempty,url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// LLMConfig contains the generative model settings.
type LLMConfig struct {
	GeminiAPIKey           string `mapstructure:"gemini_api_key" validate:"required"`
	ImageModel             string `mapstructure:"image_model" validate:"required"`
	TextModel              string `mapstructure:"text_model" validate:"required"`
	AspectRatio            string `mapstructure:"aspect_ratio" validate:"required,oneof=1:1 3:4 4:3 9:16 16:9"`
	NegativePrompt         string `mapstructure:"negative_prompt"`
	SampleCount            int    `mapstructure:"sample_count" validate:"required,gte=1,lte=4"`
	ProviderTimeoutSeconds int    `mapstructure:"provider_timeout_seconds" validate:"required,gt=0"`
	EnhancerTimeoutSeconds int    `mapstructure:"enhancer_timeout_seconds" validate:"required,gt=0"`
}

// TaskConfig controls the background generation workers.
type TaskConfig struct {
	WorkerCount      int `mapstructure:"worker_count" validate:"required,gt=0"`
	QueueSize        int `mapstructure:"queue_size" validate:"required,gt=0"`
	EstimatedSeconds int `mapstructure:"estimated_seconds" validate:"required,gt=0"`
}

// StorageConfig controls where image files are written.
type StorageConfig struct {
	UploadDir      string `mapstructure:"upload_dir" validate:"required"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" validate:"required,gt=0"`
}

// AccountConfig holds the point economy settings.
type AccountConfig struct {
	InitialPoints  int `mapstructure:"initial_points" validate:"gte=0"`
	GenerationCost int `mapstructure:"generation_cost" validate:"required,gt=0"`
}

// TokenLifetime returns the JWT lifetime as a duration.
func (c AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenLifetimeMinutes) * time.Minute
}

// ProviderTimeout returns the per-call deadline for the image provider.
func (c LLMConfig) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutSeconds) * time.Second
}

// EnhancerTimeout returns the per-call deadline for the text model.
func (c LLMConfig) EnhancerTimeout() time.Duration {
	return time.Duration(c.EnhancerTimeoutSeconds) * time.Second
}

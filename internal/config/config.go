package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "parkassist/libs/config"
)

// HTTPConfig holds the listen settings.
type HTTPConfig struct {
	Port string `yaml:"port" env:"HTTP_PORT"`
}

// DatabaseConfig holds the Postgres connection.
type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"POSTGRES_DSN"`
}

// RedisConfig holds the conversation history store connection.
type RedisConfig struct {
	Addr       string `yaml:"addr" env:"REDIS_ADDR"`
	Password   string `yaml:"password" env:"REDIS_PASSWORD"`
	DB         int    `yaml:"db" env:"REDIS_DB"`
	TTLSeconds int    `yaml:"ttlSeconds" env:"REDIS_TTL"`
}

// OpenAIConfig holds the completion and transcription endpoints.
type OpenAIConfig struct {
	APIKey       string `yaml:"apiKey" env:"OPENAI_API_KEY"`
	BaseURL      string `yaml:"baseUrl" env:"OPENAI_BASE_URL"`
	Model        string `yaml:"model" env:"OPENAI_MODEL"`
	WhisperModel string `yaml:"whisperModel" env:"OPENAI_WHISPER_MODEL"`
}

// AuthConfig holds operator token settings. OperatorHash is a bcrypt
// hash of the operator password.
type AuthConfig struct {
	Secret          string `yaml:"secret" env:"AUTH_SECRET"`
	OperatorID      string `yaml:"operatorId" env:"AUTH_OPERATOR_ID"`
	OperatorHash    string `yaml:"operatorHash" env:"AUTH_OPERATOR_HASH"`
	TokenTTLMinutes int    `yaml:"tokenTtlMinutes" env:"AUTH_TOKEN_TTL_MINUTES"`
}

// ParkingConfig holds facility-level settings.
type ParkingConfig struct {
	// ExitStation is recorded on sessions closed through the assistant;
	// the exit lane the assistant terminal sits at.
	ExitStation int `yaml:"exitStation" env:"PARKING_EXIT_STATION"`
}

// UploadsConfig holds voice upload storage settings.
type UploadsConfig struct {
	Dir string `yaml:"dir" env:"UPLOADS_DIR"`
}

// Config defines the parking assistant configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Auth     AuthConfig     `yaml:"auth"`
	Parking  ParkingConfig  `yaml:"parking"`
	Uploads  UploadsConfig  `yaml:"uploads"`
}

// Load reads configuration via the shared helper and validates required
// fields.
func Load() (*Config, error) {
	cfg := &Config{
		HTTP: HTTPConfig{Port: "8080"},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			TTLSeconds: 86400,
		},
		OpenAI: OpenAIConfig{
			Model:        "gpt-4o-mini",
			WhisperModel: "whisper-1",
		},
		Auth: AuthConfig{
			OperatorID:      "helpdesk",
			TokenTTLMinutes: 480,
		},
		Parking: ParkingConfig{ExitStation: 2},
		Uploads: UploadsConfig{Dir: "./uploads"},
	}

	if err := libconfig.Load(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		return nil, errors.New("config: redis addr required")
	}
	if strings.TrimSpace(cfg.OpenAI.APIKey) == "" {
		return nil, errors.New("config: openai api key required")
	}
	if strings.TrimSpace(cfg.Auth.Secret) == "" {
		return nil, errors.New("config: auth secret required")
	}
	if strings.TrimSpace(cfg.Auth.OperatorHash) == "" {
		return nil, errors.New("config: auth operator hash required")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// HistoryTTL returns the conversation history TTL as a duration.
func (c *Config) HistoryTTL() time.Duration {
	if c.Redis.TTLSeconds <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Redis.TTLSeconds) * time.Second
}

// TokenTTL returns the operator token lifetime.
func (c *Config) TokenTTL() time.Duration {
	if c.Auth.TokenTTLMinutes <= 0 {
		return 8 * time.Hour
	}
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}

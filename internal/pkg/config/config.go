// Package config loads service settings from the environment, an optional
// .env file and an optional YAML file with chatbot overrides.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"

	ChatModeOpenAI  = "openai"
	ChatModeKeyword = "keyword"

	// DevJWTSecret signs tokens in development when JWT_SECRET is unset.
	DevJWTSecret = "sales-assistant-dev-secret"
)

type Config struct {
	Port            string        `env:"PORT,             default=8000"`
	Env             string        `env:"ENV,              default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=15s"`

	Auth  AuthConfig
	Store StoreConfig
	Chat  ChatConfig
	Redis RedisConfig

	// UsingDevSecret is set by Validate when DevJWTSecret was applied.
	UsingDevSecret bool
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET"`
	Username  string        `env:"AUTH_USERNAME, default=admin"`
	Password  string        `env:"AUTH_PASSWORD, default=123456"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,     default=24h"`
}

type StoreConfig struct {
	DataFile   string `env:"DATA_FILE,   default=data/customers.json"`
	SeedSample bool   `env:"SEED_SAMPLE, default=true"`
}

type ChatConfig struct {
	Mode         string        `env:"CHAT_MODE,          default=openai"`
	APIKey       string        `env:"OPENAI_API_KEY"`
	BaseURL      string        `env:"OPENAI_BASE_URL"`
	Model        string        `env:"CHAT_MODEL,         default=gpt-3.5-turbo"`
	SystemPrompt string        `env:"CHAT_SYSTEM_PROMPT, default=You are a helpful assistant."`
	Timeout      time.Duration `env:"CHAT_TIMEOUT,       default=30s"`
	Workers      int           `env:"CHAT_WORKERS,       default=4"`
	QueueSize    int           `env:"CHAT_QUEUE_SIZE,    default=32"`
	ConfigFile   string        `env:"CHAT_CONFIG_FILE"`
	ErrorLog     string        `env:"CHAT_ERROR_LOG"`
}

type RedisConfig struct {
	// Addr enables the Redis token revocation set; empty keeps it in memory.
	Addr      string        `env:"REDIS_ADDR"`
	Password  string        `env:"REDIS_PASSWORD"`
	DB        int           `env:"REDIS_DB,         default=0"`
	Timeout   time.Duration `env:"REDIS_TIMEOUT,    default=5s"`
	KeyPrefix string        `env:"REDIS_KEY_PREFIX, default=revoked:"`
}

// chatFile is the YAML overlay read from CHAT_CONFIG_FILE. The API key is
// environment-only.
type chatFile struct {
	Mode         string `yaml:"mode"`
	Model        string `yaml:"model"`
	SystemPrompt string `yaml:"system_prompt"`
	BaseURL      string `yaml:"base_url"`
}

// Load reads .env (if present) into the process environment, then builds the
// configuration from it.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith builds the configuration from lookuper, applies the chat YAML
// overlay and validates the result.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if cfg.Chat.ConfigFile != "" {
		if err := cfg.Chat.applyFile(cfg.Chat.ConfigFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *ChatConfig) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read chat config: %w", err)
	}
	var f chatFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("config: parse chat config %s: %w", path, err)
	}
	override := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	override(&c.Mode, f.Mode)
	override(&c.Model, f.Model)
	override(&c.SystemPrompt, f.SystemPrompt)
	override(&c.BaseURL, f.BaseURL)
	return nil
}

// Validate checks invariants and fills the development JWT secret.
func (c *Config) Validate() error {
	var errs []error

	if c.Auth.JWTSecret == "" {
		if c.IsDevelopment() {
			c.Auth.JWTSecret = DevJWTSecret
			c.UsingDevSecret = true
		} else {
			errs = append(errs, errors.New("JWT_SECRET is required outside development"))
		}
	}
	if c.Auth.Username == "" {
		errs = append(errs, errors.New("AUTH_USERNAME must not be empty"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}
	if c.Store.DataFile == "" {
		errs = append(errs, errors.New("DATA_FILE must not be empty"))
	}

	c.Chat.Mode = strings.ToLower(strings.TrimSpace(c.Chat.Mode))
	switch c.Chat.Mode {
	case ChatModeOpenAI, ChatModeKeyword:
	default:
		errs = append(errs, fmt.Errorf("CHAT_MODE must be %q or %q, got %q", ChatModeOpenAI, ChatModeKeyword, c.Chat.Mode))
	}
	if c.Chat.Timeout <= 0 {
		errs = append(errs, errors.New("CHAT_TIMEOUT must be positive"))
	}
	if c.Chat.Workers <= 0 || c.Chat.QueueSize <= 0 {
		errs = append(errs, errors.New("CHAT_WORKERS and CHAT_QUEUE_SIZE must be positive"))
	}

	if c.Redis.Addr != "" {
		if c.Redis.Timeout <= 0 {
			errs = append(errs, errors.New("REDIS_TIMEOUT must be positive"))
		}
		if c.Redis.KeyPrefix == "" {
			errs = append(errs, errors.New("REDIS_KEY_PREFIX must not be empty"))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, EnvDevelopment)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// Config holds runtime configuration values.
type Config struct {
	AppEnv          string        `env:"APP_ENV" envDefault:"production"`
	Port            string        `env:"APP_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"180s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	DefaultProvider string        `env:"DEFAULT_PROVIDER" envDefault:"openai"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	LookupCacheTTL  time.Duration `env:"LOOKUP_CACHE_TTL" envDefault:"15m"`

	Gemini  GeminiConfig
	OpenAI  OpenAIConfig
	Decor8  Decor8Config
	Catalog CatalogConfig
}

// GeminiConfig describes the Gemini image model.
type GeminiConfig struct {
	APIKeyEnv string        `env:"GEMINI_API_KEY_ENV" envDefault:"GEMINI_API_KEY"`
	Model     string        `env:"GEMINI_IMAGE_MODEL" envDefault:"gemini-3-pro-image-preview"`
	BaseURL   string        `env:"GEMINI_BASE_URL"`
	Timeout   time.Duration `env:"GEMINI_TIMEOUT" envDefault:"120s"`
}

// OpenAIConfig describes the OpenAI image edit endpoint.
type OpenAIConfig struct {
	APIKeyEnv string        `env:"OPENAI_API_KEY_ENV" envDefault:"OPENAI_API_KEY"`
	Model     string        `env:"OPENAI_IMAGE_MODEL" envDefault:"gpt-image-1.5"`
	BaseURL   string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	Timeout   time.Duration `env:"OPENAI_TIMEOUT" envDefault:"180s"`
}

// Decor8Config describes the Decor8 room staging API.
type Decor8Config struct {
	APIKeyEnv string        `env:"DECOR8_API_KEY_ENV" envDefault:"DECOR8_API_KEY"`
	BaseURL   string        `env:"DECOR8_BASE_URL" envDefault:"https://api.decor8.ai"`
	Timeout   time.Duration `env:"DECOR8_TIMEOUT" envDefault:"120s"`
}

// CatalogConfig points at the furniture dataset.
type CatalogConfig struct {
	Source         string `env:"CATALOG_SOURCE" envDefault:"embedded"`
	S3Region       string `env:"CATALOG_S3_REGION"`
	S3Endpoint     string `env:"CATALOG_S3_ENDPOINT"`
	S3AccessKey    string `env:"CATALOG_S3_ACCESS_KEY"`
	S3SecretKey    string `env:"CATALOG_S3_SECRET_KEY"`
	ForcePathStyle bool   `env:"CATALOG_S3_FORCE_PATH_STYLE" envDefault:"false"`
}

// Load reads an optional .env file and then parses the process environment.
func Load(dotenv ...string) (Config, error) {
	if err := godotenv.Load(dotenv...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load dotenv: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Port = strings.TrimSpace(cfg.Port)
	if cfg.Port == "" {
		return Config{}, errors.New("APP_PORT cannot be empty")
	}
	cfg.DefaultProvider = strings.ToLower(strings.TrimSpace(cfg.DefaultProvider))

	return cfg, nil
}

// Development reports whether verbose, human-readable logging is wanted.
func (c Config) Development() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

// Secret resolves a credential when it is needed. Credentials are never cached
// in Config so rotating the environment takes effect on the next request.
type Secret func() string

// EnvSecret returns a Secret reading the named environment variable.
func EnvSecret(name string) Secret {
	return func() string {
		return strings.TrimSpace(os.Getenv(name))
	}
}

// StaticSecret returns a Secret with a fixed value.
func StaticSecret(value string) Secret {
	return func() string {
		return value
	}
}

// Value returns the current credential, tolerating a nil Secret.
func (s Secret) Value() string {
	if s == nil {
		return ""
	}
	return s()
}

// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// General
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	ListenAddr  string `envconfig:"LISTEN_ADDR" default:":8080"`

	// API auth ("none" or "api-key")
	AuthMode    string `envconfig:"AUTH_MODE" default:"none"`
	APIKey      string `envconfig:"API_KEY"`
	CORSOrigins string `envconfig:"CORS_ORIGINS"`

	// Storage ("sqlite" or "memory")
	StoreBackend string `envconfig:"STORE_BACKEND" default:"sqlite"`
	DBPath       string `envconfig:"DB_PATH" default:"scenescribe.db"`

	// Text generation (OpenAI-compatible chat completions)
	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	OpenAIModel   string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`

	// Video generation (Runway text-to-video)
	VideoAPIKey   string `envconfig:"SCENESCRIBE_VIDEO_API_KEY"`
	VideoAPIURL   string `envconfig:"SCENESCRIBE_VIDEO_API_URL" default:"https://api.dev.runwayml.com"`
	RunwayVersion string `envconfig:"SCENESCRIBE_RUNWAY_VERSION" default:"2024-11-06"`
	RunwayModel   string `envconfig:"SCENESCRIBE_RUNWAY_MODEL" default:"veo3.1"`

	// Mock mode replaces both providers with deterministic fakes.
	MockProviders bool `envconfig:"SCENESCRIBE_MOCK" default:"false"`

	// Render job polling
	PollInterval    time.Duration `envconfig:"POLL_INTERVAL" default:"2500ms"`
	PollMaxAttempts int           `envconfig:"POLL_MAX_ATTEMPTS" default:"12"`

	// Ingest limits
	IngestMaxChars  int `envconfig:"INGEST_MAX_CHARS" default:"20000"`
	MinContentChars int `envconfig:"MIN_CONTENT_CHARS" default:"20"`

	// Outbound HTTP
	ProviderTimeout time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"120s"`

	// Optional YAML file overriding the baseline generation config.
	GenerationDefaultsPath string `envconfig:"GENERATION_DEFAULTS_PATH"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.AuthMode {
	case "none":
	case "api-key":
		if c.APIKey == "" {
			return fmt.Errorf("AUTH_MODE=api-key requires API_KEY")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode)
	}

	switch c.StoreBackend {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.PollMaxAttempts <= 0 {
		return fmt.Errorf("POLL_MAX_ATTEMPTS must be positive")
	}
	return nil
}

// TextGenEnabled reports whether a real text-generation provider is configured.
func (c *Config) TextGenEnabled() bool {
	return !c.MockProviders && c.OpenAIAPIKey != ""
}

// VideoGenEnabled reports whether a real video-generation provider is configured.
func (c *Config) VideoGenEnabled() bool {
	return !c.MockProviders && c.VideoAPIKey != ""
}

// Package config loads specforge settings. Configuration can come from
// a YAML file (specforge.yaml) or environment variables; environment
// variables always override YAML values. The API key must only come
// from the environment.
package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// ConfigFile is the optional YAML settings file looked up in the
// working directory.
const ConfigFile = "specforge.yaml"

// Config holds all configuration for specforge.
type Config struct {
	// UseModel enables model-assisted extraction and generation. With
	// false every stage runs on heuristics only.
	UseModel bool `yaml:"use_model" env:"SPECFORGE_USE_MODEL" env-default:"false"`

	// Provider selects the model backend: "openai" or "anthropic".
	Provider string `yaml:"provider" env:"SPECFORGE_PROVIDER" env-default:"openai"`

	// Model is the model name used for every model-assisted stage.
	Model string `yaml:"model" env:"SPECFORGE_MODEL" env-default:"gpt-4o-mini"`

	// SpecModel overrides Model for spec synthesis only. Empty means
	// use Model.
	SpecModel string `yaml:"spec_model" env:"SPECFORGE_SPEC_MODEL" env-default:""`

	// Endpoint overrides the provider base URL. Optional; useful for
	// local OpenAI-compatible servers.
	Endpoint string `yaml:"endpoint" env:"SPECFORGE_ENDPOINT" env-default:""`

	// APIKey authenticates against the provider. Secret - not in YAML.
	APIKey string `yaml:"-" env:"SPECFORGE_API_KEY"`

	// Temperature for model calls.
	Temperature float64 `yaml:"temperature" env:"SPECFORGE_TEMPERATURE" env-default:"0"`

	// MaxRetries bounds validate-and-reprompt loops.
	MaxRetries int `yaml:"max_retries" env:"SPECFORGE_MAX_RETRIES" env-default:"3"`

	// TimeoutSeconds bounds one model call.
	TimeoutSeconds int `yaml:"timeout_seconds" env:"SPECFORGE_TIMEOUT_SECONDS" env-default:"60"`

	// CacheSpecs reuses <prd>_cached_spec.json files between runs.
	CacheSpecs bool `yaml:"cache_specs" env:"SPECFORGE_CACHE_SPECS" env-default:"true"`

	// Debug enables debug-level logging.
	Debug bool `yaml:"debug" env:"SPECFORGE_DEBUG" env-default:"false"`

	// Version is set at load time, not from config.
	Version string `yaml:"-"`
}

// Load reads configuration from specforge.yaml (when present) with
// environment variable overrides. A .env file in the working directory
// is loaded into the environment first, never overriding variables that
// are already set.
func Load(version string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{Version: version}
	if _, err := os.Stat(ConfigFile); err == nil {
		if err := cleanenv.ReadConfig(ConfigFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Provider != "openai" && c.Provider != "anthropic" {
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1")
	}
	if c.UseModel && c.Provider == "anthropic" && c.APIKey == "" {
		return fmt.Errorf("SPECFORGE_API_KEY is required for the anthropic provider")
	}
	return nil
}

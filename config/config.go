// Package config loads the search settings from YAML with environment
// overrides, e.g. REASONING_SEARCH_ITERATIONS=64.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reasoning/llm"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "REASONING"

type Config struct {
	Search   SearchConfig  `mapstructure:"search" yaml:"search"`
	Policy   LLMConfig     `mapstructure:"policy" yaml:"policy"`
	Verifier LLMConfig     `mapstructure:"verifier" yaml:"verifier"`
	Logging  LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Output   OutputConfig  `mapstructure:"output" yaml:"output"`
}

// SearchConfig holds the tree search budget. Zero max_depth, max_children and
// exploration fall back to the search defaults.
type SearchConfig struct {
	Iterations      int     `mapstructure:"iterations" yaml:"iterations"`
	MaxDepth        int     `mapstructure:"max_depth" yaml:"max_depth"`
	MaxChildren     int     `mapstructure:"max_children" yaml:"max_children"`
	Exploration     float64 `mapstructure:"exploration" yaml:"exploration"`
	ContinueOnError bool    `mapstructure:"continue_on_error" yaml:"continue_on_error"`
}

// LLMConfig configures one chat model endpoint.
type LLMConfig struct {
	// Provider is one of openai, groq, openrouter or ollama.
	Provider string `mapstructure:"provider" yaml:"provider"`

	// Endpoint overrides the provider's base URL.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	APIKey string `mapstructure:"api_key" yaml:"api_key"`

	Model string `mapstructure:"model" yaml:"model"`

	// Temperature is passed as is, 0 asks for greedy sampling.
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`

	MaxTokens int `mapstructure:"max_tokens" yaml:"max_tokens"`

	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level" yaml:"level"`

	// Pretty writes human readable console output instead of JSON.
	Pretty bool `mapstructure:"pretty" yaml:"pretty"`
}

type OutputConfig struct {
	// Dir receives one CSV directory per run, disabled when empty.
	Dir string `mapstructure:"dir" yaml:"dir"`

	// MetricsAddr serves Prometheus metrics during the search, e.g. ":9090".
	MetricsAddr string `mapstructure:"metrics_addr" yaml:"metrics_addr"`
}

func Default() *Config {
	return &Config{
		Search: SearchConfig{
			Iterations:  32,
			MaxChildren: 3,
		},
		Policy: LLMConfig{
			Provider:    "ollama",
			Temperature: 0.7,
			MaxTokens:   512,
			Timeout:     5 * time.Minute,
		},
		Verifier: LLMConfig{
			Provider:  "ollama",
			MaxTokens: 128,
			Timeout:   5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: true,
		},
		Output: OutputConfig{
			Dir: "runs",
		},
	}
}

// Load reads the configuration at path on top of the defaults. An empty path
// loads the defaults alone. Environment variables override both.
func Load(path string) (*Config, error) {
	defaults, err := yaml.Marshal(Default())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal defaults: %w", err)
	}

	// Env overrides only apply to keys viper knows, so every key is seeded
	// from the defaults.
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, fmt.Errorf("failed to read defaults: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Example: REASONING_POLICY_API_KEY
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Write stores cfg as YAML at path, creating the parent directory.
func Write(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Search.Iterations <= 0 {
		return fmt.Errorf("search.iterations must be positive, got %d", c.Search.Iterations)
	}
	if c.Search.MaxDepth < 0 {
		return fmt.Errorf("search.max_depth cannot be negative")
	}
	if c.Search.MaxChildren < 0 {
		return fmt.Errorf("search.max_children cannot be negative")
	}
	if c.Search.Exploration < 0 {
		return fmt.Errorf("search.exploration cannot be negative")
	}

	if err := c.Policy.validate("policy"); err != nil {
		return err
	}
	if err := c.Verifier.validate("verifier"); err != nil {
		return err
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level '%s', must be one of: debug, info, warn, error", c.Logging.Level)
	}
	return nil
}

func (c LLMConfig) validate(section string) error {
	validProviders := map[string]bool{"openai": true, "groq": true, "openrouter": true, "ollama": true}
	if !validProviders[c.Provider] {
		return fmt.Errorf("invalid %s.provider '%s', must be one of: openai, groq, openrouter, ollama", section, c.Provider)
	}
	if c.Temperature < 0 {
		return fmt.Errorf("%s.temperature cannot be negative", section)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("%s.max_tokens cannot be negative", section)
	}
	return nil
}

// ProviderConfig converts the section into a client configuration. Empty
// fields keep the provider defaults.
func (c LLMConfig) ProviderConfig() *llm.ProviderConfig {
	cfg := llm.DefaultConfig(c.Provider)
	if c.Endpoint != "" {
		cfg.Endpoint = c.Endpoint
	}
	if c.Model != "" {
		cfg.Model = c.Model
	}
	if c.MaxTokens > 0 {
		cfg.MaxTokens = c.MaxTokens
	}
	if c.Timeout > 0 {
		cfg.Timeout = c.Timeout
	}
	cfg.Temperature = c.Temperature
	cfg.APIKey = c.APIKey
	return cfg
}

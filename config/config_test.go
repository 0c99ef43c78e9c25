package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	require.Equal(t, 32, cfg.Search.Iterations)
	require.Equal(t, 3, cfg.Search.MaxChildren)
	require.Zero(t, cfg.Search.MaxDepth, "Max depth should be derived from the iterations")
	require.Equal(t, "ollama", cfg.Policy.Provider)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad(t *testing.T) {
	t.Run("empty path loads the defaults", func(t *testing.T) {
		cfg, err := Load("")

		require.NoError(t, err)
		require.Equal(t, Default(), cfg)
	})

	t.Run("file values override the defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "search:\n  iterations: 64\n  exploration: 0.5\npolicy:\n  provider: openai\n  model: gpt-4o\n  timeout: 30s\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		cfg, err := Load(path)

		require.NoError(t, err)
		require.Equal(t, 64, cfg.Search.Iterations)
		require.Equal(t, 0.5, cfg.Search.Exploration)
		require.Equal(t, 3, cfg.Search.MaxChildren, "Unset keys should keep their default")
		require.Equal(t, "openai", cfg.Policy.Provider)
		require.Equal(t, "gpt-4o", cfg.Policy.Model)
		require.Equal(t, 30*time.Second, cfg.Policy.Timeout)
		require.Equal(t, "ollama", cfg.Verifier.Provider)
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("search:\n  iterations: 64\n"), 0644))
		t.Setenv("REASONING_SEARCH_ITERATIONS", "128")
		t.Setenv("REASONING_VERIFIER_MODEL", "judge")

		cfg, err := Load(path)

		require.NoError(t, err)
		require.Equal(t, 128, cfg.Search.Iterations)
		require.Equal(t, "judge", cfg.Verifier.Model)
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

		require.Error(t, err)
	})
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Search.Iterations = 16
	cfg.Verifier.Timeout = 90 * time.Second

	require.NoError(t, Write(path, cfg))
	loaded, err := Load(path)

	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(cfg *Config)
	}{
		{"zero iterations", func(cfg *Config) { cfg.Search.Iterations = 0 }},
		{"negative max depth", func(cfg *Config) { cfg.Search.MaxDepth = -1 }},
		{"negative max children", func(cfg *Config) { cfg.Search.MaxChildren = -2 }},
		{"negative exploration", func(cfg *Config) { cfg.Search.Exploration = -0.1 }},
		{"unknown policy provider", func(cfg *Config) { cfg.Policy.Provider = "mystery" }},
		{"negative verifier temperature", func(cfg *Config) { cfg.Verifier.Temperature = -1 }},
		{"unknown log level", func(cfg *Config) { cfg.Logging.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			require.Error(t, cfg.Validate())
		})
	}
}

func TestProviderConfig(t *testing.T) {
	cfg := LLMConfig{Provider: "groq", Model: "m", APIKey: "k", Timeout: time.Second}

	pc := cfg.ProviderConfig()

	require.Equal(t, "groq", pc.Name)
	require.Equal(t, "https://api.groq.com/openai/v1", pc.Endpoint)
	require.Equal(t, "m", pc.Model)
	require.Equal(t, "k", pc.APIKey)
	require.Equal(t, time.Second, pc.Timeout)
	require.Equal(t, 1024, pc.MaxTokens, "Unset fields should keep the provider defaults")
	require.Equal(t, 0.0, pc.Temperature, "Zero temperature should not fall back to the provider default")

	judge := Default().Verifier.ProviderConfig()
	require.Equal(t, 0.0, judge.Temperature, "Verifier should sample greedily by default")
}

// Package llm provides an OpenAI-compatible chat completions client used by the
// reasoning policy and the verifier.
package llm

import (
	"context"
	"io"
	"net/http"
	"time"
)

// MaxErrorBodySize limits how much of an error response body is read.
const MaxErrorBodySize = 1 * 1024 * 1024

func readLimitedBody(r io.Reader, maxBytes int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, maxBytes))
}

// Provider sends chat requests to a language model.
type Provider interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Name returns the provider identifier.
	Name() string
}

// ChatRequest represents a chat completion request.
type ChatRequest struct {
	// Model to use, the provider default when empty.
	Model string `json:"model"`

	// SystemPrompt is sent as the first message when set.
	SystemPrompt string `json:"system_prompt,omitempty"`

	Messages []Message `json:"messages"`

	// MaxTokens limits response length.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature overrides the provider temperature, nil keeps it.
	Temperature *float64 `json:"temperature,omitempty"`
}

// Message represents a conversation message.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// ChatResponse contains the model's reply.
type ChatResponse struct {
	Content          string        `json:"content"`
	Model            string        `json:"model"`
	TokensUsed       int           `json:"tokens_used,omitempty"`
	PromptTokens     int           `json:"prompt_tokens,omitempty"`
	CompletionTokens int           `json:"completion_tokens,omitempty"`
	Duration         time.Duration `json:"duration"`
	FinishReason     string        `json:"finish_reason,omitempty"`
}

// ProviderConfig contains configuration for an LLM provider.
type ProviderConfig struct {
	// Name identifies the provider (openai, groq, ollama, openrouter).
	Name string

	// Endpoint is the API base URL, without the /chat/completions suffix.
	Endpoint string

	APIKey string

	// Model is the default model to use.
	Model string

	MaxTokens int

	Temperature float64

	// Timeout for one API call.
	Timeout time.Duration
}

// DefaultConfig returns defaults for the OpenAI-compatible providers.
func DefaultConfig(name string) *ProviderConfig {
	switch name {
	case "openai":
		return &ProviderConfig{
			Name:        "openai",
			Endpoint:    "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			MaxTokens:   1024,
			Temperature: 0.7,
			Timeout:     2 * time.Minute,
		}
	case "groq":
		return &ProviderConfig{
			Name:        "groq",
			Endpoint:    "https://api.groq.com/openai/v1",
			Model:       "llama-3.3-70b-versatile",
			MaxTokens:   1024,
			Temperature: 0.7,
			Timeout:     30 * time.Second,
		}
	case "openrouter":
		return &ProviderConfig{
			Name:        "openrouter",
			Endpoint:    "https://openrouter.ai/api/v1",
			Model:       "openai/gpt-4o-mini",
			MaxTokens:   1024,
			Temperature: 0.7,
			Timeout:     2 * time.Minute,
		}
	case "ollama":
		// Ollama serves the OpenAI API under /v1 and needs no key
		return &ProviderConfig{
			Name:        "ollama",
			Endpoint:    "http://127.0.0.1:11434/v1",
			Model:       "llama3",
			MaxTokens:   1024,
			Temperature: 0.7,
			Timeout:     5 * time.Minute,
		}
	default:
		return &ProviderConfig{
			Name:        name,
			MaxTokens:   1024,
			Temperature: 0.7,
			Timeout:     2 * time.Minute,
		}
	}
}

// baseProvider holds the shared HTTP plumbing.
type baseProvider struct {
	config *ProviderConfig
	client *http.Client
}

func newBaseProvider(cfg *ProviderConfig, providerName string) baseProvider {
	if cfg == nil {
		cfg = DefaultConfig(providerName)
	}

	merged := *cfg
	defaults := DefaultConfig(providerName)
	if merged.Endpoint == "" {
		merged.Endpoint = defaults.Endpoint
	}
	if merged.Model == "" {
		merged.Model = defaults.Model
	}
	if merged.MaxTokens == 0 {
		merged.MaxTokens = defaults.MaxTokens
	}
	if merged.Timeout == 0 {
		merged.Timeout = defaults.Timeout
	}
	merged.Name = providerName

	return baseProvider{
		config: &merged,
		client: &http.Client{Timeout: merged.Timeout},
	}
}

func (b *baseProvider) Name() string {
	return b.config.Name
}

// Model returns the default model requests fall back to.
func (b *baseProvider) Model() string {
	return b.config.Model
}

// Package llm holds the AI backend clients. Every backend speaks the same
// Client interface: one prompt in, raw completion text out, exactly one
// attempt per call. Timeout and cancellation belong to the caller's context.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/DovudAsadov/ai-hr-platform/internal/config"
)

// ErrBackend marks any failure of the outbound AI backend call
// (auth, quota, network, malformed response).
var ErrBackend = errors.New("ai backend request failed")

// Request is a single completion request.
type Request struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// Client is an AI backend.
type Client interface {
	// Complete sends the request and returns the raw completion text.
	Complete(ctx context.Context, req Request) (string, error)
	// Provider returns the backend name ("openai", "anthropic", "groq").
	Provider() string
}

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGroq      = "groq"
)

// credentialKeys lists each provider's credential in selection order.
var credentialKeys = []struct {
	provider string
	key      config.Key
}{
	{ProviderOpenAI, config.KeyOpenAIAPIKey},
	{ProviderAnthropic, config.KeyAnthropicAPIKey},
	{ProviderGroq, config.KeyGroqAPIKey},
}

// NewFromConfig builds the backend client selected by the ai_provider key.
// When ai_provider is unset, the first provider with a present credential
// wins, in the order openai, anthropic, groq. A ConfigurationError is
// returned when no usable credential is configured.
func NewFromConfig(store *config.Store) (Client, error) {
	provider := store.Get(config.KeyAIProvider, "")
	if provider == "" {
		for _, c := range credentialKeys {
			if store.Validate(c.key) {
				provider = c.provider
				break
			}
		}
	}
	if provider == "" {
		return nil, &config.ConfigurationError{Missing: []config.Key{
			config.KeyOpenAIAPIKey,
			config.KeyAnthropicAPIKey,
			config.KeyGroqAPIKey,
		}}
	}

	model := store.Get(config.KeyAIModel, "")

	switch provider {
	case ProviderOpenAI:
		if err := store.Require(config.KeyOpenAIAPIKey); err != nil {
			return nil, err
		}
		return NewOpenAIClient(OpenAIConfig{
			APIKey: store.Get(config.KeyOpenAIAPIKey, ""),
			Model:  model,
		}), nil
	case ProviderAnthropic:
		if err := store.Require(config.KeyAnthropicAPIKey); err != nil {
			return nil, err
		}
		return NewAnthropicClient(AnthropicConfig{
			APIKey: store.Get(config.KeyAnthropicAPIKey, ""),
			Model:  model,
		}), nil
	case ProviderGroq:
		if err := store.Require(config.KeyGroqAPIKey); err != nil {
			return nil, err
		}
		return NewGroqClient(GroqConfig{
			APIKey: store.Get(config.KeyGroqAPIKey, ""),
			Model:  model,
		}), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", provider)
	}
}

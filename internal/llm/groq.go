package llm

import (
	"context"
	"net/http"
)

const (
	groqEndpoint     = "https://api.groq.com/openai/v1/chat/completions"
	groqDefaultModel = "llama-3.3-70b-versatile"
)

// GroqConfig configures the Groq client.
type GroqConfig struct {
	APIKey     string
	Model      string
	Endpoint   string
	HTTPClient *http.Client
}

// GroqClient talks to the Groq API, which speaks the OpenAI
// chat completions dialect.
type GroqClient struct {
	openai *OpenAIClient
}

// NewGroqClient creates a Groq backend client.
func NewGroqClient(cfg GroqConfig) *GroqClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = groqEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = groqDefaultModel
	}
	return &GroqClient{
		openai: NewOpenAIClient(OpenAIConfig{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			Endpoint:   cfg.Endpoint,
			HTTPClient: cfg.HTTPClient,
		}),
	}
}

func (c *GroqClient) Provider() string { return ProviderGroq }

// Complete sends one chat completion request. No retries.
func (c *GroqClient) Complete(ctx context.Context, req Request) (string, error) {
	return c.openai.Complete(ctx, req)
}

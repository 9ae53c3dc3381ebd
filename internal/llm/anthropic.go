package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicConfig configures the Anthropic client.
type AnthropicConfig struct {
	APIKey string
	Model  string
}

// AnthropicClient talks to the Anthropic Messages API.
type AnthropicClient struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAnthropicClient creates an Anthropic backend client.
func NewAnthropicClient(cfg AnthropicConfig) *AnthropicClient {
	model := anthropic.ModelClaude3_7SonnetLatest
	if cfg.Model != "" {
		model = anthropic.Model(cfg.Model)
	}
	return &AnthropicClient{
		client: anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  model,
	}
}

func (c *AnthropicClient) Provider() string { return ProviderAnthropic }

// Complete sends one Messages API request. No retries.
func (c *AnthropicClient) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(req.Temperature),
		System: []anthropic.TextBlockParam{
			{Text: req.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackend, err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: response contained no text", ErrBackend)
	}
	return sb.String(), nil
}

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	openAIEndpoint     = "https://api.openai.com/v1/chat/completions"
	openAIDefaultModel = "gpt-4"
)

// OpenAIConfig configures the OpenAI client.
type OpenAIConfig struct {
	APIKey     string
	Model      string
	Endpoint   string
	HTTPClient *http.Client
}

// OpenAIClient talks to the OpenAI chat completions API.
type OpenAIClient struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// NewOpenAIClient creates an OpenAI backend client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = openAIEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = openAIDefaultModel
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 120 * time.Second}
	}
	return &OpenAIClient{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		endpoint:   cfg.Endpoint,
		httpClient: cfg.HTTPClient,
	}
}

func (c *OpenAIClient) Provider() string { return ProviderOpenAI }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends one chat completion request. No retries.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("%w: can't marshal request: %v", ErrBackend, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: can't create request: %v", ErrBackend, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// The error payload is more useful than the bare status code.
		var apiResp chatResponse
		raw, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(raw, &apiResp); err == nil && apiResp.Error != nil {
			return "", fmt.Errorf("%w: %s (status %d)", ErrBackend, apiResp.Error.Message, resp.StatusCode)
		}
		return "", fmt.Errorf("%w: unexpected status %d: %s", ErrBackend, resp.StatusCode, string(raw))
	}

	var apiResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("%w: can't decode response: %v", ErrBackend, err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrBackend, apiResp.Error.Message)
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("%w: response contained no choices", ErrBackend)
	}

	return apiResp.Choices[0].Message.Content, nil
}

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
	defaultBaseURL   = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
)

// AnthropicClient talks to the Anthropic messages API over REST.
type AnthropicClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ Client = (*AnthropicClient)(nil)

func NewAnthropicClient(apiKey string) *AnthropicClient {
	return &AnthropicClient{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// NewAnthropicClientWithBaseURL exists for tests that point the client at a
// local server.
func NewAnthropicClientWithBaseURL(apiKey, baseURL string) *AnthropicClient {
	c := NewAnthropicClient(apiKey)
	c.baseURL = baseURL
	return c
}

func (c *AnthropicClient) CreateMessage(ctx context.Context, req MessagesRequest) (MessagesResponse, error) {
	if c.apiKey == "" {
		return MessagesResponse{}, fmt.Errorf("anthropic api key missing")
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return MessagesResponse{}, fmt.Errorf("marshal messages request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return MessagesResponse{}, fmt.Errorf("create messages request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return MessagesResponse{}, fmt.Errorf("anthropic messages request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return MessagesResponse{}, fmt.Errorf("anthropic messages error %d: %s", resp.StatusCode, string(body))
	}
	var parsed MessagesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return MessagesResponse{}, fmt.Errorf("decode messages response: %w", err)
	}
	return parsed, nil
}

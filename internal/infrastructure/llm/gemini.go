package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"ContentDigest/internal/config"
	"ContentDigest/internal/ports"
)

// GeminiClient implements ports.Summarizer backed by the Gemini API.
type GeminiClient struct {
	apiKey string
	model  string

	once    sync.Once
	client  *genai.Client
	initErr error
}

var _ ports.Summarizer = (*GeminiClient)(nil)

// NewGeminiClient builds a client from configuration. The underlying SDK
// client is created on first use because its constructor needs a context.
func NewGeminiClient(cfg config.GeminiConfig) *GeminiClient {
	return &GeminiClient{apiKey: cfg.APIKey, model: cfg.Model}
}

// Provider names the backend in logs and stored records.
func (c *GeminiClient) Provider() string { return "gemini" }

// Summarize sends the prompt and returns the concatenated reply text.
func (c *GeminiClient) Summarize(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.apiKey == "" || c.model == "" {
		return "", fmt.Errorf("gemini client misconfigured")
	}

	c.once.Do(func() {
		c.client, c.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  c.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	if c.initErr != nil {
		return "", fmt.Errorf("init gemini client: %w", c.initErr)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini returned no text")
	}
	return text, nil
}

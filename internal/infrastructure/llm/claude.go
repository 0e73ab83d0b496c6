package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"ContentDigest/internal/config"
	"ContentDigest/internal/ports"
)

const defaultClaudeMaxTokens = 2048

// ClaudeClient implements ports.Summarizer backed by the Anthropic API.
type ClaudeClient struct {
	client       anthropic.Client
	model        string
	maxTokens    int64
	systemPrompt string
	configured   bool
}

var _ ports.Summarizer = (*ClaudeClient)(nil)

// NewClaudeClient builds a client from configuration.
func NewClaudeClient(cfg config.ClaudeConfig) *ClaudeClient {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultClaudeMaxTokens
	}
	return &ClaudeClient{
		client:       anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:        cfg.Model,
		maxTokens:    maxTokens,
		systemPrompt: cfg.SystemPrompt,
		configured:   cfg.APIKey != "" && cfg.Model != "",
	}
}

// Provider names the backend in logs and stored records.
func (c *ClaudeClient) Provider() string { return "claude" }

// Summarize sends the prompt and concatenates the text blocks of the reply.
func (c *ClaudeClient) Summarize(ctx context.Context, prompt string) (string, error) {
	if c == nil || !c.configured {
		return "", fmt.Errorf("claude client misconfigured")
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if c.systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: c.systemPrompt}}
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude message: %w", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("claude returned no text")
	}
	return text, nil
}

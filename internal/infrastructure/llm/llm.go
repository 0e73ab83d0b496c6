package llm

import (
	"fmt"

	"ContentDigest/internal/config"
	"ContentDigest/internal/ports"
)

// New selects the summarizer named by cfg.Provider.
func New(cfg config.LLMConfig) (ports.Summarizer, error) {
	switch cfg.Provider {
	case "chatgpt", "openai":
		return NewChatGPTClient(cfg.ChatGPT), nil
	case "claude", "anthropic":
		return NewClaudeClient(cfg.Claude), nil
	case "gemini", "google":
		return NewGeminiClient(cfg.Gemini), nil
	case "":
		return nil, fmt.Errorf("llm provider is not set")
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

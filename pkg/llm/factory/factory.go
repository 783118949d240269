package factory

import (
	"fmt"
	"strings"

	"storyspark-be/pkg/llm"
	"storyspark-be/pkg/llm/gemini"
	"storyspark-be/pkg/llm/ollama"
)

// Settings selects and configures a model backend.
type Settings struct {
	Provider string // "gemini" (default) | "ollama"
	Model    string
	BaseURL  string
	APIKey   string
}

func NewLLMProvider(s Settings) (llm.LLMProvider, error) {
	switch strings.ToLower(s.Provider) {
	case "", "gemini":
		if s.APIKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return gemini.NewGeminiProvider(s.BaseURL, s.APIKey, s.Model), nil
	case "ollama":
		return ollama.NewOllamaProvider(s.BaseURL, s.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", s.Provider)
	}
}

package factory

import (
	"fmt"

	"idea-contract-be/pkg/llm"
	"idea-contract-be/pkg/llm/ollama"
	"idea-contract-be/pkg/llm/openai"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "openai", "azure", "deepseek", "huggingface":
		if apiKey == "" {
			return nil, fmt.Errorf("provider %s requires an api key", providerType)
		}
		return openai.NewProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}

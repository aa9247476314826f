package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"idea-contract-be/pkg/llm"
)

// OllamaProvider calls the /api/chat endpoint of a local or remote Ollama server.
type OllamaProvider struct {
	BaseURL   string
	ModelName string
	Client    *http.Client
}

var _ llm.LLMProvider = &OllamaProvider{}

func NewOllamaProvider(baseURL, modelName string) *OllamaProvider {
	return &OllamaProvider{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		ModelName: modelName,
		Client:    &http.Client{Timeout: 180 * time.Second}, // drafts on CPU-only hosts are slow
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []llm.Message `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
	Options  modelOptions  `json:"options"`
}

type modelOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatResponse struct {
	Message llm.Message `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error,omitempty"`
}

func (o *OllamaProvider) newRequest(history []llm.Message, options []llm.Option) chatRequest {
	opts := &llm.Options{Model: o.ModelName, Temperature: 0.3}
	for _, opt := range options {
		opt(opts)
	}

	messages := make([]llm.Message, len(history))
	for i, m := range history {
		if m.Role == "model" {
			m.Role = "assistant"
		}
		messages[i] = m
	}

	req := chatRequest{
		Model:    opts.Model,
		Messages: messages,
		Options:  modelOptions{Temperature: opts.Temperature, NumPredict: opts.MaxTokens},
	}
	if opts.JSONMode {
		req.Format = "json"
	}
	return req
}

func (o *OllamaProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	payload, err := json.Marshal(o.newRequest(history, opts))
	if err != nil {
		return "", fmt.Errorf("marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read ollama response: %w", err)
	}

	var out chatResponse
	if jsonErr := json.Unmarshal(body, &out); jsonErr != nil && resp.StatusCode == http.StatusOK {
		return "", fmt.Errorf("decode ollama response: %w", jsonErr)
	}
	if resp.StatusCode != http.StatusOK {
		msg := out.Error
		if msg == "" {
			msg = string(body)
		}
		return "", fmt.Errorf("ollama status %d: %s", resp.StatusCode, msg)
	}
	return out.Message.Content, nil
}

func (o *OllamaProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return o.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

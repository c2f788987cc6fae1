package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/factchecker/factlens/internal/config"
)

// OllamaProvider implements Provider using local Ollama server.
type OllamaProvider struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOllamaProvider creates a new Ollama provider. OllamaURL wins over BaseURL.
func NewOllamaProvider(cfg config.LLMConfig, httpClient *http.Client) (*OllamaProvider, error) {
	baseURL := cfg.OllamaURL
	if baseURL == "" {
		baseURL = cfg.BaseURL
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	model := cfg.Model
	if model == "" {
		model = "llama3"
	}

	return &OllamaProvider{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		httpClient: httpClient,
	}, nil
}

// Name returns the provider name.
func (p *OllamaProvider) Name() string {
	return "ollama"
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// Generate runs a non-streaming completion.
func (p *OllamaProvider) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := ollamaGenerateRequest{
		Model:  p.model,
		Prompt: prompt,
		Stream: false,
	}

	var result ollamaGenerateResponse
	if err := postJSON(ctx, p.httpClient, p.baseURL+"/api/generate", nil, reqBody, &result); err != nil {
		return "", generationError(p.Name(), err)
	}

	if result.Error != "" {
		return "", generationError(p.Name(), errors.New(result.Error))
	}

	return answerOrDefault(result.Response), nil
}

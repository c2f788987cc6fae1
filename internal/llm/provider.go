// Package llm provides a pluggable interface for text-generation providers.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/factchecker/factlens/internal/config"
	"github.com/factchecker/factlens/internal/models"
)

// NoAnswer is returned in place of an empty or missing completion.
const NoAnswer = "No answer."

const defaultMaxTokens = 2048

// Provider defines the interface for LLM providers.
type Provider interface {
	// Generate sends a single prompt and returns the trimmed completion text,
	// or NoAnswer when the provider produced none. Transport failures and
	// malformed responses wrap models.ErrGenerationFailed.
	Generate(ctx context.Context, prompt string) (string, error)

	// Name returns the provider name.
	Name() string
}

// NewProvider creates a new LLM provider based on configuration.
func NewProvider(cfg config.LLMConfig, httpClient *http.Client) (Provider, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	switch cfg.Provider {
	case "gemini":
		return NewGeminiProvider(cfg, httpClient)
	case "openai":
		return NewOpenAIProvider(cfg, httpClient)
	case "anthropic":
		return NewAnthropicProvider(cfg, httpClient)
	case "ollama":
		return NewOllamaProvider(cfg, httpClient)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// answerOrDefault trims a completion and substitutes NoAnswer when nothing is left.
func answerOrDefault(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return NoAnswer
	}
	return text
}

func generationError(provider string, err error) error {
	return fmt.Errorf("%w: %s: %w", models.ErrGenerationFailed, provider, err)
}

// postJSON sends body as JSON and decodes a 2xx response into out. Non-2xx
// responses are returned as errors carrying a short prefix of the body.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, body, out any) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

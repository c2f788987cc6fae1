package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/factchecker/factlens/internal/config"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com"

// GeminiProvider implements Provider using the Google Gemini v1 API.
type GeminiProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(cfg config.LLMConfig, httpClient *http.Client) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = geminiBaseURL
	}

	return &GeminiProvider{
		apiKey:     cfg.APIKey,
		model:      model,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return "gemini"
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// Generate sends the prompt as a single user turn.
func (p *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}

	endpoint := fmt.Sprintf("%s/v1/models/%s:generateContent?%s",
		p.baseURL, p.model, url.Values{"key": {p.apiKey}}.Encode())

	var result geminiResponse
	if err := postJSON(ctx, p.httpClient, endpoint, nil, reqBody, &result); err != nil {
		return "", generationError(p.Name(), err)
	}

	if result.Error != nil {
		return "", generationError(p.Name(), fmt.Errorf("%s (code %d)", result.Error.Message, result.Error.Code))
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return NoAnswer, nil
	}

	return answerOrDefault(result.Candidates[0].Content.Parts[0].Text), nil
}

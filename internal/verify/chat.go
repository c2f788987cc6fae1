package verify

import (
	"context"
	"fmt"
	"strings"

	"github.com/factchecker/factlens/internal/llm"
	"github.com/factchecker/factlens/internal/models"
	"github.com/factchecker/factlens/internal/prompt"
	"github.com/rs/zerolog/log"
)

// ChatService answers free-form questions about a transcript.
type ChatService struct {
	provider llm.Provider
}

// NewChatService creates a new chat service.
func NewChatService(provider llm.Provider) *ChatService {
	return &ChatService{provider: provider}
}

// Chat sends one question about the transcript. Both fields must be
// non-blank; otherwise models.ErrValidation is returned and nothing is sent.
func (s *ChatService) Chat(ctx context.Context, transcript, question string) (string, error) {
	if strings.TrimSpace(transcript) == "" || strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: transcript and question are required", models.ErrValidation)
	}

	answer, err := s.provider.Generate(ctx, prompt.ComposeChat(transcript, question))
	if err != nil {
		return "", err
	}

	log.Debug().
		Str("provider", s.provider.Name()).
		Int("transcript_len", len(transcript)).
		Msg("Chat answered")
	return answer, nil
}

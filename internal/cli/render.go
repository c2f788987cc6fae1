package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/factchecker/factlens/internal/models"
)

// chatFailureText is shown in place of an answer when a chat request fails.
const chatFailureText = "Error: Could not get answer."

// RenderVerification prints the verdict followed by the numbered evidence list.
func RenderVerification(w io.Writer, claim string, result *models.VerificationResult) {
	fmt.Fprintf(w, "Verifying: %s\n\n", claim)
	fmt.Fprintf(w, "▶ Verdict:\n%s\n\n", result.Answer)
	fmt.Fprintln(w, "▶ Evidence used:")
	if len(result.Evidence) == 0 {
		fmt.Fprintln(w, "(none)")
		return
	}
	for i, item := range result.Evidence {
		fmt.Fprintf(w, "%d. %s — %s\n", i+1, item.Title, item.Link)
	}
}

// Asker answers one question about a transcript.
type Asker interface {
	Chat(ctx context.Context, transcript, question string) (string, error)
}

// ChatSession keeps the client-side history of a transcript conversation.
type ChatSession struct {
	asker      Asker
	transcript string
	history    []models.ChatTurn
}

// NewChatSession starts an empty conversation about transcript.
func NewChatSession(asker Asker, transcript string) *ChatSession {
	return &ChatSession{asker: asker, transcript: transcript}
}

// Ask records the question, sends it and records the answer. A failed
// request is recorded as chatFailureText and is not returned as an error.
func (s *ChatSession) Ask(ctx context.Context, question string) string {
	s.history = append(s.history, models.ChatTurn{Sender: models.SenderUser, Text: question})

	answer, err := s.asker.Chat(ctx, s.transcript, question)
	if err != nil {
		answer = chatFailureText
	}

	s.history = append(s.history, models.ChatTurn{Sender: models.SenderAssistant, Text: answer})
	return answer
}

// History returns the turns so far, oldest first.
func (s *ChatSession) History() []models.ChatTurn {
	return append([]models.ChatTurn(nil), s.history...)
}

// Run reads one question per line from in until EOF or "exit" and writes
// each answer to out. Blank lines are ignored.
func (s *ChatSession) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		question := strings.TrimSpace(scanner.Text())
		switch {
		case question == "":
		case question == "exit" || question == "quit":
			return nil
		default:
			fmt.Fprintf(out, "%s\n\n", s.Ask(ctx, question))
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}

// Package prompt builds the text sent to the language model for claim
// verification and transcript chat.
package prompt

import (
	"fmt"
	"strings"

	"github.com/factchecker/factlens/internal/models"
)

// ComposeVerification builds the verification prompt for a claim. The claim
// appears exactly once, verbatim, and evidence is listed in the given order.
func ComposeVerification(claim string, evidence []models.EvidenceItem) string {
	var b strings.Builder
	b.WriteString(verificationHead)
	b.WriteString(claim)
	b.WriteString(verificationMid)
	b.WriteString(FormatEvidence(evidence))
	b.WriteString(verificationTail)
	return strings.TrimSpace(b.String())
}

// FormatEvidence renders evidence as a numbered list, one entry per item,
// separated by blank lines. The excerpt line is omitted when empty.
func FormatEvidence(evidence []models.EvidenceItem) string {
	entries := make([]string, 0, len(evidence))
	for i, item := range evidence {
		entry := fmt.Sprintf("%d. %s — %s\n   Snippet: %s", i+1, item.Title, item.Link, item.Snippet)
		if item.Excerpt != "" {
			entry += "\n   Excerpt: " + item.Excerpt
		}
		entries = append(entries, entry)
	}
	return strings.Join(entries, "\n\n")
}

// ComposeChat builds the one-shot prompt for a question about a transcript.
func ComposeChat(transcript, question string) string {
	return "You are assigned to the user to answer everything regarding this summary:\n" +
		transcript + "\n\nUser question: " + question
}

package prompt

import (
	"strings"
	"testing"

	"github.com/factchecker/factlens/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestComposeVerification(t *testing.T) {
	claim := "The sky is green"
	evidence := []models.EvidenceItem{
		{Title: "Why is the sky blue?", Link: "https://example.com/sky", Snippet: "Rayleigh scattering.", Excerpt: "Blue light scatters."},
		{Title: "NASA", Link: "https://nasa.gov/sky", Snippet: "Sky colour facts."},
	}

	p := ComposeVerification(claim, evidence)

	assert.Equal(t, 1, strings.Count(p, claim))
	assert.Contains(t, p, "CLAIM:  \n\""+claim+"\"")
	assert.Contains(t, p, "1. Why is the sky blue? — https://example.com/sky\n   Snippet: Rayleigh scattering.\n   Excerpt: Blue light scatters.")
	assert.Contains(t, p, "\n\n2. NASA — https://nasa.gov/sky\n   Snippet: Sky colour facts.")
	assert.Equal(t, 1, strings.Count(p, "Excerpt:"))
	assert.Equal(t, p, strings.TrimSpace(p))
	assert.True(t, strings.HasPrefix(p, "You are a veteran investigative analyst"))
	assert.True(t, strings.HasSuffix(p, "using concise, professional prose."))
}

func TestComposeVerification_SectionOrder(t *testing.T) {
	p := ComposeVerification("claim", nil)

	sections := []string{
		"1. **Factual Verification:**",
		"2. **Motivation & Benefit Analysis:**",
		"3. **Intent & Framing:**",
		"4. **Sentiment & Tone:**",
		"5. **Final Verdict:**",
		"6. **Resource List:**",
		"CLAIM:",
		"EVIDENCE SOURCES:",
	}
	last := -1
	for _, s := range sections {
		idx := strings.Index(p, s)
		if assert.GreaterOrEqual(t, idx, 0, s) {
			assert.Greater(t, idx, last, s)
			last = idx
		}
	}
	assert.Contains(t, p, "more than 30% likely to be false")
}

func TestComposeVerification_ClaimWithMarkers(t *testing.T) {
	claim := `He said "100% sure" and ${evidence}`
	p := ComposeVerification(claim, nil)

	assert.Equal(t, 1, strings.Count(p, claim))
}

func TestFormatEvidence(t *testing.T) {
	tests := []struct {
		name     string
		evidence []models.EvidenceItem
		want     string
	}{
		{name: "empty", evidence: nil, want: ""},
		{
			name:     "single without excerpt",
			evidence: []models.EvidenceItem{{Title: "T", Link: "L", Snippet: "S"}},
			want:     "1. T — L\n   Snippet: S",
		},
		{
			name: "two with excerpt",
			evidence: []models.EvidenceItem{
				{Title: "A", Link: "a", Snippet: "sa", Excerpt: "ea"},
				{Title: "B", Link: "b", Snippet: "sb"},
			},
			want: "1. A — a\n   Snippet: sa\n   Excerpt: ea\n\n2. B — b\n   Snippet: sb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatEvidence(tt.evidence))
		})
	}
}

func TestComposeChat(t *testing.T) {
	p := ComposeChat("hello world transcript", "what was said?")

	assert.Equal(t,
		"You are assigned to the user to answer everything regarding this summary:\nhello world transcript\n\nUser question: what was said?",
		p)
}

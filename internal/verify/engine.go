// Package verify runs the claim verification pipeline and transcript chat.
package verify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/factchecker/factlens/internal/llm"
	"github.com/factchecker/factlens/internal/models"
	"github.com/factchecker/factlens/internal/prompt"
	"github.com/factchecker/factlens/internal/telemetry"
	"github.com/rs/zerolog/log"
)

// EvidenceCollector returns an ordered, bounded evidence list for a query.
type EvidenceCollector interface {
	Collect(ctx context.Context, query string, limit int) ([]models.EvidenceItem, error)
}

// ExcerptEnricher fills in page excerpts in place without changing length or order.
type ExcerptEnricher interface {
	Enrich(ctx context.Context, items []models.EvidenceItem)
}

// Engine orchestrates the fact-checking pipeline for a single claim.
type Engine struct {
	collector EvidenceCollector
	enricher  ExcerptEnricher
	provider  llm.Provider
	limit     int
}

// NewEngine creates a new verification engine. A nil enricher skips excerpts.
func NewEngine(collector EvidenceCollector, enricher ExcerptEnricher, provider llm.Provider, limit int) *Engine {
	if limit <= 0 {
		limit = models.DefaultEvidenceLimit
	}
	return &Engine{
		collector: collector,
		enricher:  enricher,
		provider:  provider,
		limit:     limit,
	}
}

// Verify collects evidence for the claim, asks the provider for a verdict and
// returns it together with the evidence in prompt order. A blank claim is
// rejected with models.ErrValidation before any network call.
func (e *Engine) Verify(ctx context.Context, claim string) (*models.VerificationResult, error) {
	if strings.TrimSpace(claim) == "" {
		return nil, fmt.Errorf("%w: claim is required", models.ErrValidation)
	}

	startTime := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "verify.claim")
	defer span.End()

	log.Info().Msg("Step 1: Collecting evidence")
	evidence, err := e.collector.Collect(ctx, claim, e.limit)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("%w: %w", models.ErrVerificationFailed, err)
	}
	log.Info().Int("count", len(evidence)).Msg("Evidence collected")

	if e.enricher != nil && len(evidence) > 0 {
		log.Info().Msg("Step 2: Fetching page excerpts")
		e.enricher.Enrich(ctx, evidence)
	}

	log.Info().Msg("Step 3: Requesting verdict")
	answer, err := e.provider.Generate(ctx, prompt.ComposeVerification(claim, evidence))
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("%w: %w", models.ErrVerificationFailed, err)
	}

	log.Info().
		Str("provider", e.provider.Name()).
		Int("evidence", len(evidence)).
		Int64("duration_ms", time.Since(startTime).Milliseconds()).
		Msg("Verification complete")

	return &models.VerificationResult{
		Answer:   answer,
		Evidence: evidence,
	}, nil
}

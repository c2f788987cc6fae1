// Package search collects evidence for a claim from a pluggable search provider
// and enriches it with short excerpts from the result pages.
package search

import (
	"context"
	"fmt"
	"net/http"

	"github.com/factchecker/factlens/internal/config"
	"github.com/factchecker/factlens/internal/models"
	"github.com/rs/zerolog/log"
)

// SearchProvider defines the interface for search providers.
type SearchProvider interface {
	// Search returns at most limit results for query, in the provider's order.
	Search(ctx context.Context, query string, limit int) ([]models.EvidenceItem, error)

	// Name returns the source name.
	Name() string
}

// NewProvider creates the search provider selected in the configuration.
func NewProvider(cfg config.SearchConfig, httpClient *http.Client) (SearchProvider, error) {
	switch cfg.Provider {
	case "duckduckgo":
		return NewDuckDuckGoClient(httpClient, cfg.BaseURL, cfg.UserAgent), nil
	case "wikipedia":
		return NewWikipediaClient(httpClient, cfg.BaseURL), nil
	case "pubmed":
		return NewPubMedClient(httpClient, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported search provider: %s", cfg.Provider)
	}
}

// Collector gathers a bounded, ordered evidence list for a claim.
type Collector struct {
	provider     SearchProvider
	defaultLimit int
}

// NewCollector creates a collector. A non-positive defaultLimit falls back
// to models.DefaultEvidenceLimit.
func NewCollector(provider SearchProvider, defaultLimit int) *Collector {
	if defaultLimit <= 0 {
		defaultLimit = models.DefaultEvidenceLimit
	}
	return &Collector{provider: provider, defaultLimit: defaultLimit}
}

// Collect queries the provider once and keeps the first limit results in
// document order. Provider failures are reported as models.ErrSearchUnavailable.
func (c *Collector) Collect(ctx context.Context, query string, limit int) ([]models.EvidenceItem, error) {
	if limit <= 0 {
		limit = c.defaultLimit
	}

	items, err := c.provider.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", models.ErrSearchUnavailable, c.provider.Name(), err)
	}

	if len(items) > limit {
		items = items[:limit]
	}
	if items == nil {
		items = []models.EvidenceItem{}
	}

	log.Debug().
		Str("provider", c.provider.Name()).
		Int("count", len(items)).
		Msg("Evidence collected")
	return items, nil
}

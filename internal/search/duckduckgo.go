package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/factchecker/factlens/internal/models"
	"github.com/rs/zerolog/log"
)

const duckDuckGoHTMLURL = "https://html.duckduckgo.com/html"

// DuckDuckGoClient scrapes the DuckDuckGo HTML results page.
//
// The page has no documented contract: if its markup changes the client
// finds no result blocks and returns an empty list rather than an error.
type DuckDuckGoClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewDuckDuckGoClient creates a new DuckDuckGo client. An empty baseURL
// uses the public HTML endpoint.
func NewDuckDuckGoClient(httpClient *http.Client, baseURL, userAgent string) *DuckDuckGoClient {
	if baseURL == "" {
		baseURL = duckDuckGoHTMLURL
	}
	return &DuckDuckGoClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		userAgent:  userAgent,
	}
}

// Name returns the source name.
func (c *DuckDuckGoClient) Name() string {
	return "DuckDuckGo"
}

// Search issues a single GET with the query as the q parameter.
func (c *DuckDuckGoClient) Search(ctx context.Context, query string, limit int) ([]models.EvidenceItem, error) {
	u := c.baseURL + "?" + url.Values{"q": {query}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("DuckDuckGo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("DuckDuckGo returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	results := parseDDGResults(doc, limit)
	log.Debug().Str("query", query).Int("count", len(results)).Msg("DuckDuckGo: Search completed")
	return results, nil
}

// parseDDGResults extracts result blocks in document order. Blocks without a
// result anchor are not results and are skipped.
func parseDDGResults(doc *goquery.Document, limit int) []models.EvidenceItem {
	results := make([]models.EvidenceItem, 0, limit)

	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(results) >= limit {
			return false
		}

		anchor := s.Find(".result__a").First()
		if anchor.Length() == 0 {
			return true
		}
		href, _ := anchor.Attr("href")

		results = append(results, models.EvidenceItem{
			Title:   strings.TrimSpace(anchor.Text()),
			Link:    unwrapRedirect(href),
			Snippet: strings.TrimSpace(s.Find(".result__snippet").First().Text()),
		})
		return true
	})

	return results
}

// unwrapRedirect extracts the destination from DuckDuckGo redirect links of
// the form //duckduckgo.com/l/?uddg=<escaped url>&rut=... Anything else is
// returned unchanged.
func unwrapRedirect(href string) string {
	if !strings.Contains(href, "uddg=") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/factchecker/factlens/internal/models"
	"github.com/rs/zerolog/log"
)

const wikipediaAPIURL = "https://en.wikipedia.org/w/api.php"

// WikipediaClient searches using the MediaWiki search API.
type WikipediaClient struct {
	httpClient *http.Client
	apiURL     string
}

// NewWikipediaClient creates a new Wikipedia client. An empty apiURL uses
// English Wikipedia.
func NewWikipediaClient(httpClient *http.Client, apiURL string) *WikipediaClient {
	if apiURL == "" {
		apiURL = wikipediaAPIURL
	}
	return &WikipediaClient{
		httpClient: httpClient,
		apiURL:     apiURL,
	}
}

// Name returns the source name.
func (c *WikipediaClient) Name() string {
	return "Wikipedia"
}

type wikiSearchResponse struct {
	Query struct {
		Search []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
		} `json:"search"`
	} `json:"query"`
}

// Search returns matching articles in relevance order.
func (c *WikipediaClient) Search(ctx context.Context, query string, limit int) ([]models.EvidenceItem, error) {
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {strconv.Itoa(limit)},
		"format":   {"json"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "factlens/1.0 (Fact-checking tool)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Wikipedia search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Wikipedia returned status %d", resp.StatusCode)
	}

	var data wikiSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	site := c.siteURL()
	items := make([]models.EvidenceItem, 0, len(data.Query.Search))
	for _, hit := range data.Query.Search {
		items = append(items, models.EvidenceItem{
			Title:   hit.Title,
			Link:    site + "/wiki/" + url.PathEscape(strings.ReplaceAll(hit.Title, " ", "_")),
			Snippet: stripMarkup(hit.Snippet),
		})
	}

	log.Debug().Int("count", len(items)).Msg("Wikipedia: Search completed")
	return items, nil
}

// siteURL derives the article host from the API endpoint.
func (c *WikipediaClient) siteURL() string {
	u, err := url.Parse(c.apiURL)
	if err != nil || u.Host == "" {
		return "https://en.wikipedia.org"
	}
	return u.Scheme + "://" + u.Host
}

// stripMarkup removes the highlight spans the search API puts in snippets.
func stripMarkup(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return strings.TrimSpace(doc.Text())
}

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/factchecker/factlens/internal/models"
)

const pubMedEutilsURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// PubMedClient searches using NCBI PubMed API.
type PubMedClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewPubMedClient creates a new PubMed client.
func NewPubMedClient(httpClient *http.Client, baseURL string) *PubMedClient {
	if baseURL == "" {
		baseURL = pubMedEutilsURL
	}
	return &PubMedClient{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// Name returns the source name.
func (c *PubMedClient) Name() string {
	return "PubMed"
}

type pubmedSearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type pubmedSummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type pubmedArticle struct {
	Title   string `json:"title"`
	PubDate string `json:"pubdate"`
	Source  string `json:"source"`
}

// Search searches PubMed for academic evidence.
func (c *PubMedClient) Search(ctx context.Context, query string, limit int) ([]models.EvidenceItem, error) {
	var searchData pubmedSearchResponse
	err := c.getJSON(ctx, "/esearch.fcgi", url.Values{
		"db":      {"pubmed"},
		"term":    {query},
		"retmax":  {strconv.Itoa(limit)},
		"retmode": {"json"},
	}, &searchData)
	if err != nil {
		return nil, fmt.Errorf("PubMed search failed: %w", err)
	}

	ids := searchData.ESearchResult.IDList
	if len(ids) == 0 {
		return []models.EvidenceItem{}, nil
	}

	var summaryData pubmedSummaryResponse
	err = c.getJSON(ctx, "/esummary.fcgi", url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"json"},
	}, &summaryData)
	if err != nil {
		return nil, fmt.Errorf("PubMed summary failed: %w", err)
	}

	items := make([]models.EvidenceItem, 0, len(ids))
	for _, pmid := range ids {
		raw, ok := summaryData.Result[pmid]
		if !ok {
			continue
		}
		var article pubmedArticle
		if err := json.Unmarshal(raw, &article); err != nil || article.Title == "" {
			continue
		}

		snippet := article.Title
		if article.Source != "" {
			snippet = fmt.Sprintf("Published in %s, %s", article.Source, article.PubDate)
		}

		items = append(items, models.EvidenceItem{
			Title:   article.Title,
			Link:    fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s/", pmid),
			Snippet: snippet,
		})
	}

	return items, nil
}

func (c *PubMedClient) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("PubMed returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

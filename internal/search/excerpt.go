package search

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/factchecker/factlens/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"
	"golang.org/x/sync/errgroup"
)

const (
	defaultExcerptTimeout = 8 * time.Second
	maxPageBytes          = 512 * 1024
)

// ExcerptFetcher pulls a short text sample from an evidence page.
type ExcerptFetcher struct {
	httpClient    *http.Client
	timeout       time.Duration
	userAgent     string
	maxConcurrent int
}

// NewExcerptFetcher creates a fetcher. Non-positive values fall back to an
// 8 second timeout and a single worker.
func NewExcerptFetcher(httpClient *http.Client, timeout time.Duration, maxConcurrent int, userAgent string) *ExcerptFetcher {
	if timeout <= 0 {
		timeout = defaultExcerptTimeout
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &ExcerptFetcher{
		httpClient:    httpClient,
		timeout:       timeout,
		userAgent:     userAgent,
		maxConcurrent: maxConcurrent,
	}
}

// Excerpt returns the trimmed text of the first <p> on the page, or "" if
// the page cannot be fetched or parsed. It never fails.
func (f *ExcerptFetcher) Excerpt(ctx context.Context, pageURL string) string {
	text, err := f.fetchFirstParagraph(ctx, pageURL)
	if err != nil {
		log.Debug().Err(err).Str("url", pageURL).Msg("Excerpt fetch degraded")
		return ""
	}
	return text
}

// Enrich fills in the excerpt of every item, running at most maxConcurrent
// fetches at a time. Each result is written back at its original index, so
// the length and order of items never change.
func (f *ExcerptFetcher) Enrich(ctx context.Context, items []models.EvidenceItem) {
	var g errgroup.Group
	g.SetLimit(f.maxConcurrent)

	for i := range items {
		i := i
		g.Go(func() error {
			items[i].Excerpt = f.Excerpt(ctx, items[i].Link)
			return nil
		})
	}

	_ = g.Wait()
}

func (f *ExcerptFetcher) fetchFirstParagraph(ctx context.Context, pageURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTML(contentType) {
		return "", fmt.Errorf("not an HTML page: %s", contentType)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxPageBytes), contentType)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(doc.Find("p").First().Text()), nil
}

// isHTML reports whether a Content-Type header names an HTML document.
// A missing header is given the benefit of the doubt.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

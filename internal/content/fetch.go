// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package content retrieves readable text for search-result URLs. The
// primary path renders pages through a reader proxy; on failure a direct
// fetch plus readability extraction is tried. Every input URL produces
// exactly one artifact, failed or not, and a mandatory delay paces the
// outbound requests — the reader proxy starts refusing bursty clients.
package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/pdiddy/opposition-engine/internal/httputil"
	"github.com/pdiddy/opposition-engine/pkg/types"
)

// readerAPIBase is the reader proxy prefix; the target URL is appended
// verbatim. Declared as a var so tests can substitute an httptest server.
var readerAPIBase = "https://r.jina.ai"

const (
	userAgent       = "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:52.0) Gecko/20100101 Firefox/52.0"
	readerAccept    = "text/plain,text/markdown,text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	fallbackAccept  = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	truncationMark  = "... [Content truncated]"
	defaultMaxChars = 15000
)

// RawSink persists the raw extractor output for one URL so a later
// re-analysis does not need to re-fetch. The artifact store implements it.
type RawSink interface {
	WriteRaw(projectID string, index int, data []byte) error
}

// Fetcher extracts page content for search results.
type Fetcher struct {
	Config types.ContentConfig
	HTTP   *http.Client
	Raw    RawSink

	// ReaderBase overrides the reader proxy prefix; empty means the
	// production proxy. Used by tests outside this package.
	ReaderBase string
}

// NewFetcher builds a fetcher from the content configuration.
func NewFetcher(cfg types.ContentConfig, raw RawSink) *Fetcher {
	return &Fetcher{
		Config: cfg,
		HTTP:   &http.Client{Timeout: cfg.Timeout},
		Raw:    raw,
	}
}

// Extract fetches content for every result in the set, in order, returning
// exactly one artifact per input result. A failure on one URL is recorded
// in that URL's artifact and never affects its neighbors. The configured
// delay is applied after every URL, including the last.
func (f *Fetcher) Extract(ctx context.Context, set types.SearchResultSet, projectID string, w io.Writer) []types.ContentArtifact {
	artifacts := make([]types.ContentArtifact, 0, len(set.Results))

	for i, result := range set.Results {
		fmt.Fprintf(w, "extracting %d/%d: %s\n", i+1, len(set.Results), result.Link)

		raw, err := f.fetchOne(ctx, result.Link, w)
		if err != nil {
			fmt.Fprintf(w, "  failed: %v\n", err)
			artifacts = append(artifacts, types.ContentArtifact{
				URL:     result.Link,
				Title:   result.Title,
				Success: false,
				Error:   err.Error(),
			})
			f.pace(ctx)
			continue
		}

		// Raw output is persisted pre-reflow so later re-analysis can start
		// from the extractor's exact text.
		if f.Raw != nil {
			if rawErr := f.Raw.WriteRaw(projectID, i+1, []byte(raw)); rawErr != nil {
				fmt.Fprintf(w, "  warning: saving raw output: %v\n", rawErr)
			}
		}

		text := Truncate(Reflow(raw), f.maxChars())
		artifacts = append(artifacts, types.ContentArtifact{
			URL:     result.Link,
			Title:   result.Title,
			Text:    text,
			Success: true,
		})

		f.pace(ctx)
	}

	return artifacts
}

// fetchOne tries the reader proxy, then the direct readability fallback.
func (f *Fetcher) fetchOne(ctx context.Context, link string, w io.Writer) (string, error) {
	raw, primaryErr := f.fetchReader(ctx, link)
	if primaryErr == nil {
		return raw, nil
	}
	fmt.Fprintf(w, "  warning: reader proxy failed (%v), trying direct extraction\n", primaryErr)

	raw, fallbackErr := f.fetchReadability(ctx, link)
	if fallbackErr != nil {
		return "", fmt.Errorf("reader proxy: %v; readability: %v", primaryErr, fallbackErr)
	}
	return raw, nil
}

// fetchReader requests the page through the reader proxy. Success is HTTP
// 200; the body is the rendered text.
func (f *Fetcher) fetchReader(ctx context.Context, link string) (string, error) {
	base := f.ReaderBase
	if base == "" {
		base = readerAPIBase
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/"+link, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", readerAccept)

	resp, err := httputil.DoWithRetry(ctx, f.client(), req, f.Config.MaxRetries)
	if err != nil {
		return "", err
	}
	body, err := httputil.ReadBody(resp)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reader proxy returned HTTP %d", resp.StatusCode)
	}
	return string(body), nil
}

// fetchReadability fetches the URL directly and runs readability over the
// page, returning the article's text content.
func (f *Fetcher) fetchReadability(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", fallbackAccept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("direct fetch returned HTTP %d", resp.StatusCode)
	}

	pageURL, err := url.Parse(link)
	if err != nil {
		pageURL = &url.URL{}
	}
	article, err := readability.FromReader(resp.Body, pageURL)
	if err != nil {
		return "", fmt.Errorf("readability extraction: %w", err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("readability produced no text")
	}
	return text, nil
}

// pace sleeps the inter-request delay. Part of the extraction contract, not
// an optimization knob: without it the upstream services begin refusing
// requests.
func (f *Fetcher) pace(ctx context.Context) {
	if f.Config.FetchDelay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(f.Config.FetchDelay):
	}
}

func (f *Fetcher) client() *http.Client {
	if f.HTTP != nil {
		return f.HTTP
	}
	return http.DefaultClient
}

func (f *Fetcher) maxChars() int {
	if f.Config.MaxChars > 0 {
		return f.Config.MaxChars
	}
	return defaultMaxChars
}

// Truncate clips text to a rune budget, appending a truncation marker when
// clipped. Runes, not bytes: a multi-byte Bangla character is never split.
func Truncate(text string, maxChars int) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars]) + truncationMark
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search issues web searches through the Brightdata SERP proxy and
// parses organic results out of the rendered page. A failed search is an
// empty result set, never an error: the pipeline continues with zero
// results for that language rather than aborting the project.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/pdiddy/opposition-engine/internal/httputil"
	"github.com/pdiddy/opposition-engine/pkg/types"
)

// brightdataAPIBase is the Brightdata request endpoint. Declared as a var so
// tests can substitute an httptest server.
var brightdataAPIBase = "https://api.brightdata.com/request"

const googleSearchURL = "https://www.google.com/search?q="

// Client queries the SERP proxy.
type Client struct {
	APIKey string
	Config types.SearchConfig
	HTTP   *http.Client

	// BaseURL overrides the proxy endpoint; empty means the production
	// endpoint. Used by tests outside this package.
	BaseURL string
}

// NewClient builds a search client from the search configuration.
func NewClient(cfg types.SearchConfig) *Client {
	return &Client{
		APIKey: cfg.APIKey,
		Config: cfg,
		HTTP:   &http.Client{Timeout: cfg.Timeout},
	}
}

// brightdataRequest is the proxy request envelope. The proxy fetches the
// wrapped URL through the named zone and returns the rendered page.
type brightdataRequest struct {
	Zone   string `json:"zone"`
	URL    string `json:"url"`
	Format string `json:"format"`
}

// brightdataResponse is the subset of the proxy reply we consume: the
// rendered page HTML as a string.
type brightdataResponse struct {
	Body string `json:"body"`
}

// Search runs one query through the proxy and returns the parsed organic
// results. Non-200 statuses, malformed envelopes, a missing body, and
// transport errors all yield an empty set carrying the query and language;
// Search never returns an error.
func (c *Client) Search(ctx context.Context, query, language string, w io.Writer) types.SearchResultSet {
	zone := c.Config.Zone
	if zone == "" {
		zone = "serp"
	}

	reqBody := brightdataRequest{
		Zone:   zone,
		URL:    googleSearchURL + url.QueryEscape(query),
		Format: "json",
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		fmt.Fprintf(w, "warning: search %s: marshaling request: %v\n", language, err)
		return types.EmptyResultSet(query, language)
	}

	base := c.BaseURL
	if base == "" {
		base = brightdataAPIBase
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base, bytes.NewReader(bodyBytes))
	if err != nil {
		fmt.Fprintf(w, "warning: search %s: creating request: %v\n", language, err)
		return types.EmptyResultSet(query, language)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, c.Config.MaxRetries)
	if err != nil {
		fmt.Fprintf(w, "warning: search %s: %v\n", language, err)
		return types.EmptyResultSet(query, language)
	}

	respBody, err := httputil.ReadBody(resp)
	if err != nil {
		fmt.Fprintf(w, "warning: search %s: reading response: %v\n", language, err)
		return types.EmptyResultSet(query, language)
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(w, "warning: search %s: SERP proxy returned HTTP %d\n", language, resp.StatusCode)
		return types.EmptyResultSet(query, language)
	}

	var envelope brightdataResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		fmt.Fprintf(w, "warning: search %s: malformed proxy envelope: %v\n", language, err)
		return types.EmptyResultSet(query, language)
	}
	if envelope.Body == "" {
		fmt.Fprintf(w, "warning: search %s: proxy envelope has no rendered body\n", language)
		return types.EmptyResultSet(query, language)
	}

	maxResults := c.Config.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}

	results, err := parseOrganicResults(envelope.Body, maxResults)
	if err != nil {
		fmt.Fprintf(w, "warning: search %s: parsing rendered page: %v\n", language, err)
		return types.EmptyResultSet(query, language)
	}

	return types.SearchResultSet{
		Results:    results,
		QueryText:  query,
		Language:   language,
		TotalCount: len(results),
	}
}

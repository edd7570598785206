// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// SearchResult is one organic result parsed from the search proxy's rendered
// page. Link is the only field downstream stages require; title and
// description are best-effort.
type SearchResult struct {
	// Title is the result heading, or the anchor text when no heading exists.
	Title string `json:"title" yaml:"title"`

	// Link is the result URL.
	Link string `json:"link" yaml:"link"`

	// Description is the result snippet, extracted heuristically.
	Description string `json:"description" yaml:"description"`

	// Position is the 1-based rank within this result's language set.
	Position int `json:"position" yaml:"position"`
}

// SearchResultSet is the ordered outcome of one search call. Rank order is
// meaningful. A failed or empty search is represented by TotalCount == 0
// with the query and language still populated.
type SearchResultSet struct {
	// Results holds the kept organic results in rank order.
	Results []SearchResult `json:"results" yaml:"results"`

	// QueryText is the query this set was produced for.
	QueryText string `json:"query_text" yaml:"query_text"`

	// Language tags the query language ("en", "bn", or "mixed" for a merged set).
	Language string `json:"language" yaml:"language"`

	// TotalCount is len(Results), persisted for the dashboard's convenience.
	TotalCount int `json:"total_count" yaml:"total_count"`
}

// EmptyResultSet returns the set a failed search degrades to.
func EmptyResultSet(query, language string) SearchResultSet {
	return SearchResultSet{Results: []SearchResult{}, QueryText: query, Language: language}
}

// CombinedSearch bundles both language searches with their merged view, as
// persisted in result/<id>.json.
type CombinedSearch struct {
	EnglishSearch   SearchResultSet `json:"english_search" yaml:"english_search"`
	BanglaSearch    SearchResultSet `json:"bangla_search" yaml:"bangla_search"`
	CombinedResults SearchResultSet `json:"combined_results" yaml:"combined_results"`
}

// MergeSearches concatenates the English and Bangla sets, English first,
// without deduplication: a URL found by both queries is extracted twice, and
// that is accepted. Result positions are kept from their originating sets.
func MergeSearches(english, bangla SearchResultSet) SearchResultSet {
	merged := make([]SearchResult, 0, len(english.Results)+len(bangla.Results))
	merged = append(merged, english.Results...)
	merged = append(merged, bangla.Results...)
	return SearchResultSet{
		Results:    merged,
		QueryText:  fmt.Sprintf("English: %s | Bangla: %s", english.QueryText, bangla.QueryText),
		Language:   "mixed",
		TotalCount: len(merged),
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// QueryPair is the bilingual search-query pair produced once per project by
// the query synthesis stage and persisted as search/<id>.json. Both fields
// are always non-empty: synthesis falls back to deterministic queries rather
// than ever returning a blank.
type QueryPair struct {
	// EnglishQuery is the English-language web search query.
	EnglishQuery string `json:"english_query" yaml:"english_query"`

	// BanglaQuery is the Bangla-language web search query.
	BanglaQuery string `json:"bangla_query" yaml:"bangla_query"`
}

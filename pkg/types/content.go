package types

// ContentArtifact is the extraction outcome for one search-result URL, as
// persisted in the content/<id>.json array. Failed extractions keep their
// slot: Text is empty, Error says why, and the artifact is never dropped, so
// the final report can account for attempted-but-failed sources.
type ContentArtifact struct {
	// URL is the page this artifact was extracted from.
	URL string `json:"url" yaml:"url"`

	// Title is carried over from the originating search result.
	Title string `json:"title" yaml:"title"`

	// Text is the reflowed, truncated page text; empty on failure.
	Text string `json:"text" yaml:"text"`

	// Success reports whether either extraction path produced text.
	Success bool `json:"success" yaml:"success"`

	// Error describes the failure; empty (and omitted) on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

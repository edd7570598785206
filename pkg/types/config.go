package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network
// requests.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries is the number of retries after a 429 response (default 2).
	// Other failures are not retried; the stages' own degradation policies
	// handle them.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// SearchConfig holds settings for the search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey authenticates against the search proxy (BRIGHTDATA_SERP_API_KEY).
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Zone is the proxy zone the request is billed to (default "serp").
	Zone string `json:"zone" yaml:"zone"`

	// MaxResults caps the organic results kept per query (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ContentConfig holds settings for the content extraction stage.
type ContentConfig struct {
	HTTPConfig `yaml:",inline"`

	// FetchDelay is the pause after each URL (default 2s). The delay is part
	// of the extraction contract: without it the reader proxy starts
	// refusing requests.
	FetchDelay time.Duration `json:"fetch_delay" yaml:"fetch_delay"`

	// MaxChars is the character budget for extracted text (default 15000).
	// Text beyond the budget is clipped and marked as truncated.
	MaxChars int `json:"max_chars" yaml:"max_chars"`
}

// AIConfig holds shared settings for stages that call the generative model.
type AIConfig struct {
	// Model is the generative model identifier (default "gemini-2.0-flash-exp").
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against the model service (GEMINI_API_KEY).
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Timeout is the per-call timeout (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxRetries is the number of retries after a 429 response (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// StoreConfig holds settings for the artifact store.
type StoreConfig struct {
	// DataDir is the base directory holding the four stage directories
	// search/, result/, content/, summary/ (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// CatalogConfig holds settings for the derived verdict catalog.
type CatalogConfig struct {
	// DBPath is the sqlite database path (default "<data_dir>/catalog.db").
	DBPath string `json:"db_path" yaml:"db_path"`
}

// PipelineConfig groups all stage configurations for one pipeline run.
type PipelineConfig struct {
	Search  SearchConfig  `json:"search" yaml:"search"`
	Content ContentConfig `json:"content" yaml:"content"`
	AI      AIConfig      `json:"ai" yaml:"ai"`
	Store   StoreConfig   `json:"store" yaml:"store"`
}

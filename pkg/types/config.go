package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "clintra/0.1"). Per prd010-fanout R5.2.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FanoutConfig holds settings for the fanout stage.
// Per prd010-fanout R1.3, R5.1-R5.5.
type FanoutConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of unique records to return
	// (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Sources lists the enabled connectors. An empty list enables the
	// default set (pubmed, clinicaltrials, pubchem, pdb, kegg, drugbank).
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty"`

	// RequestDelay is the fixed minimum delay between consecutive calls
	// to the same source (default 500ms).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// CacheTTL is how long fanout results stay in the in-process cache
	// (default 5m; 0 disables caching).
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`

	// NCBIAPIKey raises the E-utilities rate limit for PubMed and
	// PubChem. Optional.
	NCBIAPIKey string `json:"ncbi_api_key,omitempty" yaml:"ncbi_api_key,omitempty"`

	// DrugBankAPIKey authenticates the DrugBank connector. Without it
	// the connector serves its deterministic fallback set.
	DrugBankAPIKey string `json:"drugbank_api_key,omitempty" yaml:"drugbank_api_key,omitempty"`

	// AIVariations enables LLM-proposed query variations on top of the
	// static tables. The static variations are always available; a
	// provider failure is silent.
	AIVariations bool `json:"ai_variations" yaml:"ai_variations"`
}

// ProviderConfig identifies one inference endpoint for enrichment.
type ProviderConfig struct {
	// BaseURL is the chat-completions endpoint.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Model is the model identifier sent with each request.
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates the request.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// EnrichConfig holds settings for the enrichment stage.
// Per prd011-enrichment R2.1-R2.4.
type EnrichConfig struct {
	HTTPConfig `yaml:",inline"`

	// Primary is the first-choice inference provider.
	Primary ProviderConfig `json:"primary" yaml:"primary"`

	// Secondary is tried when the primary fails for any reason other
	// than rate limiting (which is retried).
	Secondary ProviderConfig `json:"secondary" yaml:"secondary"`

	// MaxRetries is the number of retry attempts on HTTP 429 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// MaxTokens caps the completion length (default 1024).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Temperature is the sampling temperature (default 0.3).
	Temperature float64 `json:"temperature" yaml:"temperature"`
}

// HistoryConfig holds settings for the local fetch-history store.
type HistoryConfig struct {
	// HistoryDir is the directory holding the SQLite database
	// (default "history").
	HistoryDir string `json:"history_dir" yaml:"history_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Fanout  FanoutConfig  `json:"fanout" yaml:"fanout"`
	Enrich  EnrichConfig  `json:"enrich" yaml:"enrich"`
	History HistoryConfig `json:"history" yaml:"history"`
}

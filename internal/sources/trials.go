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

// trialsAPIBase is the ClinicalTrials.gov v2 study search endpoint.
// Declared as a var so tests can substitute an httptest server.
var trialsAPIBase = "https://clinicaltrials.gov/api/v2/studies"

// Trials queries the ClinicalTrials.gov v2 API.
type Trials struct {
	Client    *http.Client
	UserAgent string
	Limiter   *ratelimit.Interval
}

func (s *Trials) Name() string { return "clinicaltrials" }

// Search returns up to max trials matching term. The "status" filter
// maps to filter.overallStatus (e.g. RECRUITING); "phase" is matched
// client-side against the study's phase list since the v2 API exposes
// no phase filter parameter.
func (s *Trials) Search(ctx context.Context, term string, max int, f types.Filters) ([]types.Record, error) {
	params := url.Values{
		"query.term": {term},
		"pageSize":   {strconv.Itoa(max)},
	}
	if status := f.Get("status"); status != "" {
		params.Set("filter.overallStatus", strings.ToUpper(status))
	}

	if err := s.Limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trialsAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ClinicalTrials API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ClinicalTrials API returned HTTP %d", resp.StatusCode)
	}

	var tr trialsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("parsing ClinicalTrials response: %w", err)
	}

	phaseFilter := strings.ToUpper(f.Get("phase"))

	var records []types.Record
	for _, study := range tr.Studies {
		ident := study.ProtocolSection.IdentificationModule
		if ident.NCTID == "" {
			continue
		}
		phase := strings.Join(study.ProtocolSection.DesignModule.Phases, ", ")
		if phaseFilter != "" && !strings.Contains(strings.ToUpper(phase), phaseFilter) {
			continue
		}
		r := types.Trial{
			NCTID:      ident.NCTID,
			Title:      orNotAvailable(ident.BriefTitle),
			Status:     orNotAvailable(study.ProtocolSection.StatusModule.OverallStatus),
			Phase:      orNotAvailable(phase),
			Conditions: study.ProtocolSection.ConditionsModule.Conditions,
			Link:       "https://clinicaltrials.gov/study/" + ident.NCTID,
		}
		for _, iv := range study.ProtocolSection.ArmsInterventionsModule.Interventions {
			if iv.Name != "" {
				r.Interventions = append(r.Interventions, iv.Type+": "+iv.Name)
			}
		}
		records = append(records, r)
	}
	return capRecords(records, max), nil
}

// Fallback returns a deterministic simulated trial for term.
func (s *Trials) Fallback(term string, max int) []types.Record {
	records := []types.Record{
		types.Trial{
			NCTID:         "NCT00000001",
			Title:         fmt.Sprintf("A Study to Evaluate an Investigational Treatment for %s", term),
			Status:        "Recruiting",
			Phase:         notAvailable,
			Conditions:    []string{term},
			Interventions: []string{"Drug: Investigational agent"},
			Link:          "https://clinicaltrials.gov/study/NCT00000001",
		},
		types.Trial{
			NCTID:      "NCT00000002",
			Title:      fmt.Sprintf("Observational Registry of Patients With %s", term),
			Status:     "Completed",
			Phase:      notAvailable,
			Conditions: []string{term},
			Link:       "https://clinicaltrials.gov/study/NCT00000002",
		},
	}
	return capRecords(records, max)
}

// ClinicalTrials.gov v2 JSON structures.
type trialsResponse struct {
	Studies []trialsStudy `json:"studies"`
}

type trialsStudy struct {
	ProtocolSection struct {
		IdentificationModule struct {
			NCTID      string `json:"nctId"`
			BriefTitle string `json:"briefTitle"`
		} `json:"identificationModule"`
		StatusModule struct {
			OverallStatus string `json:"overallStatus"`
		} `json:"statusModule"`
		DesignModule struct {
			Phases []string `json:"phases"`
		} `json:"designModule"`
		ConditionsModule struct {
			Conditions []string `json:"conditions"`
		} `json:"conditionsModule"`
		ArmsInterventionsModule struct {
			Interventions []struct {
				Type string `json:"type"`
				Name string `json:"name"`
			} `json:"interventions"`
		} `json:"armsInterventionsModule"`
	} `json:"protocolSection"`
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meshintel/clintra/pkg/types"
)

const sampleTrialsJSON = `{
  "studies": [
    {
      "protocolSection": {
        "identificationModule": {"nctId": "NCT05551234", "briefTitle": "Aspirin in Primary Prevention"},
        "statusModule": {"overallStatus": "RECRUITING"},
        "designModule": {"phases": ["PHASE3"]},
        "conditionsModule": {"conditions": ["Cardiovascular Disease"]},
        "armsInterventionsModule": {"interventions": [{"type": "DRUG", "name": "Aspirin 81mg"}]}
      }
    },
    {
      "protocolSection": {
        "identificationModule": {"nctId": "NCT05559999", "briefTitle": "Salicylate Observational Study"},
        "statusModule": {"overallStatus": "COMPLETED"},
        "designModule": {"phases": []},
        "conditionsModule": {"conditions": ["Inflammation"]},
        "armsInterventionsModule": {}
      }
    }
  ]
}`

func trialsTestServer(t *testing.T, body string) (*httptest.Server, *string) {
	t.Helper()
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(ts.Close)

	old := trialsAPIBase
	trialsAPIBase = ts.URL
	t.Cleanup(func() { trialsAPIBase = old })

	return ts, &gotQuery
}

func TestTrialsSearch(t *testing.T) {
	ts, _ := trialsTestServer(t, sampleTrialsJSON)

	s := &Trials{Client: ts.Client(), UserAgent: "clintra-test"}
	records, err := s.Search(context.Background(), "aspirin", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}

	tr, ok := records[0].(types.Trial)
	if !ok {
		t.Fatalf("records[0] is %T, want types.Trial", records[0])
	}
	if tr.NCTID != "NCT05551234" {
		t.Errorf("NCTID = %q", tr.NCTID)
	}
	if tr.Status != "RECRUITING" {
		t.Errorf("Status = %q", tr.Status)
	}
	if tr.Phase != "PHASE3" {
		t.Errorf("Phase = %q", tr.Phase)
	}
	if len(tr.Interventions) != 1 || tr.Interventions[0] != "DRUG: Aspirin 81mg" {
		t.Errorf("Interventions = %v", tr.Interventions)
	}
	if tr.Link != "https://clinicaltrials.gov/study/NCT05551234" {
		t.Errorf("Link = %q", tr.Link)
	}

	// The second study has no phases; the placeholder must fill it.
	if records[1].(types.Trial).Phase != "not available" {
		t.Errorf("empty phase = %q, want placeholder", records[1].(types.Trial).Phase)
	}
}

func TestTrialsStatusFilterForwarded(t *testing.T) {
	ts, gotQuery := trialsTestServer(t, `{"studies":[]}`)

	s := &Trials{Client: ts.Client()}
	f := types.Filters{"status": "recruiting"}
	if _, err := s.Search(context.Background(), "aspirin", 10, f); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !containsParam(*gotQuery, "filter.overallStatus=RECRUITING") {
		t.Errorf("query %q missing uppercased status filter", *gotQuery)
	}
}

func TestTrialsPhaseFilteredClientSide(t *testing.T) {
	ts, _ := trialsTestServer(t, sampleTrialsJSON)

	s := &Trials{Client: ts.Client()}
	f := types.Filters{"phase": "phase3"}
	records, err := s.Search(context.Background(), "aspirin", 10, f)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1 after phase filter", len(records))
	}
	if records[0].NaturalKey() != "NCT05551234" {
		t.Errorf("kept record = %q, want the phase 3 trial", records[0].NaturalKey())
	}
}

func TestTrialsServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	old := trialsAPIBase
	trialsAPIBase = ts.URL
	defer func() { trialsAPIBase = old }()

	s := &Trials{Client: ts.Client()}
	if _, err := s.Search(context.Background(), "aspirin", 10, nil); err == nil {
		t.Fatal("expected error on HTTP 503")
	}
}

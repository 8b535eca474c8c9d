// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/meshintel/clintra/pkg/types"
)

type stubSource struct {
	name    string
	records []types.Record
	err     error
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) Search(_ context.Context, _ string, _ int, _ types.Filters) ([]types.Record, error) {
	return s.records, s.err
}

func TestConnectorPassesThroughOnSuccess(t *testing.T) {
	want := []types.Record{types.Article{PMID: "123", Title: "a paper"}}
	c := Connector{
		Source:   stubSource{name: "pubmed", records: want},
		Fallback: func(term string, max int) []types.Record { t.Fatal("fallback should not run"); return nil },
	}

	got := c.Search(context.Background(), "aspirin", 10, nil, func(err error) {
		t.Fatalf("unexpected error callback: %v", err)
	})
	if len(got) != 1 || got[0].NaturalKey() != "123" {
		t.Errorf("Search = %v, want %v", got, want)
	}
}

func TestConnectorDegradesToFallback(t *testing.T) {
	fallback := []types.Record{types.Trial{NCTID: "NCT00000001", Title: "fallback trial"}}
	c := Connector{
		Source:   stubSource{name: "clinicaltrials", err: errors.New("connection timed out")},
		Fallback: func(term string, max int) []types.Record { return fallback },
	}

	var reported error
	got := c.Search(context.Background(), "aspirin", 10, nil, func(err error) { reported = err })

	if len(got) != 1 || got[0].NaturalKey() != "NCT00000001" {
		t.Errorf("Search = %v, want fallback records", got)
	}
	if reported == nil {
		t.Fatal("error callback not invoked")
	}
	if !strings.Contains(reported.Error(), "clinicaltrials") {
		t.Errorf("reported error %q should name the source", reported)
	}
	if !strings.Contains(reported.Error(), "connection timed out") {
		t.Errorf("reported error %q should carry the cause", reported)
	}
}

func TestConnectorNilFallback(t *testing.T) {
	c := Connector{Source: stubSource{name: "kegg", err: errors.New("boom")}}

	got := c.Search(context.Background(), "glycolysis", 10, nil, nil)
	if got != nil {
		t.Errorf("Search = %v, want nil without a fallback", got)
	}
}

func TestOrNotAvailable(t *testing.T) {
	if got := orNotAvailable(""); got != "not available" {
		t.Errorf("orNotAvailable(\"\") = %q", got)
	}
	if got := orNotAvailable("x"); got != "x" {
		t.Errorf("orNotAvailable(\"x\") = %q", got)
	}
}

func TestFallbackSetsAreDeterministicAndBounded(t *testing.T) {
	fallbacks := map[string]func(string, int) []types.Record{
		"pubmed":         (&PubMed{}).Fallback,
		"clinicaltrials": (&Trials{}).Fallback,
		"pubchem":        (&PubChem{}).Fallback,
		"pdb":            (&PDB{}).Fallback,
		"kegg":           (&KEGG{}).Fallback,
		"drugbank":       (&DrugBank{}).Fallback,
		"chembl":         (&ChEMBL{}).Fallback,
		"uniprot":        (&UniProt{}).Fallback,
	}

	for name, fb := range fallbacks {
		t.Run(name, func(t *testing.T) {
			first := fb("aspirin", 10)
			if len(first) == 0 {
				t.Fatal("fallback set is empty")
			}
			again := fb("aspirin", 10)
			if len(again) != len(first) {
				t.Fatalf("fallback not deterministic: %d vs %d records", len(again), len(first))
			}
			for i := range first {
				if first[i].NaturalKey() != again[i].NaturalKey() {
					t.Errorf("record %d key differs between runs", i)
				}
				if first[i].NaturalKey() == "" {
					t.Errorf("record %d has empty natural key", i)
				}
			}

			if got := fb("aspirin", 1); len(got) != 1 {
				t.Errorf("max=1 returned %d records", len(got))
			}
		})
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/meshintel/clintra/pkg/types"
)

const sampleKEGGTSV = "path:map00010\tGlycolysis / Gluconeogenesis\n" +
	"path:map00020\tCitrate cycle (TCA cycle)\n" +
	"path:map00030\tPentose phosphate pathway\n"

func keggTestServer(t *testing.T, body string) (*httptest.Server, *string) {
	t.Helper()
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, body)
	}))
	t.Cleanup(ts.Close)

	old := keggAPIBase
	keggAPIBase = ts.URL
	t.Cleanup(func() { keggAPIBase = old })

	return ts, &gotPath
}

func TestKEGGSearch(t *testing.T) {
	ts, gotPath := keggTestServer(t, sampleKEGGTSV)

	s := &KEGG{Client: ts.Client(), UserAgent: "clintra-test"}
	records, err := s.Search(context.Background(), "glycolysis", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
	if *gotPath != "/find/pathway/glycolysis" {
		t.Errorf("request path = %q", *gotPath)
	}

	p, ok := records[0].(types.Pathway)
	if !ok {
		t.Fatalf("records[0] is %T, want types.Pathway", records[0])
	}
	if p.PathwayID != "map00010" {
		t.Errorf("PathwayID = %q, want path: prefix stripped", p.PathwayID)
	}
	if p.Name != "Glycolysis / Gluconeogenesis" {
		t.Errorf("Name = %q", p.Name)
	}
	if p.Link != "https://www.genome.jp/kegg-bin/show_pathway?map00010" {
		t.Errorf("Link = %q", p.Link)
	}
}

func TestKEGGSearchHonorsMax(t *testing.T) {
	ts, _ := keggTestServer(t, sampleKEGGTSV)

	s := &KEGG{Client: ts.Client()}
	records, err := s.Search(context.Background(), "glycolysis", 2, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("len(records) = %d, want 2", len(records))
	}
}

func TestKEGGSearchOrganismFilter(t *testing.T) {
	ts, gotPath := keggTestServer(t, "")

	s := &KEGG{Client: ts.Client()}
	f := types.Filters{"organism": "human"}
	if _, err := s.Search(context.Background(), "glycolysis", 10, f); err != nil {
		t.Fatalf("Search: %v", err)
	}
	unescaped, err := url.PathUnescape(*gotPath)
	if err != nil {
		t.Fatalf("unescaping path %q: %v", *gotPath, err)
	}
	if unescaped != "/find/pathway/glycolysis human" {
		t.Errorf("request path = %q", unescaped)
	}
}

func TestKEGGSearchServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	old := keggAPIBase
	keggAPIBase = ts.URL
	defer func() { keggAPIBase = old }()

	s := &KEGG{Client: ts.Client()}
	if _, err := s.Search(context.Background(), "glycolysis", 10, nil); err == nil {
		t.Fatal("expected error on HTTP 400")
	}
}

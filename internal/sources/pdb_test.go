// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/meshintel/clintra/pkg/types"
)

func pdbTestServer(t *testing.T) (*httptest.Server, *pdbSearchRequest) {
	t.Helper()
	var gotSearch pdbSearchRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotSearch); err != nil {
			t.Errorf("decoding search request: %v", err)
		}
		fmt.Fprint(w, `{"result_set":[{"identifier":"2BZA"},{"identifier":"1IRK"}]}`)
	})
	mux.HandleFunc("/entry/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/entry/")
		switch id {
		case "2BZA":
			fmt.Fprint(w, `{"struct":{"title":"Human insulin structure"},
				"rcsb_entry_info":{"resolution_combined":[1.48]},
				"exptl":[{"method":"X-RAY DIFFRACTION"}]}`)
		case "1IRK":
			fmt.Fprint(w, `{"struct":{"title":"Insulin receptor kinase domain"},
				"rcsb_entry_info":{},
				"exptl":[]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	oldSearch, oldEntry := pdbSearchBase, pdbEntryBase
	pdbSearchBase = ts.URL + "/search"
	pdbEntryBase = ts.URL + "/entry"
	t.Cleanup(func() { pdbSearchBase, pdbEntryBase = oldSearch, oldEntry })

	return ts, &gotSearch
}

func TestPDBSearch(t *testing.T) {
	ts, gotSearch := pdbTestServer(t)

	s := &PDB{Client: ts.Client(), UserAgent: "clintra-test"}
	records, err := s.Search(context.Background(), "insulin", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}

	if gotSearch.Query.Service != "full_text" {
		t.Errorf("search service = %q, want full_text", gotSearch.Query.Service)
	}
	if gotSearch.Query.Parameters.Value != "insulin" {
		t.Errorf("search value = %q", gotSearch.Query.Parameters.Value)
	}
	if gotSearch.ReturnType != "entry" {
		t.Errorf("return_type = %q", gotSearch.ReturnType)
	}

	st, ok := records[0].(types.Structure)
	if !ok {
		t.Fatalf("records[0] is %T, want types.Structure", records[0])
	}
	if st.PDBID != "2BZA" {
		t.Errorf("PDBID = %q", st.PDBID)
	}
	if st.Title != "Human insulin structure" {
		t.Errorf("Title = %q", st.Title)
	}
	if st.Resolution != "1.48 Å" {
		t.Errorf("Resolution = %q", st.Resolution)
	}
	if st.Method != "X-RAY DIFFRACTION" {
		t.Errorf("Method = %q", st.Method)
	}
	if st.Link != "https://www.rcsb.org/structure/2BZA" {
		t.Errorf("Link = %q", st.Link)
	}

	// The second entry lacks resolution and method.
	st1 := records[1].(types.Structure)
	if st1.Resolution != "not available" || st1.Method != "not available" {
		t.Errorf("missing fields = (%q, %q), want placeholders", st1.Resolution, st1.Method)
	}
}

func TestPDBSearchOrganismFilter(t *testing.T) {
	ts, gotSearch := pdbTestServer(t)

	s := &PDB{Client: ts.Client()}
	f := types.Filters{"organism": "Homo sapiens"}
	if _, err := s.Search(context.Background(), "insulin", 10, f); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotSearch.Query.Parameters.Value != "insulin Homo sapiens" {
		t.Errorf("search value = %q, want organism folded in", gotSearch.Query.Parameters.Value)
	}
}

func TestPDBSearchNoContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	old := pdbSearchBase
	pdbSearchBase = ts.URL
	defer func() { pdbSearchBase = old }()

	s := &PDB{Client: ts.Client()}
	records, err := s.Search(context.Background(), "nothing matches", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if records != nil {
		t.Errorf("records = %v, want nil for 204", records)
	}
}

func TestPDBSearchEntryFailureKeepsID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result_set":[{"identifier":"9XYZ"}]}`)
	})
	mux.HandleFunc("/entry/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	oldSearch, oldEntry := pdbSearchBase, pdbEntryBase
	pdbSearchBase = ts.URL + "/search"
	pdbEntryBase = ts.URL + "/entry"
	defer func() { pdbSearchBase, pdbEntryBase = oldSearch, oldEntry }()

	s := &PDB{Client: ts.Client()}
	records, err := s.Search(context.Background(), "insulin", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want the bare-ID record", len(records))
	}
	st := records[0].(types.Structure)
	if st.PDBID != "9XYZ" || st.Title != "not available" {
		t.Errorf("bare record = %+v", st)
	}
}

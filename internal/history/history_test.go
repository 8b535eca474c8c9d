package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/meshintel/clintra/pkg/types"
)

// --- test helpers ---

func testSetup(t *testing.T) (*Store, string) {
	t.Helper()
	tmpDir := t.TempDir()

	cfg := types.HistoryConfig{
		HistoryDir: filepath.Join(tmpDir, "history"),
		MaxResults: 20,
	}
	store, err := NewStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	return store, tmpDir
}

func sampleResultSet() types.ResultSet {
	return types.ResultSet{
		Records: []types.Record{
			types.Article{PMID: "38001234", Title: "Aspirin and cardiovascular outcomes", Journal: "Nature Medicine"},
			types.Trial{NCTID: "NCT05551234", Title: "Aspirin in primary prevention", Status: "RECRUITING"},
			types.Compound{CID: "2244", Name: "aspirin", Database: "pubchem"},
		},
		TotalConsidered: 7,
		VariationsTried: []string{"aspirin", "aspirin NSAID"},
		Errors: []types.SourceError{
			{Source: "kegg", Variation: "aspirin", Message: "timeout"},
		},
	}
}

func recordHelper(t *testing.T, store *Store, term string) int64 {
	t.Helper()
	id, err := store.Record(context.Background(), term, types.Filters{"status": "recruiting"}, sampleResultSet())
	if err != nil {
		t.Fatal(err)
	}
	return id
}

// --- schema tests ---

func TestNewStoreCreatesSchema(t *testing.T) {
	store, _ := testSetup(t)

	tables := []string{"fetches", "records", "records_fts"}
	for _, table := range tables {
		var count int
		err := store.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type IN ('table','view') AND name = ?`, table,
		).Scan(&count)
		if err != nil {
			t.Fatalf("checking table %s: %v", table, err)
		}
		if count == 0 {
			t.Errorf("table %s does not exist", table)
		}
	}
}

func TestNewStoreCreatesDBFile(t *testing.T) {
	store, tmpDir := testSetup(t)
	defer store.Close()

	dbPath := filepath.Join(tmpDir, "history", dbFile)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file not created at %s", dbPath)
	}
}

// --- record tests ---

func TestRecordStoresFetchAndRecords(t *testing.T) {
	store, _ := testSetup(t)
	id := recordHelper(t, store, "aspirin")

	if id <= 0 {
		t.Fatalf("fetch id = %d, want positive", id)
	}

	entries, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	e := entries[0]
	if e.Term != "aspirin" {
		t.Errorf("Term = %q", e.Term)
	}
	if e.RecordCount != 3 {
		t.Errorf("RecordCount = %d, want 3", e.RecordCount)
	}
	if e.TotalConsidered != 7 {
		t.Errorf("TotalConsidered = %d, want 7", e.TotalConsidered)
	}
	if e.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", e.ErrorCount)
	}
	if e.Filters["status"] != "recruiting" {
		t.Errorf("Filters = %v", e.Filters)
	}
	if len(e.Variations) != 2 || e.Variations[0] != "aspirin" {
		t.Errorf("Variations = %v", e.Variations)
	}
	if e.CreatedAt == "" {
		t.Error("CreatedAt is empty")
	}
}

func TestListNewestFirst(t *testing.T) {
	store, _ := testSetup(t)
	recordHelper(t, store, "aspirin")
	recordHelper(t, store, "metformin")

	entries, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Term != "metformin" || entries[1].Term != "aspirin" {
		t.Errorf("order = [%s, %s], want newest first", entries[0].Term, entries[1].Term)
	}
}

func TestListRespectsLimit(t *testing.T) {
	store, _ := testSetup(t)
	for _, term := range []string{"aspirin", "metformin", "ibuprofen"} {
		recordHelper(t, store, term)
	}

	entries, err := store.List(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2", len(entries))
	}
}

// --- full-text search tests ---

func TestRetrieveFullTextSearch(t *testing.T) {
	store, _ := testSetup(t)
	recordHelper(t, store, "aspirin")

	hits, err := store.Retrieve(context.Background(), "cardiovascular", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}

	h := hits[0]
	if h.Source != "pubmed" || h.NaturalKey != "38001234" {
		t.Errorf("hit = %+v", h)
	}
	if h.Term != "aspirin" {
		t.Errorf("Term = %q, want the originating fetch term", h.Term)
	}
}

func TestRetrieveNoMatch(t *testing.T) {
	store, _ := testSetup(t)
	recordHelper(t, store, "aspirin")

	hits, err := store.Retrieve(context.Background(), "quantum", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("got %d hits, want 0", len(hits))
	}
}

func TestRetrieveEmptyQueryReturnsRecent(t *testing.T) {
	store, _ := testSetup(t)
	recordHelper(t, store, "aspirin")

	hits, err := store.Retrieve(context.Background(), "", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Errorf("got %d hits, want 2 most recent", len(hits))
	}
}

func TestRetrieveSpansFetches(t *testing.T) {
	store, _ := testSetup(t)
	recordHelper(t, store, "aspirin")
	recordHelper(t, store, "low-dose aspirin")

	hits, err := store.Retrieve(context.Background(), "prevention", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want one per fetch", len(hits))
	}
	if hits[0].FetchID == hits[1].FetchID {
		t.Error("hits should come from distinct fetches")
	}
}

// --- export tests ---

func TestExportYAML(t *testing.T) {
	store, tmpDir := testSetup(t)
	recordHelper(t, store, "aspirin")

	if err := store.ExportYAML(context.Background()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, "history", "export.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	var entries []ExportEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Term != "aspirin" {
		t.Errorf("Term = %q", e.Term)
	}
	if len(e.Records) != 3 {
		t.Fatalf("got %d records, want 3", len(e.Records))
	}
	keys := make(map[string]bool)
	for _, r := range e.Records {
		keys[r.Source+":"+r.NaturalKey] = true
	}
	for _, want := range []string{"pubmed:38001234", "clinicaltrials:NCT05551234", "pubchem:2244"} {
		if !keys[want] {
			t.Errorf("export missing record %s", want)
		}
	}
}

func TestExportYAMLEmptyStore(t *testing.T) {
	store, tmpDir := testSetup(t)

	if err := store.ExportYAML(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "history", "export.yaml")); err != nil {
		t.Errorf("export.yaml not written for empty store: %v", err)
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists fetch runs and their records to SQLite and
// builds a full-text index over record titles for later retrieval.
// Implements: prd012-history (R1-R4);
//
//	docs/ARCHITECTURE § Request History.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/meshintel/clintra/pkg/types"
)

const dbFile = "clintra.db"

// Store manages the request-history SQLite database.
type Store struct {
	db         *sql.DB
	historyDir string
	maxResults int
}

// NewStore opens or creates the history database at
// historyDir/clintra.db, creating the schema if it does not exist.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.HistoryDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(cfg.HistoryDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		historyDir: cfg.HistoryDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS fetches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			term TEXT NOT NULL,
			filters TEXT,
			variations TEXT,
			total_considered INTEGER NOT NULL DEFAULT 0,
			record_count INTEGER NOT NULL DEFAULT 0,
			error_count INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			fetch_id INTEGER NOT NULL REFERENCES fetches(id),
			source TEXT NOT NULL,
			natural_key TEXT NOT NULL,
			title TEXT,
			url TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_fetch_id ON records(fetch_id)`,
		`CREATE INDEX IF NOT EXISTS idx_records_source ON records(source)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='records_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE records_fts USING fts5(title, content=records, content_rowid=rowid)`,
			`CREATE TRIGGER records_ai AFTER INSERT ON records BEGIN
				INSERT INTO records_fts(rowid, title) VALUES (new.rowid, new.title);
			END`,
			`CREATE TRIGGER records_ad AFTER DELETE ON records BEGIN
				INSERT INTO records_fts(records_fts, rowid, title) VALUES('delete', old.rowid, old.title);
			END`,
			`CREATE TRIGGER records_au AFTER UPDATE ON records BEGIN
				INSERT INTO records_fts(records_fts, rowid, title) VALUES('delete', old.rowid, old.title);
				INSERT INTO records_fts(rowid, title) VALUES (new.rowid, new.title);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Record stores one fetch run and its records. It returns the id of the
// new fetch row.
func (s *Store) Record(ctx context.Context, term string, filters types.Filters, rs types.ResultSet) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	filtersJSON, _ := json.Marshal(filters)
	variationsJSON, _ := json.Marshal(rs.VariationsTried)

	res, err := tx.ExecContext(ctx,
		`INSERT INTO fetches (term, filters, variations, total_considered, record_count, error_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		term, string(filtersJSON), string(variationsJSON),
		rs.TotalConsidered, len(rs.Records), len(rs.Errors),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting fetch: %w", err)
	}

	fetchID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading fetch id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (fetch_id, source, natural_key, title, url)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rs.Records {
		if _, err := stmt.ExecContext(ctx,
			fetchID, r.SourceName(), r.NaturalKey(), r.RecordTitle(), r.URL(),
		); err != nil {
			return 0, fmt.Errorf("inserting record %s:%s: %w", r.SourceName(), r.NaturalKey(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing fetch: %w", err)
	}
	return fetchID, nil
}

// FetchEntry is one row from the fetches table.
type FetchEntry struct {
	ID              int64         `json:"id" yaml:"id"`
	Term            string        `json:"term" yaml:"term"`
	Filters         types.Filters `json:"filters,omitempty" yaml:"filters,omitempty"`
	Variations      []string      `json:"variations,omitempty" yaml:"variations,omitempty"`
	TotalConsidered int           `json:"total_considered" yaml:"total_considered"`
	RecordCount     int           `json:"record_count" yaml:"record_count"`
	ErrorCount      int           `json:"error_count" yaml:"error_count"`
	CreatedAt       string        `json:"created_at" yaml:"created_at"`
}

// List returns recent fetch runs, newest first. A non-positive limit
// uses the store default.
func (s *Store) List(ctx context.Context, limit int) ([]FetchEntry, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, term, filters, variations, total_considered, record_count, error_count, created_at
		 FROM fetches ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing fetches: %w", err)
	}
	defer rows.Close()

	var entries []FetchEntry
	for rows.Next() {
		var (
			e              FetchEntry
			filtersJSON    sql.NullString
			variationsJSON sql.NullString
		)
		if err := rows.Scan(
			&e.ID, &e.Term, &filtersJSON, &variationsJSON,
			&e.TotalConsidered, &e.RecordCount, &e.ErrorCount, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if filtersJSON.Valid {
			json.Unmarshal([]byte(filtersJSON.String), &e.Filters)
		}
		if variationsJSON.Valid {
			json.Unmarshal([]byte(variationsJSON.String), &e.Variations)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// RecordHit is one stored record matched by a full-text query, with the
// fetch it came from.
type RecordHit struct {
	FetchID    int64  `json:"fetch_id" yaml:"fetch_id"`
	Term       string `json:"term" yaml:"term"`
	Source     string `json:"source" yaml:"source"`
	NaturalKey string `json:"natural_key" yaml:"natural_key"`
	Title      string `json:"title" yaml:"title"`
	URL        string `json:"url" yaml:"url"`
	CreatedAt  string `json:"created_at" yaml:"created_at"`
}

// Retrieve runs a full-text query over stored record titles, ranked by
// relevance. An empty query returns the most recent records instead.
func (s *Store) Retrieve(ctx context.Context, query string, limit int) ([]RecordHit, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	var (
		rows *sql.Rows
		err  error
	)
	if query != "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT r.fetch_id, f.term, r.source, r.natural_key, r.title, r.url, f.created_at
			 FROM records_fts
			 JOIN records r ON r.rowid = records_fts.rowid
			 JOIN fetches f ON f.id = r.fetch_id
			 WHERE records_fts MATCH ?
			 ORDER BY records_fts.rank LIMIT ?`, query, limit)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT r.fetch_id, f.term, r.source, r.natural_key, r.title, r.url, f.created_at
			 FROM records r
			 JOIN fetches f ON f.id = r.fetch_id
			 ORDER BY r.rowid DESC LIMIT ?`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var hits []RecordHit
	for rows.Next() {
		var (
			h     RecordHit
			title sql.NullString
			url   sql.NullString
		)
		if err := rows.Scan(&h.FetchID, &h.Term, &h.Source, &h.NaturalKey, &title, &url, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if title.Valid {
			h.Title = title.String
		}
		if url.Valid {
			h.URL = url.String
		}
		hits = append(hits, h)
	}

	return hits, rows.Err()
}

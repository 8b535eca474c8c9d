// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ExportEntry is one fetch run with its stored records.
type ExportEntry struct {
	FetchEntry `yaml:",inline"`
	Records    []ExportRecord `yaml:"records"`
}

// ExportRecord is the persisted shape of one record in an export.
type ExportRecord struct {
	Source     string `yaml:"source"`
	NaturalKey string `yaml:"natural_key"`
	Title      string `yaml:"title,omitempty"`
	URL        string `yaml:"url,omitempty"`
}

const exportLimit = 100000

// ExportYAML writes the full history to historyDir/export.yaml, fetch
// runs newest first with their records nested.
func (s *Store) ExportYAML(ctx context.Context) error {
	fetches, err := s.List(ctx, exportLimit)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, 0, len(fetches))
	for _, f := range fetches {
		e := ExportEntry{FetchEntry: f}

		rows, err := s.db.QueryContext(ctx,
			`SELECT source, natural_key, title, url FROM records WHERE fetch_id = ? ORDER BY rowid`, f.ID)
		if err != nil {
			return fmt.Errorf("querying records for fetch %d: %w", f.ID, err)
		}
		for rows.Next() {
			var r ExportRecord
			if err := rows.Scan(&r.Source, &r.NaturalKey, &r.Title, &r.URL); err != nil {
				rows.Close()
				return fmt.Errorf("scanning record row: %w", err)
			}
			e.Records = append(e.Records, r)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("reading records for fetch %d: %w", f.ID, err)
		}
		rows.Close()

		entries = append(entries, e)
	}

	path := filepath.Join(s.historyDir, "export.yaml")
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources implements connectors for the biomedical data APIs:
// PubMed, ClinicalTrials.gov, PubChem, RCSB PDB, KEGG, DrugBank, ChEMBL
// and UniProt. Each connector normalizes its API's response into a
// types.Record variant; the Connector wrapper adds the uniform
// error-absorbing fallback layer the fanout relies on.
// Implements: prd010-fanout (R2);
//
//	docs/ARCHITECTURE § Sources.
package sources

import (
	"context"
	"fmt"

	"github.com/meshintel/clintra/pkg/types"
)

// notAvailable is the placeholder for fields a source did not return.
// Downstream formatting and the enrichment prompt rely on the exact
// string.
const notAvailable = "not available"

// Source searches one external biomedical API. Implementations return
// at most max records; they report errors rather than absorbing them,
// leaving degradation to the Connector wrapper.
type Source interface {
	Name() string
	Search(ctx context.Context, term string, max int, f types.Filters) ([]types.Record, error)
}

// Connector pairs a Source with its static fallback set. Search never
// fails: an error from the underlying source is reported through onErr
// and replaced by the fallback records, so one misbehaving API degrades
// a single source instead of the whole fanout.
type Connector struct {
	Source   Source
	Fallback func(term string, max int) []types.Record
}

// Name returns the underlying source identifier.
func (c Connector) Name() string { return c.Source.Name() }

// Search runs the underlying source and degrades to the fallback set on
// error. onErr may be nil.
func (c Connector) Search(ctx context.Context, term string, max int, f types.Filters, onErr func(error)) []types.Record {
	records, err := c.Source.Search(ctx, term, max, f)
	if err == nil {
		return records
	}
	if onErr != nil {
		onErr(fmt.Errorf("%s: %w", c.Source.Name(), err))
	}
	if c.Fallback == nil {
		return nil
	}
	return c.Fallback(term, max)
}

// orNotAvailable substitutes the placeholder for empty fields.
func orNotAvailable(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

// capRecords truncates records to max when max is positive.
func capRecords(records []types.Record, max int) []types.Record {
	if max > 0 && len(records) > max {
		return records[:max]
	}
	return records
}

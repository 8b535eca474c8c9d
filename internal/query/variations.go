// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query turns a raw free-text research question into an ordered
// list of search variations. Variations widen recall against the
// upstream biomedical APIs: the original term always comes first,
// followed by a cleaned form and static per-category expansions, then
// any AI-proposed additions. Implements: prd009-variations (R1-R4);
//
//	docs/ARCHITECTURE § Query Variations.
package query

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// MaxVariations caps the variation list. Sources are fanned out per
// variation, so the cap bounds outbound request volume.
const MaxVariations = 5

const maxTermLength = 500

// ValidationError reports a caller-supplied term the pipeline refuses
// to search. It is the one error class surfaced to the caller instead
// of being absorbed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid query: " + e.Reason
}

// Validate rejects empty, oversized, or markup-bearing terms (R1.2).
func Validate(term string) error {
	if strings.TrimSpace(term) == "" {
		return &ValidationError{Reason: "term is empty"}
	}
	if len(term) > maxTermLength {
		return &ValidationError{Reason: fmt.Sprintf("term exceeds %d characters", maxTermLength)}
	}
	if strings.ContainsAny(term, "<>") {
		return &ValidationError{Reason: "term contains markup characters"}
	}
	return nil
}

// Expander proposes additional variations for a term, typically via a
// text-completion service. The static variations already derived are
// passed in so the expander can avoid repeating them.
type Expander interface {
	Expand(ctx context.Context, term string, static []string) ([]string, error)
}

// Generator derives search variations. The zero value works: no
// expander, default cap, discarded diagnostics.
type Generator struct {
	// Expander is optional. When nil, or when Expand fails, Generate
	// returns only the static variations (R3.1).
	Expander Expander

	// MaxVariations overrides the default cap when positive.
	MaxVariations int

	// W receives diagnostics. Nil means discard.
	W io.Writer
}

// Generate returns up to MaxVariations deduplicated search strings for
// term, the original term first. domainHint, when non-empty, is folded
// into the cleaned term before category expansion so "aspirin" with
// hint "inflammation" still triggers the NSAID table. The result is
// deterministic whenever Expander is nil.
func (g *Generator) Generate(ctx context.Context, term, domainHint string) ([]string, error) {
	if err := Validate(term); err != nil {
		return nil, err
	}

	original := strings.TrimSpace(term)
	cleaned := cleanTerm(original)
	if cleaned == "" {
		cleaned = strings.ToLower(original)
	}

	candidates := []string{original, cleaned}

	expansionSeed := cleaned
	if hint := strings.ToLower(strings.TrimSpace(domainHint)); hint != "" && !strings.Contains(expansionSeed, hint) {
		expansionSeed = expansionSeed + " " + hint
	}
	candidates = append(candidates, categoryExpansions(expansionSeed)...)

	if g.Expander != nil {
		extra, err := g.Expander.Expand(ctx, original, candidates)
		if err != nil {
			// The expander is an enhancement, never a dependency.
			if g.W != nil {
				fmt.Fprintf(g.W, "warning: variation expander failed: %v\n", err)
			}
		} else {
			candidates = append(candidates, extra...)
		}
	}

	max := g.MaxVariations
	if max <= 0 {
		max = MaxVariations
	}

	seen := make(map[string]bool)
	var out []string
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		key := strings.ToLower(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
		if len(out) >= max {
			break
		}
	}
	return out, nil
}

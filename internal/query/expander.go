// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"context"
	"fmt"
	"strings"
)

// Completer is the slice of the inference provider the expander needs.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// ProviderExpander asks an inference provider for additional query
// variations. Failures are the caller's to swallow; the static
// variations always stand on their own.
type ProviderExpander struct {
	Provider Completer

	// MaxTokens caps the completion; 0 means a small default.
	MaxTokens int
}

const expanderMaxTokens = 200

// Expand returns provider-proposed variations for term, excluding any
// that duplicate the static set.
func (e *ProviderExpander) Expand(ctx context.Context, term string, static []string) ([]string, error) {
	maxTokens := e.MaxTokens
	if maxTokens <= 0 {
		maxTokens = expanderMaxTokens
	}

	prompt := fmt.Sprintf(
		"Suggest up to 3 alternative search phrasings for the biomedical query %q. "+
			"Reply with one phrasing per line, no numbering, no commentary.", term)

	text, err := e.Provider.Complete(ctx, prompt, maxTokens)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(static))
	for _, s := range static {
		seen[strings.ToLower(s)] = true
	}

	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*0123456789. "))
		if line == "" || len(line) > maxTermLength {
			continue
		}
		if seen[strings.ToLower(line)] {
			continue
		}
		seen[strings.ToLower(line)] = true
		out = append(out, line)
	}
	return out, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich turns an aggregated result set into a short research
// summary via an external inference provider. Rate-limited calls are
// retried with backoff, a secondary provider covers primary outages,
// and a templated summary built from record counts guarantees the
// caller always receives text. Implements: prd011-enrichment (R1-R4);
//
//	docs/ARCHITECTURE § Enrichment.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/meshintel/clintra/internal/httputil"
	"github.com/meshintel/clintra/pkg/types"
)

// Provider produces a text completion for a prompt.
type Provider interface {
	// Label identifies the provider in diagnostics and in
	// EnrichedSummary.ModelUsed.
	Label() string

	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// CompletionProvider calls an OpenAI-compatible chat-completions
// endpoint. Cerebras and OpenAI both speak this shape, so one
// implementation covers the primary and the secondary.
type CompletionProvider struct {
	// BaseURL is the full chat-completions endpoint URL.
	BaseURL string

	APIKey      string
	Model       string
	Temperature float64

	// MaxRetries bounds 429 retries; 0 means the shared default.
	MaxRetries int

	Client    *http.Client
	UserAgent string
}

// Label returns the model identifier.
func (p *CompletionProvider) Label() string { return p.Model }

// Complete sends the prompt and returns the completion text. HTTP 429
// responses are retried with exponential backoff before failing.
func (p *CompletionProvider) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	reqBody := chatRequest{
		Model:       p.Model,
		MaxTokens:   maxTokens,
		Temperature: p.Temperature,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, p.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("calling %s: %w", p.Model, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%s returned HTTP %d: %s", p.Model, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decoding %s response: %w", p.Model, err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", p.Model)
	}
	return cr.Choices[0].Message.Content, nil
}

// Summarizer runs the provider chain: primary, then secondary, then the
// templated fallback. Either provider may be nil.
type Summarizer struct {
	Primary   Provider
	Secondary Provider

	// W receives diagnostics. Nil means discard.
	W io.Writer
}

// Summarize produces an enriched summary for the result set. It never
// fails: when every provider errors out or returns empty text, the
// templated count-based summary is returned with FallbackUsed set.
func (s *Summarizer) Summarize(ctx context.Context, rs types.ResultSet, term, instructions string, maxTokens int) types.EnrichedSummary {
	prompt, err := renderPrompt(rs, term, instructions)
	if err == nil {
		for _, p := range []Provider{s.Primary, s.Secondary} {
			if p == nil {
				continue
			}
			text, err := p.Complete(ctx, prompt, maxTokens)
			if err != nil {
				s.warnf("provider %s failed: %v", p.Label(), err)
				continue
			}
			text = finalize(text)
			if text == "" {
				s.warnf("provider %s returned empty text", p.Label())
				continue
			}
			if !hasSummarySection(text) {
				text += "\n\n" + closingSummary(rs, term)
			}
			return types.EnrichedSummary{
				Text:         text,
				ModelUsed:    p.Label(),
				FallbackUsed: false,
			}
		}
	} else {
		s.warnf("rendering prompt: %v", err)
	}

	return types.EnrichedSummary{
		Text:         templatedSummary(rs, term),
		ModelUsed:    "template",
		FallbackUsed: true,
	}
}

func (s *Summarizer) warnf(format string, args ...any) {
	if s.W != nil {
		fmt.Fprintf(s.W, "warning: "+format+"\n", args...)
	}
}

// closingSummary is the templated short-summary section appended when a
// completion ends without one.
func closingSummary(rs types.ResultSet, term string) string {
	sources := make(map[string]bool)
	for _, r := range rs.Records {
		sources[r.SourceName()] = true
	}
	return fmt.Sprintf("In summary, %d records from %d sources were aggregated for %q.",
		len(rs.Records), len(sources), term)
}

// templatedSummary builds a deterministic summary from record counts,
// used when no provider is reachable.
func templatedSummary(rs types.ResultSet, term string) string {
	counts := make(map[string]int)
	for _, r := range rs.Records {
		counts[r.SourceName()]++
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "Aggregated %d records for %q across %d sources.", len(rs.Records), term, len(counts))
	for _, name := range names {
		fmt.Fprintf(&b, " %s: %d.", name, counts[name])
	}
	if len(rs.Errors) > 0 {
		fmt.Fprintf(&b, " %d source calls degraded to fallback data.", len(rs.Errors))
	}
	b.WriteString(" An AI-generated summary was not available for this request.")
	return b.String()
}

// OpenAI-compatible chat-completions JSON structures.
type chatRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

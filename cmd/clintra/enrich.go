// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/meshintel/clintra/internal/enrich"
	"github.com/meshintel/clintra/internal/fanout"
	"github.com/meshintel/clintra/pkg/types"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Summarize a saved result set with an inference provider",
	Long: `Enrich reads a result file written by fetch --save and produces a short
research summary. The primary provider is tried first with rate-limit
retries, then the secondary; when both fail, a deterministic summary is
built from the record counts so the command always produces text.`,
	RunE: runEnrich,
}

func runEnrich(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		return fmt.Errorf("result file required: use --file")
	}

	rf, err := fanout.ReadResultsFile(path)
	if err != nil {
		return fmt.Errorf("reading results: %w", err)
	}
	rs := rf.ToResultSet()
	if len(rs.Records) == 0 {
		return fmt.Errorf("no records in %s", path)
	}

	cfg := loadPipelineConfig()
	if maxTokens, _ := cmd.Flags().GetInt("max-tokens"); maxTokens > 0 {
		cfg.Enrich.MaxTokens = maxTokens
	}
	instructions, _ := cmd.Flags().GetString("instructions")

	s := newSummarizer(cfg.Enrich)
	summary := s.Summarize(context.Background(), rs, rf.Query.Term, instructions, cfg.Enrich.MaxTokens)
	printSummary(summary)
	return nil
}

// newProvider builds one chat-completions provider, or nil when no API
// key is configured for it.
func newProvider(pc types.ProviderConfig, ec types.EnrichConfig) *enrich.CompletionProvider {
	if pc.APIKey == "" {
		return nil
	}
	return &enrich.CompletionProvider{
		BaseURL:     pc.BaseURL,
		APIKey:      pc.APIKey,
		Model:       pc.Model,
		Temperature: ec.Temperature,
		MaxRetries:  ec.MaxRetries,
		Client:      &http.Client{Timeout: ec.Timeout},
		UserAgent:   ec.UserAgent,
	}
}

func newSummarizer(ec types.EnrichConfig) *enrich.Summarizer {
	s := &enrich.Summarizer{W: os.Stderr}
	if p := newProvider(ec.Primary, ec); p != nil {
		s.Primary = p
	}
	if p := newProvider(ec.Secondary, ec); p != nil {
		s.Secondary = p
	}
	return s
}

func printSummary(summary types.EnrichedSummary) {
	fmt.Println()
	fmt.Println(summary.Text)
	if summary.FallbackUsed {
		fmt.Fprintf(os.Stderr, "\nwarning: no inference provider reachable, summary is templated\n")
	} else {
		fmt.Fprintf(os.Stderr, "\nSummary by %s\n", summary.ModelUsed)
	}
}

func init() {
	enrichCmd.Flags().String("file", "", "result file written by fetch --save")
	enrichCmd.Flags().String("instructions", "", "extra instructions for the summary")
	enrichCmd.Flags().Int("max-tokens", 0, "completion token cap (0 = config default)")

	rootCmd.AddCommand(enrichCmd)
}

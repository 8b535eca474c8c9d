// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meshintel/clintra/internal/cache"
	"github.com/meshintel/clintra/internal/fanout"
	"github.com/meshintel/clintra/internal/history"
	"github.com/meshintel/clintra/internal/query"
	"github.com/meshintel/clintra/internal/ratelimit"
	"github.com/meshintel/clintra/internal/sources"
	"github.com/meshintel/clintra/pkg/types"
)

// defaultSources are the connectors enabled when the config and flags
// name none.
var defaultSources = []string{"pubmed", "clinicaltrials", "pubchem", "pdb", "kegg", "drugbank"}

var fetchCmd = &cobra.Command{
	Use:   "fetch [query]",
	Short: "Query biomedical sources and aggregate the results",
	Long: `Fetch runs a search term through the query-variation generator, fans the
variations out to the enabled source connectors, deduplicates the records,
and prints them as a table or JSON. Failing sources degrade to built-in
reference data and are reported as warnings, never as a failed run.

Use --save to write the result set to a YAML file for later enrichment,
and --record to log the run in the local history database.`,
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	term, _ := cmd.Flags().GetString("query")
	if term == "" && len(args) > 0 {
		term = strings.Join(args, " ")
	}
	if term == "" {
		return fmt.Errorf("query required: pass it as an argument or with --query")
	}

	cfg := loadPipelineConfig()
	applyFetchFlags(cmd, &cfg.Fanout)

	filters := filtersFromFlags(cmd)
	maxResults, _ := cmd.Flags().GetInt("max-results")

	client := &http.Client{Timeout: cfg.Fanout.Timeout}

	f := &fanout.Fetcher{
		Connectors: buildConnectors(cfg.Fanout, client),
		Generator:  buildGenerator(cfg, client),
		MaxResults: cfg.Fanout.MaxResults,
		W:          os.Stderr,
	}

	noCache, _ := cmd.Flags().GetBool("no-cache")
	if !noCache && cfg.Fanout.CacheTTL > 0 {
		f.Cache = cache.New(cfg.Fanout.CacheTTL)
	}

	rs, err := f.Fetch(context.Background(), term, maxResults, filters)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		if err := fanout.FormatJSON(rs, os.Stdout); err != nil {
			return err
		}
	} else {
		fanout.FormatTable(rs, os.Stdout)
	}

	if savePath, _ := cmd.Flags().GetString("save"); savePath != "" {
		if err := fanout.WriteResultsFile(savePath, term, filters, maxResults, rs); err != nil {
			return fmt.Errorf("saving results: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Saved results to %s\n", savePath)
	}

	if record, _ := cmd.Flags().GetBool("record"); record {
		store, err := history.NewStore(cfg.History)
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer store.Close()
		if _, err := store.Record(context.Background(), term, filters, rs); err != nil {
			return fmt.Errorf("recording history: %w", err)
		}
	}

	if doEnrich, _ := cmd.Flags().GetBool("enrich"); doEnrich {
		s := newSummarizer(cfg.Enrich)
		summary := s.Summarize(context.Background(), rs, term, "", cfg.Enrich.MaxTokens)
		printSummary(summary)
	}

	return nil
}

// applyFetchFlags overrides config values with flags set on the command.
func applyFetchFlags(cmd *cobra.Command, cfg *types.FanoutConfig) {
	if cmd.Flags().Changed("sources") {
		list, _ := cmd.Flags().GetString("sources")
		cfg.Sources = nil
		for _, name := range strings.Split(list, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cfg.Sources = append(cfg.Sources, strings.ToLower(name))
			}
		}
	}
	if cmd.Flags().Changed("ai-variations") {
		cfg.AIVariations, _ = cmd.Flags().GetBool("ai-variations")
	}
}

func filtersFromFlags(cmd *cobra.Command) types.Filters {
	f := types.Filters{}
	for _, key := range []string{"status", "phase", "from", "to", "organism", "domain"} {
		if v, _ := cmd.Flags().GetString(key); v != "" {
			f[key] = v
		}
	}
	if reviewed, _ := cmd.Flags().GetBool("reviewed"); reviewed {
		f["reviewed"] = "true"
	}
	if len(f) == 0 {
		return nil
	}
	return f
}

// buildConnectors assembles one connector per enabled source, each with
// its own rate limiter so concurrent variations still honor the
// per-source request delay.
func buildConnectors(cfg types.FanoutConfig, client *http.Client) []sources.Connector {
	enabled := cfg.Sources
	if len(enabled) == 0 {
		enabled = defaultSources
	}

	var connectors []sources.Connector
	for _, name := range enabled {
		limiter := ratelimit.NewInterval(cfg.RequestDelay)

		var src interface {
			sources.Source
			Fallback(term string, max int) []types.Record
		}

		switch name {
		case "pubmed":
			src = &sources.PubMed{Client: client, UserAgent: cfg.UserAgent, APIKey: cfg.NCBIAPIKey, Limiter: limiter}
		case "clinicaltrials":
			src = &sources.Trials{Client: client, UserAgent: cfg.UserAgent, Limiter: limiter}
		case "pubchem":
			src = &sources.PubChem{Client: client, UserAgent: cfg.UserAgent, Limiter: limiter}
		case "pdb":
			src = &sources.PDB{Client: client, UserAgent: cfg.UserAgent, Limiter: limiter}
		case "kegg":
			src = &sources.KEGG{Client: client, UserAgent: cfg.UserAgent, Limiter: limiter}
		case "drugbank":
			src = &sources.DrugBank{Client: client, UserAgent: cfg.UserAgent, APIKey: cfg.DrugBankAPIKey, Limiter: limiter}
		case "chembl":
			src = &sources.ChEMBL{Client: client, UserAgent: cfg.UserAgent, Limiter: limiter}
		case "uniprot":
			src = &sources.UniProt{Client: client, UserAgent: cfg.UserAgent, Limiter: limiter}
		default:
			fmt.Fprintf(os.Stderr, "warning: unknown source %q skipped\n", name)
			continue
		}

		connectors = append(connectors, sources.Connector{Source: src, Fallback: src.Fallback})
	}
	return connectors
}

// buildGenerator wires the variation generator, with the primary
// inference provider as expander when AI variations are enabled.
func buildGenerator(cfg types.PipelineConfig, client *http.Client) *query.Generator {
	g := &query.Generator{W: os.Stderr}
	if cfg.Fanout.AIVariations && cfg.Enrich.Primary.APIKey != "" {
		g.Expander = &query.ProviderExpander{
			Provider: newProvider(cfg.Enrich.Primary, cfg.Enrich),
		}
	}
	return g
}

func init() {
	fetchCmd.Flags().String("query", "", "search term (alternative to positional argument)")
	fetchCmd.Flags().String("sources", "", "comma-separated source list (default: "+strings.Join(defaultSources, ",")+")")
	fetchCmd.Flags().Int("max-results", 0, "maximum unique records to return (0 = config default)")
	fetchCmd.Flags().String("status", "", "clinical trial status filter (e.g. recruiting)")
	fetchCmd.Flags().String("phase", "", "clinical trial phase filter (e.g. phase3)")
	fetchCmd.Flags().String("from", "", "publication date range start (YYYY-MM-DD)")
	fetchCmd.Flags().String("to", "", "publication date range end (YYYY-MM-DD)")
	fetchCmd.Flags().String("organism", "", "organism filter for protein and pathway sources")
	fetchCmd.Flags().Bool("reviewed", false, "restrict UniProt results to reviewed entries")
	fetchCmd.Flags().String("domain", "", "domain hint for query variations (e.g. inflammation)")
	fetchCmd.Flags().Bool("json", false, "output results as JSON")
	fetchCmd.Flags().String("save", "", "write the result set to a YAML file")
	fetchCmd.Flags().Bool("record", false, "log this fetch in the history database")
	fetchCmd.Flags().Bool("enrich", false, "append an AI-generated summary")
	fetchCmd.Flags().Bool("no-cache", false, "bypass the in-process result cache")
	fetchCmd.Flags().Bool("ai-variations", false, "ask the inference provider for extra query variations")

	rootCmd.AddCommand(fetchCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meshintel/clintra/internal/history"
	"github.com/meshintel/clintra/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the local fetch history (list, retrieve, export)",
	Long: `History manages a local SQLite log of fetch runs. Use subcommands to
list recent runs, search stored record titles, or export everything.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent fetch runs",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := store.List(context.Background(), limit)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No fetch runs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-30s  %-7s  %-10s  %-6s  %s\n",
		"ID", "Term", "Records", "Considered", "Errors", "When")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))

	for _, e := range entries {
		term := e.Term
		if len(term) > 30 {
			term = term[:27] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-30s  %-7d  %-10d  %-6d  %s\n",
			e.ID, term, e.RecordCount, e.TotalConsidered, e.ErrorCount, e.CreatedAt)
	}

	fmt.Fprintf(os.Stdout, "\n%d runs\n", len(entries))
	return nil
}

// --- retrieve subcommand ---

var historyRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Search stored record titles with full-text search",
	Long: `Retrieve searches the titles of every record ever fetched using FTS5.
With no query it shows the most recently stored records.`,
	RunE: runHistoryRetrieve,
}

func runHistoryRetrieve(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}
	limit, _ := cmd.Flags().GetInt("limit")

	hits, err := store.Retrieve(context.Background(), queryText, limit)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	if len(hits) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-14s  %-14s  %-44s  %s\n",
		"Run", "Source", "Key", "Title", "Term")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for _, h := range hits {
		title := h.Title
		if len(title) > 44 {
			title = title[:41] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-14s  %-14s  %-44s  %s\n",
			h.FetchID, h.Source, h.NaturalKey, title, h.Term)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(hits))
	return nil
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the fetch history to YAML",
	RunE:  runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.ExportYAML(context.Background()); err != nil {
		return err
	}
	dir, _ := cmd.Flags().GetString("history-dir")
	fmt.Printf("Exported to %s\n", filepath.Join(dir, "export.yaml"))
	return nil
}

// --- shared helpers ---

func openHistory(cmd *cobra.Command) (*history.Store, error) {
	dir, _ := cmd.Flags().GetString("history-dir")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	cfg := loadPipelineConfig().History
	if dir != "" {
		cfg.HistoryDir = dir
	}
	if maxResults > 0 {
		cfg.MaxResults = maxResults
	}
	return history.NewStore(types.HistoryConfig{
		HistoryDir: cfg.HistoryDir,
		MaxResults: cfg.MaxResults,
	})
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	historyCmd.PersistentFlags().String("history-dir", "history", "directory holding the history database")
	historyCmd.PersistentFlags().Int("max-results", 0, "default maximum query results (0 = config default)")

	historyListCmd.Flags().Int("limit", 0, "maximum runs to list (0 = default)")
	historyListCmd.Flags().Bool("json", false, "output as JSON")

	historyRetrieveCmd.Flags().String("query", "", "full-text search query over record titles")
	historyRetrieveCmd.Flags().Int("limit", 0, "maximum results (0 = default)")
	historyRetrieveCmd.Flags().Bool("json", false, "output as JSON")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyRetrieveCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}

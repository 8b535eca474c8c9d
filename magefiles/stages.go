//go:build mage

package main

import "fmt"

// Fetch describes the multi-source aggregation stage.
// See prd010-fanout for full requirements.
func Fetch() error {
	fmt.Println("[fetch] Run a search term through query variations and the source connectors.")
	fmt.Println("[fetch] Use bin/clintra fetch <query>.")
	return nil
}

// Enrich describes the summarization stage.
// See prd011-enrichment for full requirements.
func Enrich() error {
	fmt.Println("[enrich] Summarize a saved result set with an inference provider.")
	fmt.Println("[enrich] Use bin/clintra enrich --file results/<name>.yaml.")
	return nil
}

// History describes the local request log.
// See prd012-history for full requirements.
func History() error {
	fmt.Println("[history] List, search, and export recorded fetch runs.")
	fmt.Println("[history] Use bin/clintra history list|retrieve|export.")
	return nil
}

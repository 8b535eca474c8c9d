// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"regexp"
	"strings"
)

// boilerplatePrefixes are assistant-style lead-ins that leak the prompt
// framing into the summary. Lines starting with one of these are dropped.
var boilerplatePrefixes = []string{
	"sure,",
	"sure!",
	"certainly",
	"of course",
	"here is a summary",
	"here's a summary",
	"here is the summary",
	"as an ai",
	"as a language model",
	"i hope this helps",
	"let me know if",
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

// finalize cleans a provider completion: boilerplate lines go, blank
// runs collapse, and the text ends with terminal punctuation. An empty
// result signals the caller to try the next provider.
func finalize(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if isBoilerplate(line) {
			continue
		}
		kept = append(kept, strings.TrimRight(line, " \t"))
	}

	out := strings.TrimSpace(strings.Join(kept, "\n"))
	out = blankRuns.ReplaceAllString(out, "\n\n")
	if out == "" {
		return ""
	}

	switch out[len(out)-1] {
	case '.', '!', '?', ':':
	default:
		out += "."
	}
	return out
}

// summaryMarkers identify a closing summary passage in the final
// paragraph of a completion.
var summaryMarkers = []string{
	"in summary",
	"in conclusion",
	"to summarize",
	"overall,",
	"taken together",
}

// hasSummarySection reports whether the text already ends with a
// summary passage.
func hasSummarySection(text string) bool {
	last := text
	if i := strings.LastIndex(text, "\n\n"); i >= 0 {
		last = text[i+2:]
	}
	last = strings.ToLower(last)
	for _, marker := range summaryMarkers {
		if strings.Contains(last, marker) {
			return true
		}
	}
	return false
}

func isBoilerplate(line string) bool {
	l := strings.ToLower(strings.TrimSpace(line))
	for _, prefix := range boilerplatePrefixes {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}

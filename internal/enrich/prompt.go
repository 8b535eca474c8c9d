// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/meshintel/clintra/pkg/types"
)

// maxDetailLen bounds the per-record detail included in the prompt so a
// handful of long abstracts cannot crowd out the rest of the result set.
const maxDetailLen = 600

// summaryPromptTmpl is the prompt sent to the inference provider. It
// instructs the model to synthesize the aggregated records into a short
// research summary without inventing records that are not listed.
var summaryPromptTmpl = template.Must(template.New("summary").Parse(`You are a biomedical research assistant. Summarize the following aggregated search results for the query "{{.Term}}".

Write 2-4 paragraphs covering: the main findings across the literature, any clinical trial activity, and relevant compounds, structures, pathways or proteins. Base every statement on the records listed below; do not invent records. Use plain prose without markdown headings.
{{if .Instructions}}
Additional instructions: {{.Instructions}}
{{end}}
Records ({{.Count}} total):
{{range .Entries}}
- {{.}}
{{end}}`))

type promptData struct {
	Term         string
	Instructions string
	Count        int
	Entries      []string
}

// renderPrompt builds the summary prompt from a result set.
func renderPrompt(rs types.ResultSet, term, instructions string) (string, error) {
	data := promptData{
		Term:         term,
		Instructions: instructions,
		Count:        len(rs.Records),
	}
	for _, r := range rs.Records {
		data.Entries = append(data.Entries, recordDetail(r))
	}

	var buf bytes.Buffer
	if err := summaryPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// recordDetail renders one record as a prompt line, variant fields
// included where they help the model.
func recordDetail(r types.Record) string {
	var detail string
	switch v := r.(type) {
	case types.Article:
		detail = fmt.Sprintf("[pubmed %s] %s — %s (%s, %s)", v.PMID, v.Title, v.Abstract, v.Journal, v.PubDate)
	case types.Trial:
		detail = fmt.Sprintf("[trial %s] %s — status %s, phase %s, conditions: %s",
			v.NCTID, v.Title, v.Status, v.Phase, strings.Join(v.Conditions, ", "))
	case types.Compound:
		detail = fmt.Sprintf("[%s %s] %s — formula %s, weight %s", v.Database, v.CID, v.Name, v.MolecularFormula, v.MolecularWeight)
	case types.Structure:
		detail = fmt.Sprintf("[pdb %s] %s — %s at %s", v.PDBID, v.Title, v.Method, v.Resolution)
	case types.Pathway:
		detail = fmt.Sprintf("[kegg %s] %s", v.PathwayID, v.Name)
	case types.Drug:
		detail = fmt.Sprintf("[drugbank %s] %s — %s (%s)", v.DrugBankID, v.Name, v.Description, v.ApprovalStatus)
	case types.Protein:
		detail = fmt.Sprintf("[uniprot %s] %s — %s, %d aa", v.Accession, v.ProteinName, v.Organism, v.Length)
	default:
		detail = fmt.Sprintf("[%s %s] %s", r.SourceName(), r.NaturalKey(), r.RecordTitle())
	}

	if len(detail) > maxDetailLen {
		detail = detail[:maxDetailLen-3] + "..."
	}
	return detail
}

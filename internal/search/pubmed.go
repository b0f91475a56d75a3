// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/litfetch/internal/httputil"
	"github.com/pdiddy/litfetch/pkg/types"
)

// pubmedBase is the NCBI E-utilities root. Declared as a var so tests can
// substitute an httptest server.
var pubmedBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// pubmedMinYear is the lower bound used when only an end year is given.
const pubmedMinYear = 1900

// PubMedSource queries PubMed through E-utilities: esearch for IDs, then
// a single efetch for the records.
type PubMedSource struct {
	Getter *httputil.Getter
	// Email and APIKey are forwarded to NCBI; both are optional.
	Email  string
	APIKey string
	Log    io.Writer

	// now supplies the current year for open-ended ranges; tests pin it.
	now func() time.Time
}

// Name returns the source identifier.
func (s *PubMedSource) Name() types.Source { return types.SourcePubMed }

// Search runs the two-phase protocol. An empty ID list returns no records
// without issuing efetch.
func (s *PubMedSource) Search(ctx context.Context, q Query) ([]types.Paper, error) {
	ids, err := s.searchIDs(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []types.Paper{}, nil
	}
	return s.fetch(ctx, ids)
}

// Term builds the esearch term, appending a [pdat] range when either year
// bound is set.
func (s *PubMedSource) Term(q Query) string {
	if !q.HasYearRange() {
		return q.Text
	}
	start := q.StartYear
	if start <= 0 {
		start = pubmedMinYear
	}
	end := q.EndYear
	if end <= 0 {
		end = s.currentYear()
	}
	return fmt.Sprintf("%s AND %d:%d[pdat]", q.Text, start, end)
}

func (s *PubMedSource) currentYear() int {
	if s.now != nil {
		return s.now().Year()
	}
	return time.Now().Year()
}

func (s *PubMedSource) params(v url.Values) url.Values {
	v.Set("db", "pubmed")
	if s.Email != "" {
		v.Set("email", s.Email)
	}
	if s.APIKey != "" {
		v.Set("api_key", s.APIKey)
	}
	return v
}

type esearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

func (s *PubMedSource) searchIDs(ctx context.Context, q Query) ([]string, error) {
	params := s.params(url.Values{
		"term":    {s.Term(q)},
		"retmax":  {strconv.Itoa(q.MaxResults)},
		"retmode": {"json"},
	})

	resp, err := s.Getter.GetOK(ctx, types.SourcePubMed, pubmedBase+"/esearch.fcgi?"+params.Encode(), "application/json")
	if err != nil {
		return nil, fmt.Errorf("PubMed esearch: %w", err)
	}
	defer resp.Body.Close()

	var es esearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&es); err != nil {
		return nil, fmt.Errorf("parsing PubMed esearch response: %w", err)
	}

	ids := es.ESearchResult.IDList
	if q.MaxResults > 0 && len(ids) > q.MaxResults {
		ids = ids[:q.MaxResults]
	}
	return ids, nil
}

func (s *PubMedSource) fetch(ctx context.Context, ids []string) ([]types.Paper, error) {
	params := s.params(url.Values{
		"id":      {strings.Join(ids, ",")},
		"retmode": {"xml"},
	})

	resp, err := s.Getter.GetOK(ctx, types.SourcePubMed, pubmedBase+"/efetch.fcgi?"+params.Encode(), "application/xml")
	if err != nil {
		return nil, fmt.Errorf("PubMed efetch: %w", err)
	}
	defer resp.Body.Close()

	// Decode article by article so one bad entry does not lose the rest.
	dec := xml.NewDecoder(resp.Body)
	papers := make([]types.Paper, 0, len(ids))
	index := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing PubMed efetch response: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "PubmedArticle" {
			continue
		}

		var a pubmedArticle
		if err := dec.DecodeElement(&a, &start); err != nil {
			return nil, fmt.Errorf("parsing PubMed efetch response: %w", err)
		}
		p, err := parsePubmedArticle(a)
		if err != nil {
			logf(s.Log, "warning: skipping PubMed article %d: %v\n", index, err)
		} else {
			papers = append(papers, p)
		}
		index++
	}
	return papers, nil
}

// PubMed efetch XML structures (namespace-free).
type pubmedArticle struct {
	Citation struct {
		PMID    []string `xml:"PMID"`
		Article struct {
			Journal struct {
				Title   xmlText `xml:"Title"`
				PubDate struct {
					Year        string `xml:"Year"`
					MedlineDate string `xml:"MedlineDate"`
				} `xml:"JournalIssue>PubDate"`
			} `xml:"Journal"`
			Title    xmlText        `xml:"ArticleTitle"`
			Abstract []xmlText      `xml:"Abstract>AbstractText"`
			Authors  []pubmedAuthor `xml:"AuthorList>Author"`
		} `xml:"Article"`
		Keywords []xmlText `xml:"KeywordList>Keyword"`
	} `xml:"MedlineCitation"`
	ArticleIDs []pubmedArticleID `xml:"PubmedData>ArticleIdList>ArticleId"`
}

type pubmedAuthor struct {
	LastName string `xml:"LastName"`
	ForeName string `xml:"ForeName"`
}

type pubmedArticleID struct {
	Type  string `xml:"IdType,attr"`
	Value string `xml:",chardata"`
}

func parsePubmedArticle(a pubmedArticle) (types.Paper, error) {
	c := a.Citation
	if len(c.PMID) == 0 || strings.TrimSpace(c.PMID[0]) == "" {
		return types.Paper{}, fmt.Errorf("article has no PMID")
	}
	pmid := strings.TrimSpace(c.PMID[0])

	p := types.Paper{
		Title:   c.Article.Title.String(),
		Journal: c.Article.Journal.Title.String(),
		PMID:    pmid,
		Source:  types.SourcePubMed,
	}

	for _, au := range c.Article.Authors {
		last := strings.TrimSpace(au.LastName)
		if last == "" {
			continue
		}
		if fore := strings.TrimSpace(au.ForeName); fore != "" {
			last = fore + " " + last
		}
		p.Authors = append(p.Authors, last)
	}
	p.Authors = types.CapAuthors(p.Authors)

	var paragraphs []string
	for _, t := range c.Article.Abstract {
		if s := t.String(); s != "" {
			paragraphs = append(paragraphs, s)
		}
	}
	p.Abstract = strings.Join(paragraphs, " ")

	p.Year = strings.TrimSpace(c.Article.Journal.PubDate.Year)
	if p.Year == "" {
		p.Year = leadingYear(c.Article.Journal.PubDate.MedlineDate)
	}

	for _, id := range a.ArticleIDs {
		if id.Type == "doi" {
			p.DOI = strings.TrimSpace(id.Value)
			break
		}
	}

	for _, kw := range c.Keywords {
		if s := kw.String(); s != "" {
			p.Keywords = append(p.Keywords, s)
		}
	}
	return p, nil
}

// leadingYear returns the first four characters of a MedlineDate such as
// "1998 Dec-1999 Jan" when they are digits.
func leadingYear(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 4 {
		return ""
	}
	if _, err := strconv.Atoi(s[:4]); err != nil {
		return ""
	}
	return s[:4]
}

// xmlText collects all character data inside an element, including text
// nested in inline markup such as <i> or <sup>.
type xmlText string

func (t *xmlText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var b strings.Builder
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch v := tok.(type) {
		case xml.CharData:
			b.Write(v)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				*t = xmlText(b.String())
				return nil
			}
			depth--
		}
	}
}

func (t xmlText) String() string {
	return strings.TrimSpace(string(t))
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/litfetch/internal/httputil"
	"github.com/pdiddy/litfetch/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "http://export.arxiv.org/api/query"

// ArxivSource queries the arXiv Atom API.
type ArxivSource struct {
	Getter *httputil.Getter
	Log    io.Writer
}

// Name returns the source identifier.
func (s *ArxivSource) Name() types.Source { return types.SourceArxiv }

// Search issues one relevance-sorted query and parses each Atom entry.
// Entries that fail to parse are logged and skipped.
func (s *ArxivSource) Search(ctx context.Context, q Query) ([]types.Paper, error) {
	params := url.Values{
		"search_query": {"all:" + q.Text},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(q.MaxResults)},
		"sortBy":       {"relevance"},
		"sortOrder":    {"descending"},
	}

	resp, err := s.Getter.GetOK(ctx, types.SourceArxiv, arxivAPIBase+"?"+params.Encode(), "application/atom+xml")
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	papers := make([]types.Paper, 0, len(feed.Entries))
	for i, entry := range feed.Entries {
		p, err := parseArxivEntry(entry)
		if err != nil {
			logf(s.Log, "warning: skipping arXiv entry %d: %v\n", i, err)
			continue
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// arXiv Atom feed XML structures. Element names are matched without the
// Atom namespace so fixtures with or without xmlns decode alike.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string          `xml:"id"`
	Title      string          `xml:"title"`
	Summary    string          `xml:"summary"`
	Published  string          `xml:"published"`
	Authors    []arxivAuthor   `xml:"author"`
	Categories []arxivCategory `xml:"category"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}

func parseArxivEntry(e arxivEntry) (types.Paper, error) {
	id := extractArxivID(e.ID)
	if id == "" {
		return types.Paper{}, fmt.Errorf("entry has no id")
	}

	published := strings.TrimSpace(e.Published)
	var year string
	if published != "" {
		if len(published) < 4 {
			return types.Paper{}, fmt.Errorf("entry %s: malformed published date %q", id, published)
		}
		year = published[:4]
	}

	p := types.Paper{
		Title:    strings.TrimSpace(e.Title),
		Abstract: strings.TrimSpace(e.Summary),
		Year:     year,
		ArxivID:  id,
		PDFURL:   types.ArxivPDFURL(id),
		Source:   types.SourceArxiv,
	}
	for _, a := range e.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			p.Authors = append(p.Authors, name)
		}
	}
	p.Authors = types.CapAuthors(p.Authors)
	for _, c := range e.Categories {
		if c.Term != "" {
			p.Keywords = append(p.Keywords, c.Term)
		}
	}
	return p, nil
}

// extractArxivID returns the last path segment of the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041v1").
func extractArxivID(idURL string) string {
	idURL = strings.TrimRight(strings.TrimSpace(idURL), "/")
	if idURL == "" {
		return ""
	}
	return idURL[strings.LastIndex(idURL, "/")+1:]
}

func logf(w io.Writer, format string, args ...any) {
	if w != nil {
		fmt.Fprintf(w, format, args...)
	}
}

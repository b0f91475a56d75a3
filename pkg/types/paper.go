// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"strings"
)

// MaxAuthors caps the number of authors kept on a Paper.
const MaxAuthors = 10

// Source identifies the bibliographic API that produced a record. The
// rate limiter also uses it to tag lookup services (unpaywall, crossref).
type Source string

const (
	SourcePubMed    Source = "pubmed"
	SourceArxiv     Source = "arxiv"
	SourceBiorxiv   Source = "biorxiv"
	SourceUnpaywall Source = "unpaywall"
	SourceCrossref  Source = "crossref"
)

// AllSources lists the searchable sources in dispatch order.
var AllSources = []Source{SourcePubMed, SourceArxiv, SourceBiorxiv}

// ErrUnknownSource is returned when a caller names a source that is not
// one of AllSources or is not registered with the orchestrator.
var ErrUnknownSource = errors.New("unknown source")

// ParseSource validates a source name. Matching is case-insensitive.
func ParseSource(name string) (Source, error) {
	s := Source(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range AllSources {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, name)
}

// ParseSources validates a list of source names, preserving order and
// dropping repeats.
func ParseSources(names []string) ([]Source, error) {
	out := make([]Source, 0, len(names))
	seen := make(map[Source]bool, len(names))
	for _, n := range names {
		s, err := ParseSource(n)
		if err != nil {
			return nil, err
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out, nil
}

// Paper is the canonical record produced by every source. Only the
// identifiers native to the producing source are normally set, but
// nothing guarantees that DOI, PMID and ArxivID are mutually exclusive.
type Paper struct {
	Title    string   `json:"title" yaml:"title"`
	Authors  []string `json:"authors" yaml:"authors"`
	Abstract string   `json:"abstract" yaml:"abstract"`

	// Year is the four-digit publication year, or empty when unknown.
	Year string `json:"year" yaml:"year"`

	DOI     string `json:"doi" yaml:"doi"`
	PMID    string `json:"pmid" yaml:"pmid"`
	ArxivID string `json:"arxiv_id" yaml:"arxiv_id"`

	Journal  string   `json:"journal" yaml:"journal"`
	Keywords []string `json:"keywords" yaml:"keywords"`

	// PDFURL is set by the source when it knows the PDF location, or later
	// by the resolver right before a download.
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`

	// Source is the adapter that produced the record.
	Source Source `json:"source" yaml:"source"`

	// CitationCount is reserved; no source fills it in.
	CitationCount int `json:"citation_count" yaml:"citation_count"`
}

// FirstIdentifier returns the arXiv ID, else the PMID, else "unknown".
// The DOI is deliberately not consulted: it contains slashes.
func (p Paper) FirstIdentifier() string {
	switch {
	case p.ArxivID != "":
		return p.ArxivID
	case p.PMID != "":
		return p.PMID
	default:
		return "unknown"
	}
}

// CapAuthors truncates authors to MaxAuthors.
func CapAuthors(authors []string) []string {
	if len(authors) > MaxAuthors {
		return authors[:MaxAuthors]
	}
	return authors
}

// ArxivPDFURL returns the canonical PDF location for an arXiv ID.
func ArxivPDFURL(id string) string {
	return "https://arxiv.org/pdf/" + id + ".pdf"
}

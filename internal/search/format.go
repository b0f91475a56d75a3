// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/litfetch/pkg/types"
)

// FormatTable writes papers as a human-readable table to w.
func FormatTable(rep Report, w io.Writer) {
	if len(rep.Papers) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-4s  %-8s  %s\n",
		"#", "Title", "Authors", "Year", "Source", "ID")
	fmt.Fprintln(w, strings.Repeat("-", 116))

	for i, p := range rep.Papers {
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-4s  %-8s  %s\n",
			i+1, truncate(p.Title, 60), formatAuthors(p.Authors), p.Year, p.Source, displayID(p))
	}

	fmt.Fprintf(w, "\n%d results", len(rep.Papers))
	if rep.DuplicatesRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", rep.DuplicatesRemoved)
	}
	fmt.Fprintln(w)
	for src, err := range rep.Failures {
		fmt.Fprintf(w, "source %s failed: %v\n", src, err)
	}
}

// FormatJSON writes papers as indented JSON to w.
func FormatJSON(rep Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep.Papers)
}

// displayID picks the most useful identifier for a table row.
func displayID(p types.Paper) string {
	switch {
	case p.DOI != "":
		return "doi:" + p.DOI
	case p.ArxivID != "":
		return "arXiv:" + p.ArxivID
	case p.PMID != "":
		return "pmid:" + p.PMID
	default:
		return ""
	}
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

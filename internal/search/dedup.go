// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"strings"
	"unicode"

	"github.com/pdiddy/litfetch/pkg/types"
)

// NormalizeTitle lowercases title, drops every character that is not a
// letter, number, underscore or whitespace, and collapses whitespace.
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Deduplicate keeps the first record for each normalized title, in input
// order. Identifiers are not consulted, and records with empty titles all
// share one key.
func Deduplicate(papers []types.Paper) []types.Paper {
	out, _ := DedupStats(papers)
	return out
}

// DedupStats is Deduplicate that also reports how many records it dropped.
func DedupStats(papers []types.Paper) ([]types.Paper, int) {
	seen := make(map[string]struct{}, len(papers))
	var out []types.Paper
	removed := 0
	for _, p := range papers {
		key := NormalizeTitle(p.Title)
		if _, ok := seen[key]; ok {
			removed++
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out, removed
}

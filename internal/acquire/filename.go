// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"regexp"
	"unicode"

	"github.com/pdiddy/litfetch/pkg/types"
)

// maxStemRunes bounds the title part of a generated filename.
const maxStemRunes = 100

var separatorRun = regexp.MustCompile(`[-\s]+`)

// Filename derives the on-disk name for p: the title with everything but
// word characters, whitespace and hyphens removed, separator runs collapsed
// to a single underscore, cut to 100 characters, then the source and the
// first available identifier.
func Filename(p types.Paper) string {
	stem := separatorRun.ReplaceAllString(stripTitle(p.Title), "_")
	if r := []rune(stem); len(r) > maxStemRunes {
		stem = string(r[:maxStemRunes])
	}
	return stem + "_" + string(p.Source) + "_" + p.FirstIdentifier() + ".pdf"
}

func stripTitle(title string) string {
	out := make([]rune, 0, len(title))
	for _, r := range title {
		switch {
		case unicode.IsSpace(r):
			out = append(out, ' ')
		case r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r):
			out = append(out, r)
		}
	}
	return string(out)
}

// Package title canonicalizes media titles for comparison and provides the
// string similarity scoring used by the trending matcher.
package title

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	parentheticalRegex  = regexp.MustCompile(`\([^)]*\)`)
	bracketedRegex      = regexp.MustCompile(`\[[^\]]*\]`)
	nonAlnumRegex       = regexp.MustCompile(`[^a-z0-9 ]+`)
	punctRegex          = regexp.MustCompile(`[^a-zA-Z0-9\s]+`)
	collapseSpacesRegex = regexp.MustCompile(`\s+`)
	yearSuffixRegex     = regexp.MustCompile(`\s*\((19|20)\d{2}\)\s*$`)
)

// asciiReplacer covers letters that survive combining-mark removal.
var asciiReplacer = strings.NewReplacer(
	"ß", "ss", "ẞ", "SS",
	"ø", "o", "Ø", "O",
	"æ", "ae", "Æ", "AE",
	"œ", "oe", "Œ", "OE",
	"đ", "d", "Đ", "D",
	"ł", "l", "Ł", "L",
	"þ", "th", "Þ", "Th",
	"ð", "d", "Ð", "D",
)

// Transliterate maps accented letters to their closest ASCII form.
func Transliterate(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return asciiReplacer.Replace(out)
}

// Normalize returns the canonical form of a title. Two titles refer to the
// same entity iff their canonical forms are equal. The pipeline strips
// parenthetical and bracketed groups (folder names carry their external id
// as a "[12345]" token, which must not leak into similarity scores),
// transliterates to ASCII, lowercases, folds "&" to "and", drops everything
// but letters, digits and spaces, and collapses whitespace. Normalize is
// idempotent.
func Normalize(s string) string {
	s = parentheticalRegex.ReplaceAllString(s, " ")
	s = bracketedRegex.ReplaceAllString(s, " ")
	s = Transliterate(s)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "&", " and ")
	s = nonAlnumRegex.ReplaceAllString(s, " ")
	s = collapseSpacesRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Alternatives returns auxiliary search variants of a title. They are used
// only as extra lookup keys, never for equality. The original title is
// always first; duplicates are removed preserving first occurrence.
func Alternatives(s string) []string {
	candidates := []string{
		s,
		Transliterate(s),
		yearSuffixRegex.ReplaceAllString(s, ""),
		strings.TrimSpace(punctRegex.ReplaceAllString(s, "")),
		strings.TrimSpace(punctRegex.ReplaceAllString(Transliterate(s), "")),
		collapseSpacesRegex.ReplaceAllString(strings.TrimSpace(s), " "),
		strings.ReplaceAll(s, ":", " -"),
		strings.ReplaceAll(s, "-", ":"),
		strings.ReplaceAll(s, "!", ""),
		strings.ReplaceAll(s, "&", "and"),
		strings.ReplaceAll(s, " and ", " & "),
	}

	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

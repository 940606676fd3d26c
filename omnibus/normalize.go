package omnibus

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// Leading "12. ", "3 - ", "IV: " style indexes. Roman numerals are
	// restricted to upper case so words built from roman letters survive.
	leadingIndexRe = regexp.MustCompile(`^\s*(?:\d+|[IVXLCDM]+)\s*[-.:)\x{2013}\x{2014}]\s+`)
	// Bracketed and parenthesized annotations anywhere in the title.
	annotationRe = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)
	// Whitespace runs left behind by stripped annotations.
	spaceRunRe = regexp.MustCompile(`\s{2,}`)
	// Trailing separators and punctuation.
	trailingJunkRe = regexp.MustCompile(`[\s\-.,;:!?'")\]\x{2013}\x{2014}\x{2026}]+$`)
)

// NormalizeTitle cleans a raw navigation label into a presentable work title:
// leading numeric or roman indexes, bracketed annotations and trailing
// punctuation are removed. The result is stable under repeated application.
// Any input is accepted, unusable input collapses to the empty string.
func NormalizeTitle(raw string) string {
	s := norm.NFC.String(raw)
	for {
		next := normalizePass(s)
		if next == s {
			return next
		}
		s = next
	}
}

func normalizePass(s string) string {
	s = leadingIndexRe.ReplaceAllString(s, "")
	s = annotationRe.ReplaceAllString(s, "")
	s = spaceRunRe.ReplaceAllString(s, " ")
	s = trailingJunkRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// SortableTitle derives the ordering key for a title by dropping a leading
// article, so "The Tempest" files under T.
func SortableTitle(title string) string {
	lower := strings.ToLower(title)
	for _, article := range []string{"the ", "an ", "a "} {
		if strings.HasPrefix(lower, article) && len(title) > len(article) {
			return strings.TrimSpace(title[len(article):])
		}
	}
	return title
}

package faunequebec

import (
	"regexp"
	"strings"

	"github.com/sim0n-says/AnalyseFauneQuebec/spider"
)

// Letters and decimal digits of any script are word characters, so accented
// French labels such as "Nom français" keep their accents. Other numerals
// (², ½) are not allowed in XML names and count as punctuation.
var nonWord = regexp.MustCompile(`[^\p{L}\p{M}\p{Nd}_]+`)

/*
CleanKey turns a label into a field key.

Every run of non-word characters becomes one underscore, then underscores are
trimmed from both ends ("Nom scientifique :" -> "Nom_scientifique"). A label made
only of punctuation becomes "_". CleanKey(CleanKey(s)) == CleanKey(s).
*/
func CleanKey(label string) string {
	collapsed := nonWord.ReplaceAllString(strings.TrimSpace(label), "_")
	trimmed := strings.Trim(collapsed, "_")
	if trimmed == "" && collapsed != "" {
		return "_"
	}
	return trimmed
}

// Slug names a record after its title heading, falling back to DefaultSlug.
func Slug(title string) string {
	s := CleanKey(title)
	if s == "" || s == "_" {
		return spider.DefaultSlug
	}
	return s
}

// fieldValue is the only way a value enters a record: trimmed text is
// entity-escaped, and nothing at all becomes NA.
func fieldValue(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return spider.NA
	}
	return spider.EscapeHTML(text)
}

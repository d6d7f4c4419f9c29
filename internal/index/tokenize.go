package index

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Tokenize lowers s with full Unicode case folding and splits on any run
// of non-letter, non-digit runes. No stemming, no stop words: the same
// deterministic, language-agnostic treatment is applied to documents and
// to query text, which is what makes scores reproducible.
func Tokenize(s string) []string {
	folded := cases.Fold().String(s)
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// TokenSet returns the distinct tokens of s in first-seen order.
func TokenSet(s string) []string {
	tokens := Tokenize(s)
	seen := make(map[string]bool, len(tokens))
	out := tokens[:0]
	for _, tok := range tokens {
		if seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

package catalog

import "strings"

// Taxonomy holds the configured vocabularies used to classify entries.
// The sets are open: they come from configuration, not compiled-in enums,
// so a catalog can grow new languages or categories without code changes.
// Difficulties are ordered easiest-first; the position defines the rank
// used for ranking tie-breaks.
type Taxonomy struct {
	Categories   []string
	Difficulties []string
	Languages    []string
}

// DefaultTaxonomy returns the vocabulary used when no configuration
// overrides it.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		Categories:   []string{"creational", "structural", "behavioral", "function-pattern", "process"},
		Difficulties: []string{"beginner", "intermediate", "advanced"},
		Languages:    []string{"python", "typescript", "javascript", "go", "rust", "java", "csharp", "kotlin"},
	}
}

func canonical(set []string, v string) (string, bool) {
	v = strings.TrimSpace(v)
	for _, s := range set {
		if strings.EqualFold(s, v) {
			return s, true
		}
	}
	return "", false
}

// CanonicalCategory maps v onto the configured category spelling.
func (t Taxonomy) CanonicalCategory(v string) (string, bool) { return canonical(t.Categories, v) }

// CanonicalDifficulty maps v onto the configured difficulty spelling.
func (t Taxonomy) CanonicalDifficulty(v string) (string, bool) { return canonical(t.Difficulties, v) }

// CanonicalLanguage maps a section header onto the configured language
// spelling.
func (t Taxonomy) CanonicalLanguage(v string) (string, bool) { return canonical(t.Languages, v) }

// DifficultyRank returns the position of v in the ordered difficulty
// list. Unknown difficulties rank after every configured one so they
// sort last.
func (t Taxonomy) DifficultyRank(v string) int {
	for i, d := range t.Difficulties {
		if strings.EqualFold(d, v) {
			return i
		}
	}
	return len(t.Difficulties)
}

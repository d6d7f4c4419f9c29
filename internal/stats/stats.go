package stats

import (
	"sort"
	"strings"

	"github.com/tomehq/tome/internal/catalog"
)

// Count is one named bucket in a summary table.
type Count struct {
	Name     string `json:"name"`
	Entries  int    `json:"entries"`
	Variants int    `json:"variants,omitempty"`
}

// Summary aggregates the numbers a human-facing index page shows:
// totals, per-category, per-difficulty and per-language coverage.
type Summary struct {
	Entries      int     `json:"entries"`
	Variants     int     `json:"variants"`
	Recommended  int     `json:"recommended"`
	RelatedLinks int     `json:"related_links"`
	Categories   []Count `json:"categories"`
	Difficulties []Count `json:"difficulties"`
	Languages    []Count `json:"languages"`
}

// Summarize computes catalog-wide aggregates. Category and language
// buckets are ordered by name; difficulty buckets follow the configured
// rank order, with unconfigured values appended alphabetically.
func Summarize(c *catalog.Catalog) *Summary {
	s := &Summary{
		Entries:      c.Len(),
		RelatedLinks: len(c.RelatedLinks()),
	}

	categories := map[string]*Count{}
	difficulties := map[string]*Count{}
	languages := map[string]*Count{}

	bump := func(m map[string]*Count, name string, entries, variants int) {
		b := m[name]
		if b == nil {
			b = &Count{Name: name}
			m[name] = b
		}
		b.Entries += entries
		b.Variants += variants
	}

	for _, e := range c.Entries() {
		total := e.VariantCount()
		s.Variants += total

		bump(categories, e.Category, 1, total)
		bump(difficulties, e.Difficulty, 1, 0)
		for _, lang := range e.Languages() {
			bump(languages, lang, 1, len(e.Variants[lang]))
			for _, v := range e.Variants[lang] {
				if v.Recommended {
					s.Recommended++
				}
			}
		}
	}

	s.Categories = byName(categories)
	s.Languages = byName(languages)
	s.Difficulties = byRank(difficulties, c.Taxonomy())
	return s
}

func byName(m map[string]*Count) []Count {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Count, 0, len(names))
	for _, name := range names {
		out = append(out, *m[name])
	}
	return out
}

func byRank(m map[string]*Count, tax catalog.Taxonomy) []Count {
	var out []Count
	for _, d := range tax.Difficulties {
		if b, ok := m[d]; ok {
			out = append(out, *b)
			delete(m, d)
		}
	}
	// Anything left was outside the configured set.
	rest := byName(m)
	out = append(out, rest...)
	return out
}

// CoverageRatio returns the share of entries offering at least one
// variant in the given language, in the unit interval. Zero entries
// means zero coverage.
func CoverageRatio(c *catalog.Catalog, lang string) float64 {
	if c.Len() == 0 {
		return 0
	}
	canon, ok := c.Taxonomy().CanonicalLanguage(lang)
	if !ok {
		canon = strings.ToLower(lang)
	}
	covered := 0
	for _, e := range c.Entries() {
		if _, has := e.Variants[canon]; has {
			covered++
		}
	}
	return float64(covered) / float64(c.Len())
}

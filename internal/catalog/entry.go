package catalog

import (
	"sort"
	"time"
)

// Entry is one parsed catalog document: a reusable pattern or function
// template with metadata and per-language implementation variants.
type Entry struct {
	ID         string
	Title      string
	Category   string
	Difficulty string
	Purpose    string
	WhenToUse  []string
	Tags       []string
	Updated    time.Time
	Related    []string
	Totals     map[string]int
	Variants   map[string][]Variant
}

// Variant is one named implementation approach for an entry in one
// language. Body is opaque payload; the engine indexes around it but
// never interprets it.
type Variant struct {
	Name        string
	Library     string
	Recommended bool
	Body        string
}

// Languages returns the languages this entry has variants for, sorted.
func (e *Entry) Languages() []string {
	out := make([]string, 0, len(e.Variants))
	for lang := range e.Variants {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// VariantCount counts variants across all languages.
func (e *Entry) VariantCount() int {
	n := 0
	for _, vs := range e.Variants {
		n += len(vs)
	}
	return n
}

// Recommended returns the recommended variant for a language, if any.
func (e *Entry) Recommended(lang string) (Variant, bool) {
	for _, v := range e.Variants[lang] {
		if v.Recommended {
			return v, true
		}
	}
	return Variant{}, false
}

package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tomehq/tome/internal/catalog"
	"github.com/tomehq/tome/internal/index"
)

// Weights applied per distinct query token, by field class. A token
// scores each class at most once per entry, so repeating a word in the
// need text never inflates a score.
const (
	weightTag       = 3
	weightWhenToUse = 2
	weightText      = 1
)

// Field-class names used in match reasons.
const (
	FieldTags      = "tags"
	FieldWhenToUse = "when_to_use"
	FieldText      = "text"
)

// Filters narrow a query to entries matching every set field. Empty
// fields are ignored; set fields are validated against the catalog
// taxonomy before any matching happens.
type Filters struct {
	Language      string
	Category      string
	MaxDifficulty string
}

func (f Filters) Empty() bool {
	return f.Language == "" && f.Category == "" && f.MaxDifficulty == ""
}

// Request is one retrieval question: a free-text need plus filters.
// Limit of zero means unbounded.
type Request struct {
	Need    string
	Filters Filters
	Limit   int
}

// Reason explains one scored match: which token hit which field class.
// For tag hits Matched carries the original tag; for text hits it names
// the metadata fields the token occurred in.
type Reason struct {
	Token   string `json:"token"`
	Field   string `json:"field"`
	Matched string `json:"matched,omitempty"`
	Weight  int    `json:"weight"`
}

// Result is one ranked entry. Score is always the sum of the reason
// weights, never an opaque number, so callers can show their users why.
type Result struct {
	EntryID string   `json:"entry_id"`
	Score   int      `json:"score"`
	Reasons []Reason `json:"reasons,omitempty"`
}

// FilterError reports a filter value outside the configured taxonomy. It
// is a caller error, deliberately distinguishable from an empty result.
type FilterError struct {
	Field   string
	Value   string
	Allowed []string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("invalid %s filter %q (allowed: %s)", e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

// Search ranks catalog entries against req. With a non-empty need it
// returns matching entries ordered by score, breaking ties on difficulty
// rank and then id. With an empty need it degrades to pure filter mode:
// every entry passing the filters, ordered by difficulty then id, all
// scores zero. No entry passing no filter is an empty result, not an
// error.
func Search(idx *index.Index, cat *catalog.Catalog, req Request) ([]Result, error) {
	flt, err := resolveFilters(cat.Taxonomy(), req.Filters)
	if err != nil {
		return nil, err
	}

	eligible := eligibleIDs(idx, cat, flt)
	tokens := index.TokenSet(req.Need)
	if len(tokens) == 0 {
		return filterOnly(cat, eligible, req.Limit), nil
	}

	type accum struct {
		score   int
		reasons []Reason
	}
	hits := map[string]*accum{}
	get := func(id string) *accum {
		a := hits[id]
		if a == nil {
			a = &accum{}
			hits[id] = a
		}
		return a
	}

	for _, tok := range tokens {
		// Tag hits. Postings are sorted by (entry, tag); group the tags
		// of one entry into a single reason.
		tagPostings := idx.Tags[tok]
		for i := 0; i < len(tagPostings); {
			j := i
			var matched []string
			for ; j < len(tagPostings) && tagPostings[j].EntryID == tagPostings[i].EntryID; j++ {
				matched = append(matched, tagPostings[j].Tag)
			}
			if eligible[tagPostings[i].EntryID] {
				a := get(tagPostings[i].EntryID)
				a.score += weightTag
				a.reasons = append(a.reasons, Reason{
					Token:   tok,
					Field:   FieldTags,
					Matched: strings.Join(matched, ", "),
					Weight:  weightTag,
				})
			}
			i = j
		}

		for _, p := range idx.Text[tok] {
			if !eligible[p.EntryID] {
				continue
			}
			a := get(p.EntryID)
			if p.Fields&index.FieldWhenToUse != 0 {
				a.score += weightWhenToUse
				a.reasons = append(a.reasons, Reason{Token: tok, Field: FieldWhenToUse, Weight: weightWhenToUse})
			}
			if tp := p.Fields & (index.FieldTitle | index.FieldPurpose); tp != 0 {
				a.score += weightText
				a.reasons = append(a.reasons, Reason{Token: tok, Field: FieldText, Matched: tp.Label(), Weight: weightText})
			}
		}
	}

	tax := cat.Taxonomy()
	rank := func(id string) int {
		e, ok := cat.Get(id)
		if !ok {
			return len(tax.Difficulties)
		}
		return tax.DifficultyRank(e.Difficulty)
	}

	results := make([]Result, 0, len(hits))
	for id, a := range hits {
		results = append(results, Result{EntryID: id, Score: a.score, Reasons: a.reasons})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		ri, rj := rank(results[i].EntryID), rank(results[j].EntryID)
		if ri != rj {
			return ri < rj
		}
		return results[i].EntryID < results[j].EntryID
	})
	return truncate(results, req.Limit), nil
}

// resolved holds filter values mapped onto the taxonomy. maxRank of -1
// means no difficulty ceiling.
type resolved struct {
	language string
	category string
	maxRank  int
}

func resolveFilters(tax catalog.Taxonomy, f Filters) (resolved, error) {
	r := resolved{maxRank: -1}
	if f.Language != "" {
		canon, ok := tax.CanonicalLanguage(f.Language)
		if !ok {
			return r, &FilterError{Field: "language", Value: f.Language, Allowed: tax.Languages}
		}
		r.language = canon
	}
	if f.Category != "" {
		canon, ok := tax.CanonicalCategory(f.Category)
		if !ok {
			return r, &FilterError{Field: "category", Value: f.Category, Allowed: tax.Categories}
		}
		r.category = canon
	}
	if f.MaxDifficulty != "" {
		if _, ok := tax.CanonicalDifficulty(f.MaxDifficulty); !ok {
			return r, &FilterError{Field: "max-difficulty", Value: f.MaxDifficulty, Allowed: tax.Difficulties}
		}
		r.maxRank = tax.DifficultyRank(f.MaxDifficulty)
	}
	return r, nil
}

// eligibleIDs applies the hard filters up front: filtered entries are
// excluded before scoring, never merely down-ranked.
func eligibleIDs(idx *index.Index, cat *catalog.Catalog, flt resolved) map[string]bool {
	tax := cat.Taxonomy()

	candidates := cat.IDs()
	if flt.language != "" {
		candidates = idx.Languages[flt.language]
	}

	out := make(map[string]bool, len(candidates))
	for _, id := range candidates {
		e, ok := cat.Get(id)
		if !ok {
			continue
		}
		if flt.category != "" && e.Category != flt.category {
			continue
		}
		if flt.maxRank >= 0 && tax.DifficultyRank(e.Difficulty) > flt.maxRank {
			continue
		}
		out[id] = true
	}
	return out
}

func filterOnly(cat *catalog.Catalog, eligible map[string]bool, limit int) []Result {
	tax := cat.Taxonomy()
	ids := make([]string, 0, len(eligible))
	for id := range eligible {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ei, _ := cat.Get(ids[i])
		ej, _ := cat.Get(ids[j])
		ri, rj := tax.DifficultyRank(ei.Difficulty), tax.DifficultyRank(ej.Difficulty)
		if ri != rj {
			return ri < rj
		}
		return ids[i] < ids[j]
	})

	out := make([]Result, 0, len(ids))
	for _, id := range ids {
		out = append(out, Result{EntryID: id})
	}
	return truncate(out, limit)
}

func truncate(results []Result, limit int) []Result {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}

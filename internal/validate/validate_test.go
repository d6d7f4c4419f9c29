package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomehq/tome/internal/catalog"
)

func entry(id string, mutate ...func(*catalog.Entry)) *catalog.Entry {
	e := &catalog.Entry{
		ID:         id,
		Title:      "Title " + id,
		Category:   "behavioral",
		Difficulty: "intermediate",
		Purpose:    "purpose",
		Tags:       []string{id},
		Updated:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Variants: map[string][]catalog.Variant{
			"python": {{Name: "Default", Library: "none", Recommended: true, Body: "body"}},
		},
	}
	for _, m := range mutate {
		m(e)
	}
	return e
}

func check(entries ...*catalog.Entry) *Report {
	return Check(catalog.New(catalog.DefaultTaxonomy(), entries))
}

func violations(r *Report, rule string) []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Rule == rule {
			out = append(out, v)
		}
	}
	return out
}

func TestCheckCleanCatalog(t *testing.T) {
	r := check(entry("a"), entry("b"))

	assert.True(t, r.OK())
	assert.Zero(t, r.Errors())
	assert.Zero(t, r.Warnings())
	assert.Equal(t, 2, r.Entries)
	assert.NotEmpty(t, r.Fingerprint)
}

func TestCheckUnresolvedReference(t *testing.T) {
	r := check(entry("foo", func(e *catalog.Entry) {
		e.Related = []string{"bar"}
	}))

	vs := violations(r, RuleUnresolvedReference)
	require.Len(t, vs, 1, "exactly one violation for one dangling edge")
	assert.Equal(t, SeverityError, vs[0].Severity)
	assert.Equal(t, "foo", vs[0].EntryID)
	assert.Contains(t, vs[0].Message, "bar")
}

func TestCheckSelfReferenceIsAWarning(t *testing.T) {
	r := check(entry("loop", func(e *catalog.Entry) {
		e.Related = []string{"loop"}
	}))

	vs := violations(r, RuleSelfReference)
	require.Len(t, vs, 1)
	assert.Equal(t, SeverityWarning, vs[0].Severity)
	assert.True(t, r.OK(), "self references do not fail the catalog")
}

func TestCheckDuplicateRecommendedIsError(t *testing.T) {
	r := check(entry("x", func(e *catalog.Entry) {
		e.Variants["python"] = []catalog.Variant{
			{Name: "A", Library: "none", Recommended: true, Body: "a"},
			{Name: "B", Library: "none", Recommended: true, Body: "b"},
		}
	}))

	vs := violations(r, RuleDuplicateRecommended)
	require.Len(t, vs, 1)
	assert.Equal(t, SeverityError, vs[0].Severity)
	assert.False(t, r.OK())
}

func TestCheckMissingRecommendedIsWarning(t *testing.T) {
	r := check(entry("x", func(e *catalog.Entry) {
		e.Variants["python"] = []catalog.Variant{
			{Name: "A", Library: "none", Body: "a"},
			{Name: "B", Library: "none", Body: "b"},
		}
	}))

	vs := violations(r, RuleMissingRecommended)
	require.Len(t, vs, 1)
	assert.Equal(t, SeverityWarning, vs[0].Severity)
	assert.True(t, r.OK())
}

func TestCheckCountMismatch(t *testing.T) {
	summary := entry("summary", func(e *catalog.Entry) {
		e.Category = "process"
		e.Totals = map[string]int{"all": 4, "behavioral": 2}
	})
	// Catalog really has 3 entries, 2 behavioral.
	r := check(summary, entry("a"), entry("b"))

	vs := violations(r, RuleCountMismatch)
	require.Len(t, vs, 1)
	assert.Equal(t, SeverityError, vs[0].Severity)
	assert.Equal(t, "summary", vs[0].EntryID)
	assert.Contains(t, vs[0].Message, "4")
	assert.Contains(t, vs[0].Message, "3")
}

func TestCheckCountsMatch(t *testing.T) {
	summary := entry("summary", func(e *catalog.Entry) {
		e.Category = "process"
		e.Totals = map[string]int{"all": 3, "behavioral": 2, "process": 1}
	})
	r := check(summary, entry("a"), entry("b"))

	assert.Empty(t, violations(r, RuleCountMismatch))
	assert.True(t, r.OK())
}

func TestCheckDuplicateTitleSameCategory(t *testing.T) {
	r := check(
		entry("first", func(e *catalog.Entry) { e.Title = "Same Name" }),
		entry("second", func(e *catalog.Entry) { e.Title = "same name" }),
		entry("elsewhere", func(e *catalog.Entry) {
			e.Title = "Same Name"
			e.Category = "process"
		}),
	)

	vs := violations(r, RuleDuplicateTitle)
	require.Len(t, vs, 1, "same title in a different category is fine")
	assert.Equal(t, SeverityWarning, vs[0].Severity)
	assert.Equal(t, "second", vs[0].EntryID, "the later id carries the violation")
}

func TestCheckUnknownTaxonomyValues(t *testing.T) {
	r := check(entry("odd", func(e *catalog.Entry) {
		e.Category = "esoteric"
		e.Difficulty = "legendary"
		e.Variants = map[string][]catalog.Variant{
			"brainfuck": {{Name: "Only", Library: "none", Recommended: true, Body: "x"}},
		}
	}))

	assert.Len(t, violations(r, RuleUnknownCategory), 1)
	assert.Len(t, violations(r, RuleUnknownDifficulty), 1)
	assert.Len(t, violations(r, RuleUnknownLanguage), 1)
	assert.Equal(t, 3, r.Errors())
}

func TestCheckNoVariantsIsError(t *testing.T) {
	r := check(entry("bare", func(e *catalog.Entry) {
		e.Variants = map[string][]catalog.Variant{}
	}))

	require.Len(t, violations(r, RuleNoVariants), 1)
	assert.False(t, r.OK())
}

func TestCheckEmptyVariantIsWarning(t *testing.T) {
	r := check(entry("hollow", func(e *catalog.Entry) {
		e.Variants["python"] = []catalog.Variant{
			{Name: "Empty", Library: "none", Recommended: true, Body: "   "},
		}
	}))

	vs := violations(r, RuleEmptyVariant)
	require.Len(t, vs, 1)
	assert.Equal(t, SeverityWarning, vs[0].Severity)
}

func TestCheckDuplicateTagIsWarning(t *testing.T) {
	r := check(entry("tagged", func(e *catalog.Entry) {
		e.Tags = []string{"cache", "Cache", "other"}
	}))

	vs := violations(r, RuleDuplicateTag)
	require.Len(t, vs, 1)
	assert.Equal(t, SeverityWarning, vs[0].Severity)
}

func TestCheckEmptyTagsIsError(t *testing.T) {
	r := check(entry("untagged", func(e *catalog.Entry) {
		e.Tags = nil
	}))

	require.Len(t, violations(r, RuleEmptyTags), 1)
	assert.False(t, r.OK())
}

func TestCheckDeterministicOrder(t *testing.T) {
	build := func() *Report {
		return check(
			entry("z", func(e *catalog.Entry) { e.Related = []string{"missing-1", "missing-2"} }),
			entry("a", func(e *catalog.Entry) { e.Tags = nil }),
		)
	}
	first := build()
	second := build()
	assert.Equal(t, first.Violations, second.Violations)

	// Entries are visited in id order.
	require.NotEmpty(t, first.Violations)
	assert.Equal(t, "a", first.Violations[0].EntryID)
}

package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomehq/tome/internal/catalog"
)

func fixture() *catalog.Catalog {
	mk := func(id, cat, diff string, related []string, variants map[string][]catalog.Variant) *catalog.Entry {
		return &catalog.Entry{
			ID: id, Title: "T " + id, Category: cat, Difficulty: diff, Purpose: "p",
			Tags:    []string{id},
			Updated: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			Related: related, Variants: variants,
		}
	}
	return catalog.New(catalog.DefaultTaxonomy(), []*catalog.Entry{
		mk("observer", "behavioral", "intermediate", []string{"state"}, map[string][]catalog.Variant{
			"python": {
				{Name: "Callbacks", Library: "none", Recommended: true, Body: "x"},
				{Name: "Signals", Library: "blinker", Body: "y"},
			},
			"go": {{Name: "Channels", Library: "none", Recommended: true, Body: "z"}},
		}),
		mk("state", "behavioral", "advanced", nil, map[string][]catalog.Variant{
			"go": {{Name: "Interface", Library: "none", Recommended: true, Body: "b"}},
		}),
		mk("singleton", "creational", "beginner", nil, map[string][]catalog.Variant{
			"python": {{Name: "Module", Library: "none", Body: "a"}},
		}),
	})
}

func TestSummarizeTotals(t *testing.T) {
	s := Summarize(fixture())

	assert.Equal(t, 3, s.Entries)
	assert.Equal(t, 5, s.Variants)
	assert.Equal(t, 3, s.Recommended)
	assert.Equal(t, 1, s.RelatedLinks)
}

func TestSummarizeBuckets(t *testing.T) {
	s := Summarize(fixture())

	assert.Equal(t, []Count{
		{Name: "behavioral", Entries: 2, Variants: 4},
		{Name: "creational", Entries: 1, Variants: 1},
	}, s.Categories)

	assert.Equal(t, []Count{
		{Name: "go", Entries: 2, Variants: 2},
		{Name: "python", Entries: 2, Variants: 3},
	}, s.Languages)
}

func TestSummarizeDifficultiesFollowConfiguredOrder(t *testing.T) {
	s := Summarize(fixture())

	names := make([]string, 0, len(s.Difficulties))
	for _, d := range s.Difficulties {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"beginner", "intermediate", "advanced"}, names)
}

func TestSummarizeEmptyCatalog(t *testing.T) {
	s := Summarize(catalog.New(catalog.DefaultTaxonomy(), nil))

	assert.Zero(t, s.Entries)
	assert.Zero(t, s.Variants)
	assert.Empty(t, s.Categories)
	assert.Empty(t, s.Languages)
	assert.Empty(t, s.Difficulties)
}

func TestCoverageRatio(t *testing.T) {
	c := fixture()

	require.InDelta(t, 2.0/3.0, CoverageRatio(c, "python"), 1e-9)
	require.InDelta(t, 2.0/3.0, CoverageRatio(c, "Go"), 1e-9, "language lookup is case-insensitive")
	assert.Zero(t, CoverageRatio(c, "rust"))
	assert.Zero(t, CoverageRatio(catalog.New(catalog.DefaultTaxonomy(), nil), "python"))
}

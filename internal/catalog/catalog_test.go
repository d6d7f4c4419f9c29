package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntry(id string) *Entry {
	return &Entry{
		ID:         id,
		Title:      "Title " + id,
		Category:   "behavioral",
		Difficulty: "beginner",
		Purpose:    "purpose",
		Tags:       []string{id},
		Updated:    time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Variants: map[string][]Variant{
			"python": {{Name: "Default", Library: "none", Recommended: true, Body: "body"}},
		},
	}
}

func TestCatalogLookupAndOrder(t *testing.T) {
	c := New(DefaultTaxonomy(), []*Entry{testEntry("zeta"), testEntry("alpha"), testEntry("mid")})

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, c.IDs())

	entries := c.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "alpha", entries[0].ID)

	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestCatalogFingerprintIsStable(t *testing.T) {
	build := func() *Catalog {
		return New(DefaultTaxonomy(), []*Entry{testEntry("a"), testEntry("b")})
	}
	assert.Equal(t, build().Fingerprint(), build().Fingerprint())
}

func TestCatalogFingerprintReactsToAnyChange(t *testing.T) {
	base := New(DefaultTaxonomy(), []*Entry{testEntry("a"), testEntry("b")})

	mutations := map[string]func(*Entry){
		"title":   func(e *Entry) { e.Title = "changed" },
		"tags":    func(e *Entry) { e.Tags = append(e.Tags, "extra") },
		"payload": func(e *Entry) { e.Variants["python"][0].Body = "changed" },
		"flag":    func(e *Entry) { e.Variants["python"][0].Recommended = false },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			a, b := testEntry("a"), testEntry("b")
			mutate(b)
			changed := New(DefaultTaxonomy(), []*Entry{a, b})
			assert.NotEqual(t, base.Fingerprint(), changed.Fingerprint())
		})
	}
}

func TestCatalogRelatedLinks(t *testing.T) {
	a := testEntry("a")
	a.Related = []string{"b", "ghost"}
	b := testEntry("b")
	b.Related = []string{"a"}

	c := New(DefaultTaxonomy(), []*Entry{b, a})

	assert.Equal(t, []Link{
		{From: "a", To: "b"},
		{From: "a", To: "ghost"},
		{From: "b", To: "a"},
	}, c.RelatedLinks(), "dangling edges are kept; resolution is validation's job")
}

func TestCatalogDropsLaterDuplicateOnDirectConstruction(t *testing.T) {
	first := testEntry("dup")
	second := testEntry("dup")
	second.Title = "Second"

	c := New(DefaultTaxonomy(), []*Entry{first, second})

	require.Equal(t, 1, c.Len())
	kept, _ := c.Get("dup")
	assert.Equal(t, "Title dup", kept.Title)
}

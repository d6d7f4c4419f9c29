package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const singletonDoc = `---
title: Singleton
category: creational
difficulty: beginner
purpose: Ensure a class has exactly one instance with a global access point.
when_to_use:
  - shared configuration object
  - single connection pool
tags: [singleton, global-state]
updated: 2025-04-12
related_patterns:
  - factory.md
  - borg
---

Intro prose that belongs to no variant.

## Python

### Module Level (recommended)
- library: none

` + "```python\nclass Config: ...\n```" + `

### Metaclass
- library: none

` + "```python\nclass SingletonMeta(type): ...\n```" + `

## Go

### Package Var (recommended)
- library: sync

` + "```go\nvar once sync.Once\n```" + `

## Brainfuck

### Loop Cell
ignored, the language is unknown
`

func TestParseFullDocument(t *testing.T) {
	p := NewParser(DefaultTaxonomy())

	entry, warnings, err := p.Parse("singleton", singletonDoc)
	require.NoError(t, err)
	require.NotNil(t, entry)

	assert.Equal(t, "singleton", entry.ID)
	assert.Equal(t, "Singleton", entry.Title)
	assert.Equal(t, "creational", entry.Category)
	assert.Equal(t, "beginner", entry.Difficulty)
	assert.Equal(t, []string{"shared configuration object", "single connection pool"}, entry.WhenToUse)
	assert.Equal(t, []string{"singleton", "global-state"}, entry.Tags)
	assert.Equal(t, time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC), entry.Updated)
	assert.Equal(t, []string{"factory", "borg"}, entry.Related, "related file names lose their .md suffix")

	require.Equal(t, []string{"go", "python"}, entry.Languages())

	python := entry.Variants["python"]
	require.Len(t, python, 2)
	assert.Equal(t, "Module Level", python[0].Name)
	assert.True(t, python[0].Recommended)
	assert.Equal(t, "none", python[0].Library)
	assert.Contains(t, python[0].Body, "class Config")
	assert.NotContains(t, python[0].Body, "- library:", "library bullet is metadata, not payload")
	assert.Equal(t, "Metaclass", python[1].Name)
	assert.False(t, python[1].Recommended)

	goVariants := entry.Variants["go"]
	require.Len(t, goVariants, 1)
	assert.Equal(t, "sync", goVariants[0].Library)

	require.Len(t, warnings, 1)
	assert.Equal(t, WarnUnknownLanguage, warnings[0].Code)
	assert.Contains(t, warnings[0].Detail, "Brainfuck")
}

func TestParseMissingRequiredFields(t *testing.T) {
	p := NewParser(DefaultTaxonomy())

	cases := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "no title",
			doc: `---
category: creational
difficulty: beginner
purpose: x
tags: [a]
updated: 2025-01-01
---
`,
			want: "title",
		},
		{
			name: "empty tags",
			doc: `---
title: T
category: creational
difficulty: beginner
purpose: x
tags: []
updated: 2025-01-01
---
`,
			want: "tags",
		},
		{
			name: "blank tags",
			doc: `---
title: T
category: creational
difficulty: beginner
purpose: x
tags: ["", "  "]
updated: 2025-01-01
---
`,
			want: "tags",
		},
		{
			name: "no updated",
			doc: `---
title: T
category: creational
difficulty: beginner
purpose: x
tags: [a]
---
`,
			want: "updated",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := p.Parse("x", tc.doc)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, ErrMissingField, perr.Code)
			assert.Equal(t, tc.want, perr.Field)
		})
	}
}

func TestParseDuplicateVariantName(t *testing.T) {
	doc := `---
title: T
category: creational
difficulty: beginner
purpose: x
tags: [a]
updated: 2025-01-01
---
## Python

### Same
one

### Same
two
`
	p := NewParser(DefaultTaxonomy())
	_, _, err := p.Parse("x", doc)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ErrDuplicateVariant, perr.Code)
	assert.Equal(t, "Same", perr.Field)
}

func TestParseInvalidDate(t *testing.T) {
	doc := `---
title: T
category: creational
difficulty: beginner
purpose: x
tags: [a]
updated: last tuesday
---
`
	p := NewParser(DefaultTaxonomy())
	_, _, err := p.Parse("x", doc)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ErrInvalidField, perr.Code)
	assert.Equal(t, "updated", perr.Field)
}

func TestParseRejectsDocumentWithoutFrontmatter(t *testing.T) {
	p := NewParser(DefaultTaxonomy())

	for _, doc := range []string{"# Just markdown\n", "---\ntitle: unterminated\n"} {
		_, _, err := p.Parse("x", doc)
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, ErrBadFrontmatter, perr.Code)
	}
}

func TestParseHeadingsInsideCodeFencesAreIgnored(t *testing.T) {
	doc := `---
title: T
category: process
difficulty: advanced
purpose: x
tags: [a]
updated: 2025-01-01
---
## Python

### Only One
` + "```md\n## Rust\n### Fake Variant\n```" + `
tail line
`
	p := NewParser(DefaultTaxonomy())
	entry, warnings, err := p.Parse("x", doc)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	require.Equal(t, []string{"python"}, entry.Languages())
	require.Len(t, entry.Variants["python"], 1)
	v := entry.Variants["python"][0]
	assert.Contains(t, v.Body, "## Rust", "fenced headings stay in the payload")
	assert.Contains(t, v.Body, "tail line")
}

func TestParseVariantBeforeLanguageSection(t *testing.T) {
	doc := `---
title: T
category: process
difficulty: beginner
purpose: x
tags: [a]
updated: 2025-01-01
---
### Orphan
content

## Python

### Real
content
`
	p := NewParser(DefaultTaxonomy())
	entry, warnings, err := p.Parse("x", doc)
	require.NoError(t, err)

	require.Len(t, warnings, 1)
	assert.Equal(t, WarnOrphanVariant, warnings[0].Code)
	assert.Equal(t, 1, entry.VariantCount())
}

func TestParseKeepsUnknownCategoryForValidation(t *testing.T) {
	doc := `---
title: T
category: Esoteric
difficulty: Beginner
purpose: x
tags: [a]
updated: 2025-01-01
---
## Python

### V (Recommended)
content
`
	p := NewParser(DefaultTaxonomy())
	entry, _, err := p.Parse("x", doc)
	require.NoError(t, err)

	assert.Equal(t, "esoteric", entry.Category, "unknown categories are kept for the validator to flag")
	assert.Equal(t, "beginner", entry.Difficulty, "known values map onto the configured spelling")
	assert.True(t, entry.Variants["python"][0].Recommended, "marker match is case-insensitive")
}

func TestParseEmptyVariantIsKept(t *testing.T) {
	doc := `---
title: T
category: process
difficulty: beginner
purpose: x
tags: [a]
updated: 2025-01-01
---
## Python

### Empty One
`
	p := NewParser(DefaultTaxonomy())
	entry, _, err := p.Parse("x", doc)
	require.NoError(t, err)

	require.Len(t, entry.Variants["python"], 1)
	assert.Empty(t, entry.Variants["python"][0].Body, "empty payload is the validator's business, not the parser's")
}

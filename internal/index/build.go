package index

import (
	"sort"

	"github.com/tomehq/tome/internal/catalog"
)

// Build derives the full inverted index from a catalog. Given the same
// catalog it always produces the same index: the catalog walk is in id
// order, so every postings list comes out sorted by entry id, and tag
// postings additionally by tag.
func Build(c *catalog.Catalog) *Index {
	idx := &Index{
		Fingerprint:  c.Fingerprint(),
		Categories:   map[string][]string{},
		Difficulties: map[string][]string{},
		Languages:    map[string][]string{},
		Tags:         map[string][]TagPosting{},
		Text:         map[string][]Posting{},
	}

	text := map[string]map[string]Field{}          // token -> entry id -> fields
	tags := map[string]map[string]map[string]bool{} // token -> entry id -> original tags

	for _, e := range c.Entries() {
		idx.Categories[e.Category] = append(idx.Categories[e.Category], e.ID)
		idx.Difficulties[e.Difficulty] = append(idx.Difficulties[e.Difficulty], e.ID)
		for _, lang := range e.Languages() {
			idx.Languages[lang] = append(idx.Languages[lang], e.ID)
		}

		addText(text, e.ID, FieldTitle, e.Title)
		addText(text, e.ID, FieldPurpose, e.Purpose)
		for _, phrase := range e.WhenToUse {
			addText(text, e.ID, FieldWhenToUse, phrase)
		}

		for _, tag := range e.Tags {
			for _, tok := range TokenSet(tag) {
				byEntry := tags[tok]
				if byEntry == nil {
					byEntry = map[string]map[string]bool{}
					tags[tok] = byEntry
				}
				if byEntry[e.ID] == nil {
					byEntry[e.ID] = map[string]bool{}
				}
				byEntry[e.ID][tag] = true
			}
		}
	}

	for tok, byEntry := range text {
		ids := sortedKeys(byEntry)
		postings := make([]Posting, 0, len(ids))
		for _, id := range ids {
			postings = append(postings, Posting{EntryID: id, Fields: byEntry[id]})
		}
		idx.Text[tok] = postings
	}

	for tok, byEntry := range tags {
		ids := sortedKeys(byEntry)
		var postings []TagPosting
		for _, id := range ids {
			originals := sortedKeys(byEntry[id])
			for _, tag := range originals {
				postings = append(postings, TagPosting{EntryID: id, Tag: tag})
			}
		}
		idx.Tags[tok] = postings
	}

	return idx
}

func addText(acc map[string]map[string]Field, id string, field Field, s string) {
	for _, tok := range TokenSet(s) {
		byEntry := acc[tok]
		if byEntry == nil {
			byEntry = map[string]Field{}
			acc[tok] = byEntry
		}
		byEntry[id] |= field
	}
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

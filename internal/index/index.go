package index

import "strings"

// Field marks where inside an entry a text token occurred. Tag matches
// are tracked separately because they keep the original tag around for
// explainability.
type Field uint8

const (
	FieldTitle Field = 1 << iota
	FieldPurpose
	FieldWhenToUse
)

// Label names the fields set in f, for human-readable match reasons.
func (f Field) Label() string {
	parts := make([]string, 0, 3)
	if f&FieldTitle != 0 {
		parts = append(parts, "title")
	}
	if f&FieldPurpose != 0 {
		parts = append(parts, "purpose")
	}
	if f&FieldWhenToUse != 0 {
		parts = append(parts, "when_to_use")
	}
	return strings.Join(parts, ", ")
}

// Posting records that a token occurs in one entry, with the fields it
// occurred in.
type Posting struct {
	EntryID string `json:"entry_id"`
	Fields  Field  `json:"fields"`
}

// TagPosting records that a token occurs in one of an entry's tags.
type TagPosting struct {
	EntryID string `json:"entry_id"`
	Tag     string `json:"tag"`
}

// Index is the derived, read-only lookup structure over one catalog. It
// is rebuilt wholesale, never patched; Fingerprint names the catalog
// contents it was built from so staleness is always detectable.
type Index struct {
	Fingerprint  string                  `json:"fingerprint"`
	Categories   map[string][]string     `json:"categories"`
	Difficulties map[string][]string     `json:"difficulties"`
	Languages    map[string][]string     `json:"languages"`
	Tags         map[string][]TagPosting `json:"tags"`
	Text         map[string][]Posting    `json:"text"`
}

// EntryCount returns how many entries the index covers. Every entry
// lands in exactly one category list.
func (idx *Index) EntryCount() int {
	n := 0
	for _, ids := range idx.Categories {
		n += len(ids)
	}
	return n
}

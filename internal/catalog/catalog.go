package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Link is one declared related-entry edge. Targets are ids, never
// pointers; resolving them is the validator's job, so a dangling edge
// cannot poison the catalog.
type Link struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Catalog is the immutable collection of parsed entries. It is built
// once per load cycle and replaced wholesale on refresh, never mutated
// in place, which is what makes concurrent queries lock-free.
type Catalog struct {
	tax         Taxonomy
	entries     map[string]*Entry
	ids         []string
	fingerprint string
}

// New builds a Catalog from entries. Later duplicates of an id are
// dropped silently; use Loader when duplicate reporting matters.
func New(tax Taxonomy, entries []*Entry) *Catalog {
	m := make(map[string]*Entry, len(entries))
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, dup := m[e.ID]; dup {
			continue
		}
		m[e.ID] = e
		ids = append(ids, e.ID)
	}
	sort.Strings(ids)

	c := &Catalog{tax: tax, entries: m, ids: ids}
	c.fingerprint = fingerprint(c)
	return c
}

// Taxonomy returns the vocabulary the catalog was parsed against.
func (c *Catalog) Taxonomy() Taxonomy { return c.tax }

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.ids) }

// Get returns the entry with the given id.
func (c *Catalog) Get(id string) (*Entry, bool) {
	e, ok := c.entries[id]
	return e, ok
}

// IDs returns every entry id in sorted order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

// Entries returns every entry in id order.
func (c *Catalog) Entries() []*Entry {
	out := make([]*Entry, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.entries[id])
	}
	return out
}

// RelatedLinks returns every declared related edge, ordered by
// (from, to).
func (c *Catalog) RelatedLinks() []Link {
	var out []Link
	for _, id := range c.ids {
		for _, to := range c.entries[id].Related {
			out = append(out, Link{From: id, To: to})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// Fingerprint identifies the catalog contents. Any change to any entry
// produces a new fingerprint; a persisted index carries the fingerprint
// it was built from so staleness is always detectable.
func (c *Catalog) Fingerprint() string { return c.fingerprint }

func fingerprint(c *Catalog) string {
	h := sha256.New()
	for _, id := range c.ids {
		eh := sha256.Sum256([]byte(canonicalText(c.entries[id])))
		fmt.Fprintf(h, "%s %s\n", id, hex.EncodeToString(eh[:]))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// canonicalText serializes every field of an entry in a fixed order so
// the fingerprint reacts to any content change, payload included.
func canonicalText(e *Entry) string {
	var b strings.Builder
	w := func(k, v string) {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(v)
		b.WriteByte('\n')
	}
	w("id", e.ID)
	w("title", e.Title)
	w("category", e.Category)
	w("difficulty", e.Difficulty)
	w("purpose", e.Purpose)
	for _, s := range e.WhenToUse {
		w("when_to_use", s)
	}
	for _, s := range e.Tags {
		w("tag", s)
	}
	w("updated", e.Updated.UTC().Format(time.RFC3339))
	for _, s := range e.Related {
		w("related", s)
	}
	totals := make([]string, 0, len(e.Totals))
	for k := range e.Totals {
		totals = append(totals, k)
	}
	sort.Strings(totals)
	for _, k := range totals {
		w("totals."+k, strconv.Itoa(e.Totals[k]))
	}
	for _, lang := range e.Languages() {
		for _, v := range e.Variants[lang] {
			w("variant", lang+"/"+v.Name)
			w("library", v.Library)
			w("recommended", strconv.FormatBool(v.Recommended))
			w("body", v.Body)
		}
	}
	return b.String()
}

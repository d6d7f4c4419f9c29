package catalog

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Parser turns raw document text into Entry values. The taxonomy is
// fixed at construction, so the supported-language set is data rather
// than code. A Parser is stateless and safe for concurrent use.
type Parser struct {
	tax Taxonomy
}

func NewParser(tax Taxonomy) *Parser { return &Parser{tax: tax} }

// frontmatter mirrors the YAML header of one document. Related edges may
// be declared under any of the three accepted keys; they are merged.
type frontmatter struct {
	Title            string         `yaml:"title"`
	Category         string         `yaml:"category"`
	Difficulty       string         `yaml:"difficulty"`
	Purpose          string         `yaml:"purpose"`
	WhenToUse        []string       `yaml:"when_to_use"`
	Tags             []string       `yaml:"tags"`
	Updated          string         `yaml:"updated"`
	Related          []string       `yaml:"related"`
	RelatedPatterns  []string       `yaml:"related_patterns"`
	RelatedFunctions []string       `yaml:"related_functions"`
	Totals           map[string]int `yaml:"totals"`
}

// Parse reads one document and returns the Entry it describes. The error
// is always a *ParseError. Structural and metadata problems reject the
// document; soft problems, such as a section naming an unsupported
// language, come back as warnings and the offending section is skipped.
//
// Parse is a pure function of its input: lenient about payload quality,
// strict about metadata shape.
func (p *Parser) Parse(id, text string) (*Entry, []Warning, error) {
	head, body, ferr := splitFrontmatter(text)
	if ferr != nil {
		return nil, nil, ferr
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(head), &fm); err != nil {
		return nil, nil, &ParseError{Code: ErrBadFrontmatter, Detail: fmt.Sprintf("cannot decode metadata: %v", err)}
	}

	tags := cleanList(fm.Tags)
	switch {
	case strings.TrimSpace(fm.Title) == "":
		return nil, nil, missingField("title")
	case strings.TrimSpace(fm.Category) == "":
		return nil, nil, missingField("category")
	case strings.TrimSpace(fm.Difficulty) == "":
		return nil, nil, missingField("difficulty")
	case strings.TrimSpace(fm.Purpose) == "":
		return nil, nil, missingField("purpose")
	case len(tags) == 0:
		return nil, nil, missingField("tags")
	case strings.TrimSpace(fm.Updated) == "":
		return nil, nil, missingField("updated")
	}

	updated, err := parseDate(fm.Updated)
	if err != nil {
		return nil, nil, &ParseError{
			Code:   ErrInvalidField,
			Field:  "updated",
			Detail: fmt.Sprintf("cannot parse date %q: use YYYY-MM-DD", fm.Updated),
		}
	}

	entry := &Entry{
		ID:         id,
		Title:      strings.TrimSpace(fm.Title),
		Category:   p.canonicalOrLower(p.tax.CanonicalCategory, fm.Category),
		Difficulty: p.canonicalOrLower(p.tax.CanonicalDifficulty, fm.Difficulty),
		Purpose:    strings.TrimSpace(fm.Purpose),
		WhenToUse:  cleanList(fm.WhenToUse),
		Tags:       tags,
		Updated:    updated,
		Related:    normalizeRelated(fm.Related, fm.RelatedPatterns, fm.RelatedFunctions),
		Totals:     fm.Totals,
	}

	warnings, perr := p.parseBody(entry, body)
	if perr != nil {
		return nil, warnings, perr
	}
	return entry, warnings, nil
}

// canonicalOrLower prefers the configured spelling and otherwise keeps
// the value lowercased, so the validator can still report it.
func (p *Parser) canonicalOrLower(canon func(string) (string, bool), v string) string {
	if c, ok := canon(v); ok {
		return c
	}
	return strings.ToLower(strings.TrimSpace(v))
}

// parseBody scans the markdown body for language sections and variant
// sub-headers. Fenced code blocks are left untouched so payload that
// happens to contain heading-like lines cannot derail the scan.
func (p *Parser) parseBody(entry *Entry, body string) ([]Warning, *ParseError) {
	var warnings []Warning
	variants := map[string][]Variant{}
	seen := map[string]bool{}

	lang := ""        // current canonical language, "" before the first section
	skipping := false // inside a section whose language is unsupported
	inFence := false
	var cur *Variant
	var buf []string

	flush := func() {
		if cur == nil {
			return
		}
		cur.Body = strings.TrimSpace(strings.Join(buf, "\n"))
		variants[lang] = append(variants[lang], *cur)
		cur = nil
		buf = nil
	}

	for _, raw := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(raw)

		fence := strings.HasPrefix(trimmed, "```")
		if fence {
			inFence = !inFence
		}

		if !inFence && !fence {
			if name, ok := heading(trimmed, "## "); ok {
				flush()
				canon, known := p.tax.CanonicalLanguage(name)
				if !known {
					warnings = append(warnings, Warning{
						Code:   WarnUnknownLanguage,
						Detail: fmt.Sprintf("skipping section %q: language not in the supported set", name),
					})
					lang, skipping = "", true
					continue
				}
				lang, skipping = canon, false
				continue
			}
			if name, ok := heading(trimmed, "### "); ok {
				flush()
				if skipping {
					continue
				}
				if lang == "" {
					warnings = append(warnings, Warning{
						Code:   WarnOrphanVariant,
						Detail: fmt.Sprintf("variant %q appears before any language section", name),
					})
					continue
				}
				name, rec := splitRecommended(name)
				if name == "" {
					return warnings, &ParseError{Code: ErrInvalidField, Field: "variant", Detail: "variant heading has no name"}
				}
				key := lang + "\x00" + name
				if seen[key] {
					return warnings, &ParseError{
						Code:   ErrDuplicateVariant,
						Field:  name,
						Detail: fmt.Sprintf("language %s declares variant %q twice", lang, name),
					}
				}
				seen[key] = true
				cur = &Variant{Name: name, Library: "none", Recommended: rec}
				continue
			}
		}

		if cur == nil {
			continue
		}
		if !inFence && !fence && cur.Library == "none" {
			if ref, ok := libraryLine(trimmed); ok {
				cur.Library = ref
				continue
			}
		}
		buf = append(buf, raw)
	}
	flush()

	entry.Variants = variants
	return warnings, nil
}

// splitFrontmatter separates the YAML header from the markdown body. The
// document must open with a --- fence and close it with another.
func splitFrontmatter(text string) (head, body string, err *ParseError) {
	if !strings.HasPrefix(text, "---") {
		return "", "", &ParseError{Code: ErrBadFrontmatter, Detail: "document does not start with a metadata block"}
	}
	parts := strings.SplitN(text, "---", 3)
	if len(parts) < 3 {
		return "", "", &ParseError{Code: ErrBadFrontmatter, Detail: "metadata block is not terminated"}
	}
	return parts[1], parts[2], nil
}

// heading returns the text of a markdown heading at exactly the level of
// the given prefix.
func heading(trimmed, prefix string) (string, bool) {
	if !strings.HasPrefix(trimmed, prefix) {
		return "", false
	}
	rest := strings.TrimSpace(trimmed[len(prefix):])
	if rest == "" || strings.HasPrefix(rest, "#") {
		return "", false
	}
	return rest, true
}

// splitRecommended strips a trailing "(recommended)" marker from a
// variant heading.
func splitRecommended(name string) (string, bool) {
	const marker = "(recommended)"
	if strings.HasSuffix(strings.ToLower(name), marker) {
		return strings.TrimSpace(name[:len(name)-len(marker)]), true
	}
	return name, false
}

// libraryLine matches the "- library: X" bullet that names a variant's
// dependency.
func libraryLine(trimmed string) (string, bool) {
	const prefix = "- library:"
	if !strings.HasPrefix(strings.ToLower(trimmed), prefix) {
		return "", false
	}
	ref := strings.TrimSpace(trimmed[len(prefix):])
	if ref == "" {
		return "", false
	}
	return ref, true
}

func missingField(name string) *ParseError {
	return &ParseError{Code: ErrMissingField, Field: name, Detail: "required metadata field is missing or empty"}
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// cleanList trims items and drops empties, keeping order and duplicates.
// Duplicate detection is the validator's job, not the parser's.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it != "" {
			out = append(out, it)
		}
	}
	return out
}

// normalizeRelated merges related-edge declarations, stripping a
// trailing .md so authors can reference either ids or file names.
func normalizeRelated(groups ...[]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, group := range groups {
		for _, it := range group {
			it = strings.TrimSuffix(strings.TrimSpace(it), ".md")
			if it == "" || seen[it] {
				continue
			}
			seen[it] = true
			out = append(out, it)
		}
	}
	return out
}

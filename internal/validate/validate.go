package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tomehq/tome/internal/catalog"
)

// Severity of a violation. Errors should fail a strict host; warnings
// are advisory. The validator itself never halts anything: violations
// are data and the caller decides what is fatal.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Rule identifiers, one per integrity check.
const (
	RuleUnresolvedReference  = "unresolved-reference"
	RuleSelfReference        = "self-reference"
	RuleNoVariants           = "no-variants"
	RuleEmptyVariant         = "empty-variant"
	RuleDuplicateVariant     = "duplicate-variant"
	RuleDuplicateRecommended = "duplicate-recommended"
	RuleMissingRecommended   = "missing-recommended"
	RuleEmptyTags            = "empty-tags"
	RuleDuplicateTag         = "duplicate-tag"
	RuleDuplicateTitle       = "duplicate-title"
	RuleUnknownCategory      = "unknown-category"
	RuleUnknownDifficulty    = "unknown-difficulty"
	RuleUnknownLanguage      = "unknown-language"
	RuleCountMismatch        = "count-mismatch"
)

// Violation is one failed integrity rule.
type Violation struct {
	Severity Severity `json:"severity"`
	EntryID  string   `json:"entry_id"`
	Rule     string   `json:"rule"`
	Message  string   `json:"message"`
}

// Report is the outcome of validating one catalog. Violations are in
// deterministic order: entries by id, rules in a fixed order within an
// entry.
type Report struct {
	Fingerprint string      `json:"fingerprint"`
	Entries     int         `json:"entries"`
	Violations  []Violation `json:"violations"`
}

// Errors counts error-severity violations.
func (r *Report) Errors() int { return r.count(SeverityError) }

// Warnings counts warning-severity violations.
func (r *Report) Warnings() int { return r.count(SeverityWarning) }

// OK reports whether the catalog passed without errors.
func (r *Report) OK() bool { return r.Errors() == 0 }

func (r *Report) count(sev Severity) int {
	n := 0
	for _, v := range r.Violations {
		if v.Severity == sev {
			n++
		}
	}
	return n
}

func (r *Report) add(sev Severity, id, rule, msg string) {
	r.Violations = append(r.Violations, Violation{Severity: sev, EntryID: id, Rule: rule, Message: msg})
}

// Check runs every integrity rule over the catalog. It never mutates the
// catalog and never fails: the report carries everything it found.
func Check(c *catalog.Catalog) *Report {
	r := &Report{Fingerprint: c.Fingerprint(), Entries: c.Len()}
	tax := c.Taxonomy()

	categoryCounts := map[string]int{}
	for _, e := range c.Entries() {
		categoryCounts[strings.ToLower(e.Category)]++
	}

	// First-seen (category, title) owners, for duplicate-title checks.
	titles := map[string]string{}

	for _, e := range c.Entries() {
		r.checkMetadata(tax, e)
		r.checkReferences(c, e)
		r.checkVariants(tax, e)
		r.checkTotals(c.Len(), categoryCounts, e)

		key := strings.ToLower(e.Category) + "\x00" + strings.ToLower(e.Title)
		if first, dup := titles[key]; dup {
			r.add(SeverityWarning, e.ID, RuleDuplicateTitle,
				fmt.Sprintf("title %q duplicates entry %s in category %s", e.Title, first, e.Category))
		} else {
			titles[key] = e.ID
		}
	}
	return r
}

func (r *Report) checkMetadata(tax catalog.Taxonomy, e *catalog.Entry) {
	if _, ok := tax.CanonicalCategory(e.Category); !ok {
		r.add(SeverityError, e.ID, RuleUnknownCategory,
			fmt.Sprintf("category %q is not in the configured set", e.Category))
	}
	if _, ok := tax.CanonicalDifficulty(e.Difficulty); !ok {
		r.add(SeverityError, e.ID, RuleUnknownDifficulty,
			fmt.Sprintf("difficulty %q is not in the configured set", e.Difficulty))
	}
	if len(e.Tags) == 0 {
		r.add(SeverityError, e.ID, RuleEmptyTags, "entry declares no tags")
	}
	seen := map[string]bool{}
	for _, tag := range e.Tags {
		folded := strings.ToLower(tag)
		if seen[folded] {
			r.add(SeverityWarning, e.ID, RuleDuplicateTag, fmt.Sprintf("tag %q appears more than once", tag))
			continue
		}
		seen[folded] = true
	}
}

func (r *Report) checkReferences(c *catalog.Catalog, e *catalog.Entry) {
	for _, target := range e.Related {
		if target == e.ID {
			r.add(SeverityWarning, e.ID, RuleSelfReference, "entry relates to itself")
			continue
		}
		if _, ok := c.Get(target); !ok {
			r.add(SeverityError, e.ID, RuleUnresolvedReference,
				fmt.Sprintf("related entry %q does not exist", target))
		}
	}
}

func (r *Report) checkVariants(tax catalog.Taxonomy, e *catalog.Entry) {
	if e.VariantCount() == 0 {
		r.add(SeverityError, e.ID, RuleNoVariants, "entry has no variants in any language")
		return
	}
	for _, lang := range e.Languages() {
		if _, ok := tax.CanonicalLanguage(lang); !ok {
			r.add(SeverityError, e.ID, RuleUnknownLanguage,
				fmt.Sprintf("language %q is not in the supported set", lang))
		}

		recommended := 0
		names := map[string]bool{}
		for _, v := range e.Variants[lang] {
			if names[v.Name] {
				r.add(SeverityError, e.ID, RuleDuplicateVariant,
					fmt.Sprintf("language %s declares variant %q twice", lang, v.Name))
			}
			names[v.Name] = true
			if v.Recommended {
				recommended++
			}
			if strings.TrimSpace(v.Body) == "" {
				r.add(SeverityWarning, e.ID, RuleEmptyVariant,
					fmt.Sprintf("variant %q (%s) has no implementation content", v.Name, lang))
			}
		}
		switch {
		case recommended > 1:
			r.add(SeverityError, e.ID, RuleDuplicateRecommended,
				fmt.Sprintf("language %s has %d recommended variants, want at most one", lang, recommended))
		case recommended == 0:
			r.add(SeverityWarning, e.ID, RuleMissingRecommended,
				fmt.Sprintf("language %s has no recommended variant", lang))
		}
	}
}

// checkTotals verifies declared aggregate counts bit-exactly against the
// loaded catalog. The key "all" means the whole catalog; any other key
// names a category.
func (r *Report) checkTotals(total int, categoryCounts map[string]int, e *catalog.Entry) {
	if len(e.Totals) == 0 {
		return
	}
	keys := make([]string, 0, len(e.Totals))
	for k := range e.Totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		declared := e.Totals[key]
		actual := total
		if key != "all" {
			actual = categoryCounts[strings.ToLower(key)]
		}
		if declared != actual {
			r.add(SeverityError, e.ID, RuleCountMismatch,
				fmt.Sprintf("declared %s count is %d, catalog has %d", key, declared, actual))
		}
	}
}

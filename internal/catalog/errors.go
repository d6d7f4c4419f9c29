package catalog

import "fmt"

// ParseError codes.
const (
	ErrBadFrontmatter   = "bad-frontmatter"
	ErrMissingField     = "missing-field"
	ErrInvalidField     = "invalid-field"
	ErrDuplicateVariant = "duplicate-variant"
)

// ParseError reports why a document could not become an Entry.
type ParseError struct {
	Code   string
	Field  string
	Detail string
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// Warning codes.
const (
	WarnUnknownLanguage = "unknown-language"
	WarnOrphanVariant   = "orphan-variant"
)

// Warning is a non-fatal parse observation. The entry is still usable.
type Warning struct {
	Code   string
	Detail string
}

func (w Warning) String() string { return fmt.Sprintf("%s: %s", w.Code, w.Detail) }

// DuplicateIDError records a source whose id collides with an earlier
// source. The earlier definition wins.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate entry id %q: first definition wins", e.ID)
}

// SourceError ties a load failure to the source that caused it.
type SourceError struct {
	SourceID string `json:"source_id"`
	Err      error  `json:"-"`
}

func (e SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.SourceID, e.Err)
}

// SourceWarning ties a parse warning to its source.
type SourceWarning struct {
	SourceID string `json:"source_id"`
	Message  string `json:"message"`
}

package store

import (
	"context"

	"github.com/tomehq/tome/internal/catalog"
)

// Static serves a fixed set of documents from memory, in declaration
// order. Useful for tests and embedded starter catalogs.
type Static []catalog.Source

func (s Static) List(ctx context.Context) ([]catalog.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]catalog.Source, len(s))
	copy(out, s)
	return out, nil
}

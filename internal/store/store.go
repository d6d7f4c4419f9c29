// Package store supplies raw entry documents to the catalog loader. The
// engine core never touches storage itself; it only sees (id, text)
// pairs, so a catalog can live in a directory tree, a synced database,
// or an in-memory fixture without the core noticing.
package store

import (
	"context"

	"github.com/tomehq/tome/internal/catalog"
)

// Store lists every document of one catalog.
type Store interface {
	// List returns the documents as (id, text) pairs. Order defines
	// duplicate-id precedence downstream, so implementations must be
	// deterministic about it.
	List(ctx context.Context) ([]catalog.Source, error)
}

// Package engine ties the stores, loader, index and query logic into one
// long-lived component with an atomically published snapshot: readers are
// lock-free and never observe a partially rebuilt catalog or index.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/tomehq/tome/internal/catalog"
	"github.com/tomehq/tome/internal/index"
	"github.com/tomehq/tome/internal/query"
	"github.com/tomehq/tome/internal/stats"
	"github.com/tomehq/tome/internal/store"
	"github.com/tomehq/tome/internal/validate"
)

// ErrNotReady is returned for reads before the first successful Refresh.
var ErrNotReady = errors.New("no catalog snapshot published yet")

// Snapshot is one immutable (catalog, index) pair plus the load problems
// that produced it. Whole snapshots are swapped in; nothing inside one
// ever changes.
type Snapshot struct {
	Catalog  *catalog.Catalog
	Index    *index.Index
	Errors   []catalog.SourceError
	Warnings []catalog.SourceWarning
	BuiltAt  time.Time
}

// Engine owns the current snapshot and rebuilds it on demand.
type Engine struct {
	store    store.Store
	tax      catalog.Taxonomy
	log      *zap.SugaredLogger
	cacheDir string
	workers  int

	refreshMu sync.Mutex
	current   atomic.Pointer[Snapshot]
}

type Option func(*Engine)

// WithLogger attaches a logger. Without it the engine stays silent.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithCacheDir points the engine at an on-disk index cache. The cache is
// a shortcut, never a source of truth: it is used only when its
// fingerprint matches the freshly loaded catalog, and Refresh never
// writes it.
func WithCacheDir(dir string) Option {
	return func(e *Engine) { e.cacheDir = dir }
}

// WithWorkers caps the parse worker pool used during Refresh.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

func New(st store.Store, tax catalog.Taxonomy, opts ...Option) *Engine {
	e := &Engine{store: st, tax: tax, log: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Refresh lists sources, rebuilds catalog and index, and publishes the
// new snapshot with a single pointer swap. Concurrent refreshes are
// serialized; readers keep the previous snapshot until the swap. On
// error or cancellation the previous snapshot stays published.
func (e *Engine) Refresh(ctx context.Context) (*Snapshot, error) {
	e.refreshMu.Lock()
	defer e.refreshMu.Unlock()

	start := time.Now()
	sources, err := e.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot list catalog sources: %w", err)
	}

	opts := []catalog.LoaderOption{catalog.WithLogger(e.log)}
	if e.workers > 0 {
		opts = append(opts, catalog.WithWorkers(e.workers))
	}
	res, err := catalog.NewLoader(e.tax, opts...).Load(ctx, sources)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Catalog:  res.Catalog,
		Index:    e.buildIndex(res.Catalog),
		Errors:   res.Errors,
		Warnings: res.Warnings,
		BuiltAt:  time.Now().UTC(),
	}
	e.current.Store(snap)
	e.log.Infow("snapshot published",
		"entries", res.Catalog.Len(),
		"load_errors", len(res.Errors),
		"warnings", len(res.Warnings),
		"fingerprint", shortFingerprint(res.Catalog.Fingerprint()),
		"took", time.Since(start))
	return snap, nil
}

// buildIndex prefers a cached index whose fingerprint matches the fresh
// catalog and falls back to a full rebuild.
func (e *Engine) buildIndex(c *catalog.Catalog) *index.Index {
	if e.cacheDir != "" {
		idx, _, err := index.LoadCache(e.cacheDir)
		if err == nil && idx.Fingerprint == c.Fingerprint() {
			e.log.Debugw("index cache hit", "dir", e.cacheDir)
			return idx
		}
		if err != nil {
			e.log.Debugw("index cache unusable", "dir", e.cacheDir, "error", err)
		} else {
			e.log.Debugw("index cache stale", "dir", e.cacheDir)
		}
	}
	return index.Build(c)
}

// Snapshot returns the currently published snapshot, if any.
func (e *Engine) Snapshot() (*Snapshot, bool) {
	s := e.current.Load()
	return s, s != nil
}

func (e *Engine) snapshot() (*Snapshot, error) {
	if s := e.current.Load(); s != nil {
		return s, nil
	}
	return nil, ErrNotReady
}

// Query runs one retrieval request against the current snapshot.
func (e *Engine) Query(req query.Request) ([]query.Result, error) {
	s, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	return query.Search(s.Index, s.Catalog, req)
}

// Validate runs the integrity rules against the current snapshot.
func (e *Engine) Validate() (*validate.Report, error) {
	s, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	return validate.Check(s.Catalog), nil
}

// Stats summarizes the current snapshot.
func (e *Engine) Stats() (*stats.Summary, error) {
	s, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	return stats.Summarize(s.Catalog), nil
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}

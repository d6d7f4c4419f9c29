package catalog

import (
	"context"
	"runtime"
	"sync"

	"go.uber.org/zap"
)

// Source is one raw document handed to the loader by a storage
// collaborator. The id comes from storage (file path, database key), not
// from the document itself.
type Source struct {
	ID   string
	Text string
}

// LoadResult carries the partial catalog plus everything that went wrong
// on the way there. A failed source never aborts the load.
type LoadResult struct {
	Catalog  *Catalog
	Errors   []SourceError
	Warnings []SourceWarning
}

// Loader parses sources into a Catalog. Documents are parsed on a small
// worker pool since they are independent of each other, but duplicate-id
// precedence always follows source order, never completion order.
type Loader struct {
	tax     Taxonomy
	workers int
	log     *zap.SugaredLogger
}

type LoaderOption func(*Loader)

// WithWorkers caps the parse worker pool. Values below one are ignored.
func WithWorkers(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithLogger attaches a logger for per-source failure reporting.
func WithLogger(log *zap.SugaredLogger) LoaderOption {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

func NewLoader(tax Taxonomy, opts ...LoaderOption) *Loader {
	l := &Loader{tax: tax, workers: runtime.NumCPU(), log: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load parses every source and assembles a catalog from the ones that
// parse. Parse failures and duplicate ids are collected in the result,
// with the first-seen entry winning any id collision. Load returns an
// error only when ctx is cancelled.
func (l *Loader) Load(ctx context.Context, sources []Source) (*LoadResult, error) {
	type parsed struct {
		entry    *Entry
		warnings []Warning
		err      error
	}
	results := make([]parsed, len(sources))

	workers := l.workers
	if workers > len(sources) {
		workers = len(sources)
	}
	if workers < 1 {
		workers = 1
	}

	parser := NewParser(l.tax)
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				entry, warnings, err := parser.Parse(sources[i].ID, sources[i].Text)
				results[i] = parsed{entry: entry, warnings: warnings, err: err}
			}
		}()
	}

feed:
	for i := range sources {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Merge in source order so duplicate-id precedence is deterministic
	// regardless of which worker finished first.
	res := &LoadResult{}
	entries := make([]*Entry, 0, len(sources))
	seen := make(map[string]bool, len(sources))
	for i, src := range sources {
		r := results[i]
		for _, w := range r.warnings {
			res.Warnings = append(res.Warnings, SourceWarning{SourceID: src.ID, Message: w.String()})
		}
		if r.err != nil {
			l.log.Warnw("entry rejected", "id", src.ID, "error", r.err)
			res.Errors = append(res.Errors, SourceError{SourceID: src.ID, Err: r.err})
			continue
		}
		if seen[src.ID] {
			err := &DuplicateIDError{ID: src.ID}
			l.log.Warnw("entry rejected", "id", src.ID, "error", err)
			res.Errors = append(res.Errors, SourceError{SourceID: src.ID, Err: err})
			continue
		}
		seen[src.ID] = true
		entries = append(entries, r.entry)
	}

	res.Catalog = New(l.tax, entries)
	l.log.Debugw("catalog loaded",
		"entries", res.Catalog.Len(),
		"errors", len(res.Errors),
		"warnings", len(res.Warnings))
	return res, nil
}

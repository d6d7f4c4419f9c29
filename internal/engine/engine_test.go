package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomehq/tome/internal/catalog"
	"github.com/tomehq/tome/internal/index"
	"github.com/tomehq/tome/internal/query"
	"github.com/tomehq/tome/internal/store"
)

func sourceDoc(title, category string, tags string) string {
	return fmt.Sprintf(`---
title: %s
category: %s
difficulty: beginner
purpose: purpose of %s
tags: [%s]
updated: 2025-02-01
---
## Python

### Default (recommended)
body
`, title, category, title, tags)
}

func testStore() store.Static {
	return store.Static{
		{ID: "observer", Text: sourceDoc("Observer", "behavioral", "event, pub-sub")},
		{ID: "singleton", Text: sourceDoc("Singleton", "creational", "singleton")},
		{ID: "broken", Text: "no frontmatter here"},
	}
}

func TestRefreshPublishesSnapshot(t *testing.T) {
	eng := New(testStore(), catalog.DefaultTaxonomy())

	_, ok := eng.Snapshot()
	assert.False(t, ok)

	snap, err := eng.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, snap.Catalog.Len())
	require.Len(t, snap.Errors, 1)
	assert.Equal(t, "broken", snap.Errors[0].SourceID)
	assert.Equal(t, snap.Catalog.Fingerprint(), snap.Index.Fingerprint)
	assert.False(t, snap.BuiltAt.IsZero())

	published, ok := eng.Snapshot()
	require.True(t, ok)
	assert.Same(t, snap, published)
}

func TestReadsBeforeFirstRefresh(t *testing.T) {
	eng := New(testStore(), catalog.DefaultTaxonomy())

	_, err := eng.Query(query.Request{Need: "event"})
	require.ErrorIs(t, err, ErrNotReady)
	_, err = eng.Validate()
	require.ErrorIs(t, err, ErrNotReady)
	_, err = eng.Stats()
	require.ErrorIs(t, err, ErrNotReady)
}

func TestEngineQueryValidateStats(t *testing.T) {
	eng := New(testStore(), catalog.DefaultTaxonomy())
	_, err := eng.Refresh(context.Background())
	require.NoError(t, err)

	results, err := eng.Query(query.Request{Need: "event"})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "observer", results[0].EntryID)

	report, err := eng.Validate()
	require.NoError(t, err)
	assert.True(t, report.OK())

	summary, err := eng.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Entries)
}

func TestRefreshKeepsOldSnapshotOnFailure(t *testing.T) {
	st := &flakyStore{good: testStore()}
	eng := New(st, catalog.DefaultTaxonomy())

	good, err := eng.Refresh(context.Background())
	require.NoError(t, err)

	st.fail = true
	_, err = eng.Refresh(context.Background())
	require.Error(t, err)

	current, ok := eng.Snapshot()
	require.True(t, ok)
	assert.Same(t, good, current, "a failed refresh must not unpublish the last snapshot")
}

type flakyStore struct {
	good store.Static
	fail bool
}

func (s *flakyStore) List(ctx context.Context) ([]catalog.Source, error) {
	if s.fail {
		return nil, fmt.Errorf("storage offline")
	}
	return s.good.List(ctx)
}

func TestRefreshCancelled(t *testing.T) {
	eng := New(testStore(), catalog.DefaultTaxonomy())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.Refresh(ctx)
	require.Error(t, err)
	_, ok := eng.Snapshot()
	assert.False(t, ok)
}

func TestRefreshUsesMatchingCache(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "index")
	st := testStore()

	// Build and persist an index for the same sources.
	plain := New(st, catalog.DefaultTaxonomy())
	snap, err := plain.Refresh(context.Background())
	require.NoError(t, err)
	require.NoError(t, index.WriteCache(cacheDir, snap.Index))

	cached := New(st, catalog.DefaultTaxonomy(), WithCacheDir(cacheDir))
	cachedSnap, err := cached.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snap.Index, cachedSnap.Index)
}

func TestRefreshIgnoresStaleCache(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "index")

	// Cache built from a different catalog.
	other := New(store.Static{{ID: "only", Text: sourceDoc("Only", "process", "x")}}, catalog.DefaultTaxonomy())
	otherSnap, err := other.Refresh(context.Background())
	require.NoError(t, err)
	require.NoError(t, index.WriteCache(cacheDir, otherSnap.Index))

	eng := New(testStore(), catalog.DefaultTaxonomy(), WithCacheDir(cacheDir))
	snap, err := eng.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snap.Catalog.Fingerprint(), snap.Index.Fingerprint,
		"stale cache must be ignored in favour of a fresh build")
}

func TestConcurrentReadersDuringRefresh(t *testing.T) {
	eng := New(testStore(), catalog.DefaultTaxonomy())
	_, err := eng.Refresh(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				results, err := eng.Query(query.Request{Need: "event"})
				assert.NoError(t, err)
				assert.NotEmpty(t, results)
			}
		}()
	}
	for i := 0; i < 5; i++ {
		_, err := eng.Refresh(context.Background())
		require.NoError(t, err)
	}
	wg.Wait()
}

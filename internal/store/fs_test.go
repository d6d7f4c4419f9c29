package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFSListWalksTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "singleton.md", "one")
	writeFile(t, root, "behavioral/observer.md", "two")
	writeFile(t, root, "behavioral/state.md", "three")
	writeFile(t, root, "README.md", "skip")
	writeFile(t, root, ".hidden.md", "skip")
	writeFile(t, root, "_drafts/wip.md", "skip")
	writeFile(t, root, "notes.txt", "skip")

	sources, err := NewFS(root).List(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(sources))
	for _, s := range sources {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"behavioral/observer", "behavioral/state", "singleton"}, ids)
	assert.Equal(t, "two", sources[0].Text)
}

func TestFSListStableOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "c.md", "c")
	writeFile(t, root, "a.md", "a")
	writeFile(t, root, "b/nested.md", "n")

	first, err := NewFS(root).List(context.Background())
	require.NoError(t, err)
	second, err := NewFS(root).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFSListMissingRoot(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "nope")).List(context.Background())
	require.ErrorContains(t, err, "does not exist")
}

func TestFSListRootIsFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "file.md", "x")

	_, err := NewFS(filepath.Join(root, "file.md")).List(context.Background())
	require.ErrorContains(t, err, "not a directory")
}

func TestFSListHonoursCancellation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFS(root).List(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestStaticList(t *testing.T) {
	st := Static{{ID: "a", Text: "x"}, {ID: "b", Text: "y"}}

	sources, err := st.List(context.Background())
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "a", sources[0].ID)

	// The returned slice is a copy; mutating it cannot corrupt the store.
	sources[0].ID = "mutated"
	again, err := st.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].ID)
}

package index

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache", "index")
	idx := Build(fixtureCatalog())

	require.NoError(t, WriteCache(dir, idx))

	loaded, manifest, err := LoadCache(dir)
	require.NoError(t, err)
	assert.Equal(t, idx, loaded)
	assert.Equal(t, idx.Fingerprint, manifest.Fingerprint)
	assert.Equal(t, 3, manifest.Entries)
	assert.Equal(t, cacheVersion, manifest.CacheVersion)
}

func TestCacheOverwriteSwapsAtomically(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	c := fixtureCatalog()
	idx := Build(c)

	require.NoError(t, WriteCache(dir, idx))

	// Second write replaces the first in place; no .bak debris remains.
	require.NoError(t, WriteCache(dir, idx))
	_, err := os.Stat(dir + ".bak")
	assert.True(t, os.IsNotExist(err))

	loaded, _, err := LoadCache(dir)
	require.NoError(t, err)
	assert.Equal(t, idx.Fingerprint, loaded.Fingerprint)
}

func TestLoadCacheMissingDir(t *testing.T) {
	_, _, err := LoadCache(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestLoadCacheRejectsTamperedManifest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	require.NoError(t, WriteCache(dir, Build(fixtureCatalog())))

	path := filepath.Join(dir, manifestFile)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var manifest Manifest
	require.NoError(t, json.Unmarshal(raw, &manifest))
	manifest.Fingerprint = "0000"
	edited, err := json.Marshal(manifest)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, edited, 0o644))

	_, _, err = LoadCache(dir)
	require.ErrorContains(t, err, "inconsistent")
}

func TestLoadCacheRejectsUnknownVersion(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	require.NoError(t, WriteCache(dir, Build(fixtureCatalog())))

	path := filepath.Join(dir, manifestFile)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var manifest Manifest
	require.NoError(t, json.Unmarshal(raw, &manifest))
	manifest.CacheVersion = 99
	edited, err := json.Marshal(manifest)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, edited, 0o644))

	_, _, err = LoadCache(dir)
	require.ErrorContains(t, err, "not supported")
}

func TestWriteCacheIsByteStable(t *testing.T) {
	c := fixtureCatalog()
	dirA := filepath.Join(t.TempDir(), "a")
	dirB := filepath.Join(t.TempDir(), "b")

	require.NoError(t, WriteCache(dirA, Build(c)))
	require.NoError(t, WriteCache(dirB, Build(c)))

	pa, err := os.ReadFile(filepath.Join(dirA, postingsFile))
	require.NoError(t, err)
	pb, err := os.ReadFile(filepath.Join(dirB, postingsFile))
	require.NoError(t, err)
	assert.Equal(t, pa, pb)
}

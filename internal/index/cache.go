package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	manifestFile = "manifest.json"
	postingsFile = "postings.json"

	// cacheVersion guards against reading artifacts written by an
	// incompatible layout.
	cacheVersion = 1

	lockTimeout       = 5 * time.Second
	lockRetryInterval = 200 * time.Millisecond
)

// Manifest describes a cached index and the catalog it was built from.
type Manifest struct {
	CacheVersion int    `json:"cache_version"`
	CreatedAt    string `json:"created_at"`
	Fingerprint  string `json:"fingerprint"`
	Entries      int    `json:"entries"`
	PostingsFile string `json:"postings_file"`
}

// WriteCache persists idx under dir. Artifacts are staged in a sibling
// temp directory and swapped in with renames, so a concurrent reader
// never sees a half-written cache; a lock file serializes writers across
// processes. The cache is a shortcut, never a source of truth: readers
// must compare fingerprints before trusting it.
func WriteCache(dir string, idx *Index) error {
	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("cannot create cache parent %s: %w", parent, err)
	}

	lock, err := acquireCacheLock(filepath.Join(parent, ".index.lock"))
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	tmp, err := os.MkdirTemp(parent, ".index-*")
	if err != nil {
		return fmt.Errorf("cannot create staging dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	postings, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(tmp, postingsFile), postings, 0o644); err != nil {
		return fmt.Errorf("cannot write postings: %w", err)
	}

	manifest := Manifest{
		CacheVersion: cacheVersion,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
		Fingerprint:  idx.Fingerprint,
		Entries:      idx.EntryCount(),
		PostingsFile: postingsFile,
	}
	mb, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(tmp, manifestFile), mb, 0o644); err != nil {
		return fmt.Errorf("cannot write manifest: %w", err)
	}

	return atomicSwap(tmp, dir)
}

// LoadCache reads a cached index from dir. Callers must compare the
// returned fingerprint against the live catalog before using the index.
func LoadCache(dir string) (*Index, *Manifest, error) {
	mb, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read cache manifest: %w", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(mb, &manifest); err != nil {
		return nil, nil, fmt.Errorf("cannot parse cache manifest: %w", err)
	}
	if manifest.CacheVersion != cacheVersion {
		return nil, nil, fmt.Errorf("cache version %d is not supported (want %d)", manifest.CacheVersion, cacheVersion)
	}
	if manifest.PostingsFile == "" {
		manifest.PostingsFile = postingsFile
	}

	pb, err := os.ReadFile(filepath.Join(dir, manifest.PostingsFile))
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read postings: %w", err)
	}
	var idx Index
	if err := json.Unmarshal(pb, &idx); err != nil {
		return nil, nil, fmt.Errorf("cannot parse postings: %w", err)
	}
	if idx.Fingerprint != manifest.Fingerprint {
		return nil, nil, fmt.Errorf("cache is inconsistent: manifest fingerprint %s, postings fingerprint %s",
			manifest.Fingerprint, idx.Fingerprint)
	}
	return &idx, &manifest, nil
}

// acquireCacheLock polls for the cache lock until the timeout elapses.
func acquireCacheLock(path string) (*flock.Flock, error) {
	lock := flock.New(path)
	deadline := time.Now().Add(lockTimeout)
	for {
		ok, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("cannot acquire cache lock %s: %w", path, err)
		}
		if ok {
			return lock, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("cache is locked by another process (lock file: %s)", path)
		}
		time.Sleep(lockRetryInterval)
	}
}

// atomicSwap promotes the staged srcDir to destDir, keeping a .bak to
// roll back to when the activation rename fails.
func atomicSwap(srcDir, destDir string) error {
	backup := destDir + ".bak"
	if _, err := os.Stat(destDir); err == nil {
		if err := os.Rename(destDir, backup); err != nil {
			return fmt.Errorf("cannot move old cache aside: %w", err)
		}
	}
	if err := os.Rename(srcDir, destDir); err != nil {
		if _, statErr := os.Stat(backup); statErr == nil {
			_ = os.Rename(backup, destDir)
		}
		return fmt.Errorf("cannot activate new cache: %w", err)
	}
	_ = os.RemoveAll(backup)
	return nil
}

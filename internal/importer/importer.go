// Package importer seeds a catalog directory from an existing tree of
// entry documents, with content-hash deduplication and conflict side
// files instead of silent overwrites.
package importer

import (
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ConflictPair records one incoming document that clashed with an
// existing one of the same id but different content.
type ConflictPair struct {
	Original string // path of the document already in the catalog
	Conflict string // path where the incoming version was kept for review
}

// Result is returned by ImportDir.
type Result struct {
	Imported  int // documents copied into the catalog
	Skipped   int // identical duplicates left alone
	Ignored   int // non-entry files (wrong extension, hidden, README)
	Conflicts []ConflictPair
}

// ImportDir copies every Markdown entry under srcDir into dstDir,
// preserving relative paths so entry ids survive the move. Identical
// files are skipped. A file that exists at the destination with
// different content is never overwritten: the incoming version is
// written next to it as *.conflict.md instead.
func ImportDir(srcDir, dstDir string) (*Result, error) {
	result := &Result{}

	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		name := d.Name()
		if d.IsDir() {
			if path != srcDir && skipName(name) {
				return filepath.SkipDir
			}
			return nil
		}
		if skipName(name) || !strings.EqualFold(filepath.Ext(name), ".md") ||
			strings.EqualFold(name, "README.md") {
			result.Ignored++
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(dstDir, rel)

		if _, err := os.Stat(dst); err == nil {
			srcSum, err := fileSHA256(path)
			if err != nil {
				return err
			}
			dstSum, err := fileSHA256(dst)
			if err != nil {
				return err
			}
			if srcSum == dstSum {
				result.Skipped++
				return nil
			}
			conflictDst := conflictPath(dst)
			if err := copyFile(path, conflictDst); err != nil {
				return fmt.Errorf("cannot keep conflicting copy of %s: %w", rel, err)
			}
			result.Conflicts = append(result.Conflicts, ConflictPair{
				Original: dst,
				Conflict: conflictDst,
			})
			return nil
		}

		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := copyFile(path, dst); err != nil {
			return fmt.Errorf("cannot copy %s: %w", rel, err)
		}
		result.Imported++
		return nil
	})
	if err != nil {
		return result, err
	}
	return result, nil
}

// skipName filters dotfiles and underscore-prefixed names, mirroring
// what the catalog walker refuses to load.
func skipName(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// conflictPath inserts .conflict before the extension:
//
//	behavioral/observer.md → behavioral/observer.conflict.md
func conflictPath(original string) string {
	ext := filepath.Ext(original)
	return strings.TrimSuffix(original, ext) + ".conflict" + ext
}

// fileSHA256 returns the hex digest of the file at path.
func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// copyFile copies src to dst, preserving permissions.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

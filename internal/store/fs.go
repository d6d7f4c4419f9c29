package store

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tomehq/tome/internal/catalog"
)

// FS reads entry documents from a directory tree of markdown files.
type FS struct {
	root string
}

func NewFS(root string) *FS { return &FS{root: root} }

// Root returns the directory this store reads from.
func (s *FS) Root() string { return s.root }

// List walks the root and returns every markdown document. An id is the
// path relative to the root without its extension, slash-separated on
// every platform. Hidden and underscore-prefixed files and directories
// are skipped, as is any README, which documents the catalog rather
// than belonging to it. The walk is lexical, so the order is stable.
func (s *FS) List(ctx context.Context) ([]catalog.Source, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("catalog directory %s does not exist", s.root)
		}
		return nil, fmt.Errorf("cannot stat catalog directory %s: %w", s.root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog path is not a directory: %s", s.root)
	}

	var out []catalog.Source
	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != s.root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(name), ".md") {
			return nil
		}
		if strings.EqualFold(name, "README.md") {
			return nil
		}

		b, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", path, err)
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		id := filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
		out = append(out, catalog.Source{ID: id, Text: string(b)})
		return nil
	}
	if err := filepath.WalkDir(s.root, walkFn); err != nil {
		return nil, fmt.Errorf("cannot scan catalog directory: %w", err)
	}
	return out, nil
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomehq/tome/internal/config"
	"github.com/tomehq/tome/internal/importer"
)

var flagInitImport string

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Scaffold tome.yaml and a starter catalog",
	Long: `Create tome.yaml in the current directory (or [dir]) and seed the
catalog with a few example entries when it has none.

With --import, Markdown entries are copied from an existing directory
instead: identical files are skipped, clashing files are kept side by
side as *.conflict.md for manual review.

Safe to re-run: existing files are never overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&flagInitImport, "import", "", "Seed the catalog from this directory instead of the examples")
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", root, err)
	}

	// ── 1. Write tome.yaml if missing ─────────────────────────────────────────
	cfgPath := filepath.Join(root, config.DefaultFile)
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := config.Save(config.Default(), cfgPath); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("config written: %s", cfgPath))
	} else {
		printSkip("", fmt.Sprintf("config already exists: %s", cfgPath))
	}

	// ── 2. Resolve the catalog directory from the final config ────────────────
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	catalogDir := cfg.CatalogDir
	if !filepath.IsAbs(catalogDir) {
		catalogDir = filepath.Join(root, catalogDir)
	}
	if err := os.MkdirAll(catalogDir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", catalogDir, err)
	}
	printOK("", fmt.Sprintf("catalog directory ready: %s", catalogDir))

	// ── 3. Seed entries ────────────────────────────────────────────────────────
	if flagInitImport != "" {
		res, err := importer.ImportDir(flagInitImport, catalogDir)
		if err != nil {
			return fmt.Errorf("cannot import %s: %w", flagInitImport, err)
		}
		printOK("", fmt.Sprintf("imported %d entries (%d identical skipped)", res.Imported, res.Skipped))
		for _, c := range res.Conflicts {
			printWarn("", fmt.Sprintf("conflicting entry kept aside: %s", c.Conflict))
		}
	} else {
		for _, doc := range starterDocs {
			path := filepath.Join(catalogDir, filepath.FromSlash(doc.path))
			if _, err := os.Stat(path); err == nil {
				printSkip("", fmt.Sprintf("entry already exists: %s", doc.path))
				continue
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("cannot create %s: %w", filepath.Dir(path), err)
			}
			if err := os.WriteFile(path, []byte(renderStarter(doc.text)), 0o644); err != nil {
				return fmt.Errorf("cannot write %s: %w", path, err)
			}
			printOK("", fmt.Sprintf("entry written: %s", doc.path))
		}
	}

	fmt.Println("\n✓  tome init complete. Try:")
	fmt.Println("     tome validate")
	fmt.Println("     tome query \"undo redo\" --explain")
	return nil
}

// renderStarter swaps the ~~~ placeholders for real code fences; raw
// string literals cannot hold backticks.
func renderStarter(s string) string {
	return strings.ReplaceAll(s, "~~~", "```")
}

// starterDocs seed a fresh catalog with one entry per difficulty, linked
// to each other so every command has something real to chew on.
var starterDocs = []struct {
	path string
	text string
}{
	{
		path: "behavioral/observer.md",
		text: `---
title: Observer
category: behavioral
difficulty: intermediate
purpose: Notify many dependents about state changes without coupling the subject to them.
tags: [events, pub-sub, decoupling, notifications]
when_to_use:
  - A change in one object must fan out to an unknown set of listeners.
  - You want to broadcast events without hard-wiring the receivers.
related: [behavioral/memento]
updated: 2025-06-12
---

## Python

### Callback registry (recommended)

~~~python
class Subject:
    def __init__(self):
        self._observers = []

    def subscribe(self, fn):
        self._observers.append(fn)

    def publish(self, event):
        for fn in self._observers:
            fn(event)
~~~

## Go

### Channel fan-out (recommended)

~~~go
type Hub struct {
	mu   sync.Mutex
	subs []chan Event
}

func (h *Hub) Subscribe() <-chan Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan Event, 1)
	h.subs = append(h.subs, ch)
	return ch
}

func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		ch <- ev
	}
}
~~~
`,
	},
	{
		path: "behavioral/memento.md",
		text: `---
title: Memento
category: behavioral
difficulty: advanced
purpose: Capture and restore an object's state for undo and redo support.
tags: [undo-redo, state, history, snapshots]
when_to_use:
  - Users expect undo and redo across their edits.
  - You need checkpoints that restore prior state without exposing internals.
related: [behavioral/observer]
updated: 2025-06-12
---

## Python

### Snapshot stack (recommended)

~~~python
import copy

class History:
    def __init__(self):
        self._states = []

    def save(self, state):
        self._states.append(copy.deepcopy(state))

    def undo(self):
        return self._states.pop()
~~~

## TypeScript

### Command history (recommended)

~~~typescript
class History<S> {
  private stack: S[] = [];

  push(state: S) {
    this.stack.push(structuredClone(state));
  }

  undo(): S | undefined {
    return this.stack.pop();
  }
}
~~~
`,
	},
	{
		path: "creational/singleton.md",
		text: `---
title: Singleton
category: creational
difficulty: beginner
purpose: Guarantee a single shared instance with one global access point.
tags: [single-instance, global-state, lazy-init]
when_to_use:
  - Exactly one instance of a resource must exist process-wide.
updated: 2025-06-12
---

## Python

### Module-level instance (recommended)

~~~python
class _Registry:
    def __init__(self):
        self.entries = {}

registry = _Registry()
~~~

## Go

### sync.Once (recommended)
- library: sync

~~~go
var (
	once     sync.Once
	instance *Registry
)

func Shared() *Registry {
	once.Do(func() { instance = &Registry{} })
	return instance
}
~~~
`,
	},
}

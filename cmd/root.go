package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tomehq/tome/internal/config"
	"github.com/tomehq/tome/internal/engine"
	"github.com/tomehq/tome/internal/store"
)

var (
	flagConfig  string
	flagCatalog string
	flagDB      string
	flagDebug   bool
	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:           "tome",
	Short:         "Index a pattern catalog and answer \"which pattern fits\" queries",
	SilenceUsage:  true, // don't print usage on operational errors
	SilenceErrors: true, // Execute prints the error once
	Long: `Tome reads a catalog of pattern entries (Markdown with YAML frontmatter
and per-language variant sections), builds an inverted index over it, and
answers ranked, explainable "which pattern fits this need" queries.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagNoColor {
			color.NoColor = true
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Path to tome.yaml (default ./tome.yaml, or $TOME_CONFIG)")
	pf.StringVar(&flagCatalog, "catalog", "", "Catalog directory (overrides config)")
	pf.StringVar(&flagDB, "db", "", "SQLite catalog database (overrides config)")
	pf.BoolVar(&flagDebug, "debug", false, "Verbose development logging")
	pf.BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig builds the effective configuration: defaults, tome.yaml,
// TOME_* environment, then command-line flags, later layers winning.
func loadConfig() (*config.Config, error) {
	path := flagConfig
	if path == "" {
		path = os.Getenv(config.EnvConfig)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if flagCatalog != "" {
		cfg.CatalogDir = flagCatalog
	}
	if flagDB != "" {
		cfg.Database = flagDB
	}
	return cfg, nil
}

// newLogger builds the process logger. Logs go to stderr so stdout stays
// reserved for command output: human-readable and chatty with --debug,
// production JSON at the given level otherwise.
func newLogger(level zapcore.Level) (*zap.SugaredLogger, error) {
	if flagDebug {
		log, err := zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("cannot build logger: %w", err)
		}
		return log.Sugar(), nil
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("cannot build logger: %w", err)
	}
	return log.Sugar(), nil
}

// newEngine assembles the source store and the engine from cfg. The
// returned func releases the store and must be deferred by the caller.
func newEngine(cfg *config.Config, log *zap.SugaredLogger) (*engine.Engine, func(), error) {
	var (
		st      store.Store
		release = func() {}
	)
	if cfg.Database != "" {
		db, err := store.OpenSQLite(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		st = db
		release = func() { _ = db.Close() }
	} else {
		st = store.NewFS(cfg.CatalogDir)
	}

	eng := engine.New(st, cfg.CatalogTaxonomy(),
		engine.WithLogger(log),
		engine.WithCacheDir(cfg.CacheDir),
	)
	return eng, release, nil
}

// loadSnapshot refreshes the engine once and reports per-source problems.
// Parse failures demote to warnings so one broken file cannot take the
// whole catalog down; an empty catalog is fatal.
func loadSnapshot(ctx context.Context, eng *engine.Engine) (*engine.Snapshot, error) {
	snap, err := eng.Refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot load catalog: %w\nRun 'tome init' first.", err)
	}
	for _, w := range snap.Warnings {
		printWarn(w.SourceID, w.Message)
	}
	for _, e := range snap.Errors {
		printWarn(e.SourceID, e.Err.Error())
	}
	if snap.Catalog.Len() == 0 {
		return nil, fmt.Errorf("catalog has no usable entries")
	}
	return snap, nil
}

// printJSON renders v indented on stdout, for the --json modes.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

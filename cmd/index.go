package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/tomehq/tome/internal/index"
)

var flagIndexForce bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the on-disk index cache",
	Long: `Load the catalog, build the inverted index, and install it into the
cache directory with an atomic swap. When the cache already matches the
catalog fingerprint the write is skipped (--force overrides).

The cache is a warm-start convenience: every command rebuilds the index
from the catalog when the cache is missing or stale.`,
	Args: cobra.NoArgs,
	RunE: runIndexCache,
}

func init() {
	indexCmd.Flags().BoolVar(&flagIndexForce, "force", false, "Rewrite the cache even if it is current")
	rootCmd.AddCommand(indexCmd)
}

func runIndexCache(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(zapcore.WarnLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	eng, release, err := newEngine(cfg, log)
	if err != nil {
		return err
	}
	defer release()

	snap, err := loadSnapshot(cmd.Context(), eng)
	if err != nil {
		return err
	}

	if !flagIndexForce {
		if _, m, err := index.LoadCache(cfg.CacheDir); err == nil && m.Fingerprint == snap.Catalog.Fingerprint() {
			printSkip("", fmt.Sprintf("index cache already current: %s", cfg.CacheDir))
			return nil
		}
	}

	printInfo("", fmt.Sprintf("indexing %d entries", snap.Catalog.Len()))
	if err := index.WriteCache(cfg.CacheDir, snap.Index); err != nil {
		return fmt.Errorf("cannot write index cache: %w", err)
	}
	printOK("", fmt.Sprintf("index cache written: %s (%d text tokens, %d tags)",
		cfg.CacheDir, len(snap.Index.Text), len(snap.Index.Tags)))
	return nil
}

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/tomehq/tome/internal/stats"
)

var flagStatsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog summary statistics",
	Long: `Summarize the catalog: entry and variant totals, recommended-variant
count, related-link count, and per-category / per-difficulty /
per-language breakdowns with coverage.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&flagStatsJSON, "json", false, "Emit the summary as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
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

	summary := stats.Summarize(snap.Catalog)
	if flagStatsJSON {
		return printJSON(summary)
	}

	printSection("Catalog")
	fmt.Printf("  %d entries / %d variants / %d recommended / %d related links\n",
		summary.Entries, summary.Variants, summary.Recommended, summary.RelatedLinks)

	printSection("Categories")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, c := range summary.Categories {
		fmt.Fprintf(w, "  %s\t%d entries\t%d variants\n", c.Name, c.Entries, c.Variants)
	}
	_ = w.Flush()

	printSection("Difficulties")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, c := range summary.Difficulties {
		fmt.Fprintf(w, "  %s\t%d entries\n", c.Name, c.Entries)
	}
	_ = w.Flush()

	printSection("Languages")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, c := range summary.Languages {
		coverage := stats.CoverageRatio(snap.Catalog, c.Name) * 100
		fmt.Fprintf(w, "  %s\t%d entries\t%d variants\t%.0f%% coverage\n",
			c.Name, c.Entries, c.Variants, coverage)
	}
	_ = w.Flush()

	fmt.Printf("\n  fingerprint: %.12s\n", snap.Catalog.Fingerprint())
	return nil
}

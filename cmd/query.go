package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/tomehq/tome/internal/engine"
	"github.com/tomehq/tome/internal/query"
)

var (
	flagQueryK        int
	flagQueryLanguage string
	flagQueryCategory string
	flagQueryMaxDiff  string
	flagQueryJSON     bool
	flagQueryExplain  bool
)

var queryCmd = &cobra.Command{
	Use:   "query <need...>",
	Short: "Rank catalog entries against a need description",
	Long: `Score every catalog entry against the given need and print the best
matches first. Tag hits weigh 3, usage-scenario hits 2, title and purpose
hits 1; --explain shows the per-token breakdown behind each score.

Filters are hard constraints applied before scoring. With filters but no
need text, the matching entries are listed easiest first.

Examples:
  tome query undo redo support
  tome query "event handling" --language go -k 3
  tome query --category creational --max-difficulty intermediate`,
	Args: cobra.ArbitraryArgs,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&flagQueryK, "k", "k", 5, "Number of results to show (0 = all)")
	queryCmd.Flags().StringVar(&flagQueryLanguage, "language", "", "Only entries with a variant in this language")
	queryCmd.Flags().StringVar(&flagQueryCategory, "category", "", "Only entries in this category")
	queryCmd.Flags().StringVar(&flagQueryMaxDiff, "max-difficulty", "", "Only entries at or below this difficulty")
	queryCmd.Flags().BoolVar(&flagQueryJSON, "json", false, "Emit results as JSON")
	queryCmd.Flags().BoolVar(&flagQueryExplain, "explain", false, "Show why each result matched")
	rootCmd.AddCommand(queryCmd)
}

func queryFilters() query.Filters {
	return query.Filters{
		Language:      flagQueryLanguage,
		Category:      flagQueryCategory,
		MaxDifficulty: flagQueryMaxDiff,
	}
}

func runQuery(cmd *cobra.Command, args []string) error {
	req := query.Request{
		Need:    strings.Join(args, " "),
		Filters: queryFilters(),
		Limit:   flagQueryK,
	}
	if req.Need == "" && req.Filters.Empty() {
		return cmd.Help()
	}

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

	results, err := query.Search(snap.Index, snap.Catalog, req)
	if err != nil {
		return err
	}

	if flagQueryJSON {
		if results == nil {
			results = []query.Result{}
		}
		return printJSON(results)
	}
	printQueryResults(req.Need, snap, results)
	return nil
}

func printQueryResults(need string, snap *engine.Snapshot, results []query.Result) {
	if need != "" {
		fmt.Printf("\ntome query %q\n", need)
	}
	fmt.Printf("\nResults (%d found):\n", len(results))
	if len(results) == 0 {
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for i, r := range results {
		e, ok := snap.Catalog.Get(r.EntryID)
		if !ok {
			continue
		}
		score := ""
		if r.Score > 0 {
			score = color.CyanString("[%d]", r.Score)
		}
		fmt.Fprintf(w, "  %d.\t%s\t%s\t%s\t%s/%s\n",
			i+1, score, r.EntryID, e.Title, e.Category, e.Difficulty)
		if flagQueryExplain && len(r.Reasons) > 0 {
			fmt.Fprintf(w, "  \t\t%s\n", formatReasons(r.Reasons))
		}
	}
	_ = w.Flush()
}

// formatReasons renders one result's score breakdown on a single line,
// e.g. `because undo in tags (undo-redo) +3; history in purpose +1`.
func formatReasons(reasons []query.Reason) string {
	parts := make([]string, 0, len(reasons))
	for _, r := range reasons {
		part := fmt.Sprintf("%s in %s +%d", r.Token, r.Field, r.Weight)
		if r.Matched != "" && r.Matched != r.Token {
			part = fmt.Sprintf("%s in %s (%s) +%d", r.Token, r.Field, r.Matched, r.Weight)
		}
		parts = append(parts, part)
	}
	return "because " + strings.Join(parts, "; ")
}

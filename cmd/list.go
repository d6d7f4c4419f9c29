package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/tomehq/tome/internal/query"
)

var (
	flagListLanguage string
	flagListCategory string
	flagListMaxDiff  string
	flagListJSON     bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog entries, easiest first",
	Long: `List every entry that passes the given filters, ordered by difficulty
and then id. Without filters the whole catalog is listed.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&flagListLanguage, "language", "", "Only entries with a variant in this language")
	listCmd.Flags().StringVar(&flagListCategory, "category", "", "Only entries in this category")
	listCmd.Flags().StringVar(&flagListMaxDiff, "max-difficulty", "", "Only entries at or below this difficulty")
	listCmd.Flags().BoolVar(&flagListJSON, "json", false, "Emit entries as JSON")
	rootCmd.AddCommand(listCmd)
}

// listItem is the machine-readable row for --json.
type listItem struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Category   string   `json:"category"`
	Difficulty string   `json:"difficulty"`
	Tags       []string `json:"tags"`
	Languages  []string `json:"languages"`
	Updated    string   `json:"updated"`
}

func runList(cmd *cobra.Command, _ []string) error {
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

	results, err := query.Search(snap.Index, snap.Catalog, query.Request{
		Filters: query.Filters{
			Language:      flagListLanguage,
			Category:      flagListCategory,
			MaxDifficulty: flagListMaxDiff,
		},
	})
	if err != nil {
		return err
	}

	if flagListJSON {
		items := make([]listItem, 0, len(results))
		for _, r := range results {
			e, ok := snap.Catalog.Get(r.EntryID)
			if !ok {
				continue
			}
			items = append(items, listItem{
				ID:         e.ID,
				Title:      e.Title,
				Category:   e.Category,
				Difficulty: e.Difficulty,
				Tags:       e.Tags,
				Languages:  e.Languages(),
				Updated:    e.Updated.Format("2006-01-02"),
			})
		}
		return printJSON(items)
	}

	fmt.Printf("Entries (%d):\n", len(results))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tCATEGORY\tDIFFICULTY\tLANGUAGES\tTITLE")
	for _, r := range results {
		e, ok := snap.Catalog.Get(r.EntryID)
		if !ok {
			continue
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Category, e.Difficulty, strings.Join(e.Languages(), ","), e.Title)
	}
	return w.Flush()
}

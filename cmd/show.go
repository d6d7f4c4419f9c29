package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/tomehq/tome/internal/catalog"
)

var (
	flagShowLanguage string
	flagShowBody     bool
	flagShowJSON     bool
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one entry's metadata and variants",
	Long: `Display a formatted summary of a catalog entry: purpose, usage
scenarios, tags, related entries, and the per-language variant table.

The argument is an entry id (e.g. behavioral/observer). When nothing
matches exactly, a case-insensitive substring match over all ids is
tried and every hit is shown.

Examples:
  tome show behavioral/observer
  tome show observer --language go --body`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&flagShowLanguage, "language", "", "Show variants for this language only")
	showCmd.Flags().BoolVar(&flagShowBody, "body", false, "Include the variant bodies")
	showCmd.Flags().BoolVar(&flagShowJSON, "json", false, "Emit the entry as JSON")
	rootCmd.AddCommand(showCmd)
}

// showVariant and showView are the machine-readable projections for --json.
type showVariant struct {
	Name        string `json:"name"`
	Library     string `json:"library,omitempty"`
	Recommended bool   `json:"recommended"`
	Body        string `json:"body,omitempty"`
}

type showView struct {
	ID         string                   `json:"id"`
	Title      string                   `json:"title"`
	Category   string                   `json:"category"`
	Difficulty string                   `json:"difficulty"`
	Purpose    string                   `json:"purpose"`
	WhenToUse  []string                 `json:"when_to_use,omitempty"`
	Tags       []string                 `json:"tags"`
	Related    []string                 `json:"related,omitempty"`
	Updated    string                   `json:"updated"`
	Variants   map[string][]showVariant `json:"variants"`
}

func runShow(cmd *cobra.Command, args []string) error {
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

	ids, err := resolveEntryIDs(snap.Catalog, args[0])
	if err != nil {
		return err
	}

	if flagShowJSON {
		views := make([]showView, 0, len(ids))
		for _, id := range ids {
			e, _ := snap.Catalog.Get(id)
			views = append(views, viewOf(e))
		}
		if len(views) == 1 {
			return printJSON(views[0])
		}
		return printJSON(views)
	}

	for i, id := range ids {
		if i > 0 {
			fmt.Println(strings.Repeat("─", 50))
		}
		e, _ := snap.Catalog.Get(id)
		printEntry(e)
	}
	return nil
}

// resolveEntryIDs finds the catalog ids matching arg: an exact id first,
// then case-insensitive substring matches over all ids.
func resolveEntryIDs(c *catalog.Catalog, arg string) ([]string, error) {
	if _, ok := c.Get(arg); ok {
		return []string{arg}, nil
	}

	lower := strings.ToLower(arg)
	var matches []string
	for _, id := range c.IDs() {
		if strings.Contains(strings.ToLower(id), lower) {
			matches = append(matches, id)
		}
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no entry matching %q in the catalog.\nTip: run 'tome list' to see available ids.", arg)
	}
	return matches, nil
}

func viewOf(e *catalog.Entry) showView {
	variants := make(map[string][]showVariant, len(e.Variants))
	for _, lang := range e.Languages() {
		if flagShowLanguage != "" && !strings.EqualFold(flagShowLanguage, lang) {
			continue
		}
		vs := make([]showVariant, 0, len(e.Variants[lang]))
		for _, v := range e.Variants[lang] {
			sv := showVariant{Name: v.Name, Library: v.Library, Recommended: v.Recommended}
			if flagShowBody {
				sv.Body = v.Body
			}
			vs = append(vs, sv)
		}
		variants[lang] = vs
	}
	return showView{
		ID:         e.ID,
		Title:      e.Title,
		Category:   e.Category,
		Difficulty: e.Difficulty,
		Purpose:    e.Purpose,
		WhenToUse:  e.WhenToUse,
		Tags:       e.Tags,
		Related:    e.Related,
		Updated:    e.Updated.Format("2006-01-02"),
		Variants:   variants,
	}
}

func printEntry(e *catalog.Entry) {
	fmt.Printf("%s  %s\n", color.New(color.Bold).Sprint(e.Title), color.CyanString("(%s)", e.ID))
	fmt.Printf("Category:   %s / %s\n", e.Category, e.Difficulty)
	fmt.Printf("Purpose:    %s\n", e.Purpose)
	fmt.Printf("Updated:    %s\n", e.Updated.Format("2006-01-02"))
	if len(e.Tags) > 0 {
		fmt.Printf("Tags:       %s\n", strings.Join(e.Tags, ", "))
	}
	if len(e.WhenToUse) > 0 {
		fmt.Println("\nWhen to use:")
		for _, s := range e.WhenToUse {
			fmt.Printf("  - %s\n", s)
		}
	}
	if len(e.Related) > 0 {
		fmt.Printf("\nRelated: %s\n", strings.Join(e.Related, ", "))
	}

	fmt.Println("\nVariants:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, lang := range e.Languages() {
		if flagShowLanguage != "" && !strings.EqualFold(flagShowLanguage, lang) {
			continue
		}
		for _, v := range e.Variants[lang] {
			mark := " "
			if v.Recommended {
				mark = color.GreenString("★")
			}
			lib := v.Library
			if lib == "" {
				lib = "-"
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", mark, lang, v.Name, lib)
		}
	}
	_ = w.Flush()

	if flagShowBody {
		for _, lang := range e.Languages() {
			if flagShowLanguage != "" && !strings.EqualFold(flagShowLanguage, lang) {
				continue
			}
			for _, v := range e.Variants[lang] {
				fmt.Printf("\n[%s / %s]\n%s\n", lang, v.Name, strings.TrimSpace(v.Body))
			}
		}
	}
}

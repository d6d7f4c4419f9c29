package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/tomehq/tome/internal/validate"
)

var (
	flagValidateStrict bool
	flagValidateJSON   bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check catalog integrity and report violations",
	Long: `Run the integrity rules over the whole catalog: unresolved references,
missing or duplicate variants, absent recommended markers, taxonomy
violations, duplicate titles, and declared-total mismatches.

Exits non-zero when any error-severity violation is found, or when the
catalog contains no usable entries. With --strict, warnings fail too.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&flagValidateStrict, "strict", false, "Treat warnings as failures")
	validateCmd.Flags().BoolVar(&flagValidateJSON, "json", false, "Emit the report as JSON")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
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

	report := validate.Check(snap.Catalog)

	if flagValidateJSON {
		if err := printJSON(report); err != nil {
			return err
		}
		return exitPolicy(report, flagValidateStrict)
	}

	printSection("tome validate")
	var errs, warns []validate.Violation
	for _, v := range report.Violations {
		if v.Severity == validate.SeverityError {
			errs = append(errs, v)
		} else {
			warns = append(warns, v)
		}
	}
	if len(errs) > 0 {
		printBullet("Errors:")
		for _, v := range errs {
			printErr(v.EntryID, fmt.Sprintf("%s: %s", v.Rule, v.Message))
		}
	}
	if len(warns) > 0 {
		printBullet("Warnings:")
		for _, v := range warns {
			printWarn(v.EntryID, fmt.Sprintf("%s: %s", v.Rule, v.Message))
		}
	}
	if len(report.Violations) == 0 {
		printOK("", "catalog is clean")
	}
	fmt.Printf("\n  %d error(s) / %d warning(s)  (%d entries checked)\n",
		len(errs), len(warns), report.Entries)

	return exitPolicy(report, flagValidateStrict)
}

// exitPolicy turns a report into the command's exit status: error
// violations always fail, warnings only under --strict.
func exitPolicy(report *validate.Report, strict bool) error {
	errs, warns := report.Errors(), report.Warnings()
	switch {
	case errs > 0:
		return fmt.Errorf("validation failed: %d error(s), %d warning(s)", errs, warns)
	case strict && warns > 0:
		return fmt.Errorf("validation failed in strict mode: %d warning(s)", warns)
	default:
		return nil
	}
}

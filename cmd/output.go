package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// ── Unified output helpers ────────────────────────────────────────────────────
// All commands print through these helpers so icons, colors and
// indentation stay consistent across tome's CLI output.
//
// Icon semantics:
//   ✓  success / clean
//   ✗  error violation / failure   (written to stderr)
//   ⚠  warning
//   ○  skipped / already up to date
//   ~  neutral info / state change

// printSection prints a top-level section header, e.g. "=== Categories ===".
func printSection(title string) {
	fmt.Printf("\n=== %s ===\n", title)
}

// printBullet prints a grouped-section bullet, e.g. "● Errors:".
func printBullet(title string) {
	fmt.Printf("\n● %s\n", title)
}

// printOK prints a success line.
//   name = "" → "  ✓  msg"
//   name set  → "  ✓  [name] msg"
func printOK(name, msg string) {
	printLine(os.Stdout, color.GreenString("✓"), name, msg)
}

// printErr prints an error line to stderr.
func printErr(name, msg string) {
	printLine(os.Stderr, color.RedString("✗"), name, msg)
}

// printWarn prints a warning line.
func printWarn(name, msg string) {
	printLine(os.Stdout, color.YellowString("⚠"), name, msg)
}

// printSkip prints a skipped / already-current line.
func printSkip(name, msg string) {
	printLine(os.Stdout, "○", name, msg)
}

// printInfo prints a neutral informational / state-change line.
func printInfo(name, msg string) {
	printLine(os.Stdout, "~", name, msg)
}

func printLine(w *os.File, icon, name, msg string) {
	if name == "" {
		fmt.Fprintf(w, "  %s  %s\n", icon, msg)
		return
	}
	fmt.Fprintf(w, "  %s  [%s] %s\n", icon, name, msg)
}

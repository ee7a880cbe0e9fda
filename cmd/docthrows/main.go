package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"docthrows/internal/version"
)

// errDiagnostics signals that diagnostics with errors were printed; the
// process exits with status 1 without an extra message.
var errDiagnostics = errors.New("diagnostics reported errors")

var rootCmd = &cobra.Command{
	Use:   "docthrows",
	Short: "Validate @throws declarations of a PHP codebase snapshot",
	Long: `docthrows checks that every type named in a @throws docblock tag is a class
extending the throwable marker, optionally inheriting @throws from overridden
methods, and suggests close class names for undeclared types.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupTracing,
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(closureCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 0, "maximum number of diagnostics to keep (0 = from config)")
	rootCmd.PersistentFlags().String("trace", "", "write trace events to file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|pass|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "ring buffer capacity for --trace-mode ring|both")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile of the analysis to file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile after the analysis to file")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace of the analysis to file")
}

func main() {
	err := rootCmd.Execute()
	closeTracing(rootCmd, err != nil && !errors.Is(err, errDiagnostics))
	if err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

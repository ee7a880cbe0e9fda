package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"docthrows/internal/config"
	"docthrows/internal/diag"
	"docthrows/internal/diagfmt"
	"docthrows/internal/driver"
	"docthrows/internal/observ"
	"docthrows/internal/snapshot"
	"docthrows/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <snapshot.toml|snapshot.yaml>",
	Short: "Validate @throws declarations of a codebase snapshot",
	Long: `Load a codebase snapshot, validate every @throws declaration, and print the
diagnostics. The exit status is 1 when any error was reported.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	analysisFlags(checkCmd)
	checkCmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif)")
	checkCmd.Flags().String("min-severity", "info", "hide diagnostics below this severity (info|warning|error)")
	checkCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("fixes", false, "include fix suggestions in output")
	checkCmd.Flags().Bool("preview", false, "preview fix edits (implies --fixes)")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

// analysis is a loaded and analysed snapshot.
type analysis struct {
	cfg    config.Config
	result *driver.Result
	timer  *observ.Timer
}

// analyze runs load and analysis for path. The progress view is shown only
// for human-readable formats.
func analyze(cmd *cobra.Command, path string, mode uiMode) (*analysis, error) {
	cfg, err := loadSettings(cmd, path)
	if err != nil {
		return nil, err
	}
	useUI := false
	switch cfg.Output.Format {
	case "", "pretty", "short":
		useUI = progressEnabled(cmd, mode)
	}
	var timer *observ.Timer
	if showTimings, _ := cmd.Root().PersistentFlags().GetBool("timings"); showTimings {
		timer = observ.NewTimer()
	}

	load := timer.Begin("load")
	snap, err := snapshot.Load(path, snapshotOptions(cmd, cfg))
	if err != nil {
		timer.End(load, "failed")
		return nil, err
	}
	note := ""
	if snap.FromCache {
		note = "cached"
	}
	timer.EndItems(load, note, snap.Index.ClassCount())
	if snap.Duplicates > 0 {
		warnf(cmd, "%d repeated snapshot problems were reported once", snap.Duplicates)
	}

	opts, err := driverOptions(cfg)
	if err != nil {
		return nil, err
	}
	opts.Timer = timer

	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var res *driver.Result
	if useUI {
		res, err = runAnalyzeWithUI(cmd.Context(), "validating "+path, snap, opts)
	} else {
		res, err = driver.Analyze(cmd.Context(), snap, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	return &analysis{cfg: cfg, result: res, timer: timer}, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]
	flags := cmd.Flags()

	uiValue, err := flags.GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	withNotes, err := flags.GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	showFixes, err := flags.GetBool("fixes")
	if err != nil {
		return fmt.Errorf("failed to get fixes flag: %w", err)
	}
	preview, err := flags.GetBool("preview")
	if err != nil {
		return fmt.Errorf("failed to get preview flag: %w", err)
	}
	fullPath, err := flags.GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	if quiet {
		mode = uiModeOff
	}
	a, err := analyze(cmd, path, mode)
	if err != nil {
		return err
	}
	format, err := diagfmt.ParseFormat(a.cfg.Output.Format)
	if err != nil {
		return err
	}
	minSeverity, err := diag.ParseSeverity(a.cfg.Output.MinSeverity)
	if err != nil {
		return err
	}
	failed := a.result.Bag.HasErrors()
	// статистика уже посчитана, фильтруем только вывод
	a.result.Bag.Filter(func(d diag.Diagnostic) bool { return d.Severity.AtLeast(minSeverity) })

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	out := cmd.OutOrStdout()
	render := renderOptions{
		format: format,
		pretty: diagfmt.PrettyOpts{
			Color:       useColor(colorFlag),
			Context:     1,
			PathMode:    pathMode,
			ShowNotes:   withNotes,
			ShowFixes:   showFixes || preview,
			ShowPreview: preview,
		},
		json: diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
			IncludeFixes:     showFixes || preview,
			IncludePreviews:  preview,
		},
		sarif: diagfmt.SarifRunMeta{
			ToolName:       "docthrows",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		},
	}
	if err := renderDiagnostics(out, a.result.Bag, a.result.Snapshot, render); err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	if !quiet && format != diagfmt.FormatJSON && format != diagfmt.FormatSarif {
		fmt.Fprintln(errOut, a.result.Stats.Summary())
	}
	printTimings(errOut, a.timer)

	if failed {
		return errDiagnostics
	}
	return nil
}

type renderOptions struct {
	format diagfmt.Format
	pretty diagfmt.PrettyOpts
	json   diagfmt.JSONOpts
	sarif  diagfmt.SarifRunMeta
}

func renderDiagnostics(w io.Writer, bag *diag.Bag, snap *snapshot.Result, opts renderOptions) error {
	switch opts.format {
	case diagfmt.FormatShort:
		diagfmt.Short(w, bag, snap.Files, opts.pretty.PathMode)
	case diagfmt.FormatJSON:
		if err := diagfmt.JSON(w, bag, snap.Files, opts.json); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	case diagfmt.FormatSarif:
		if err := diagfmt.Sarif(w, bag, snap.Files, opts.sarif); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	default:
		diagfmt.Pretty(w, bag, snap.Files, opts.pretty)
	}
	return nil
}

func useColor(flag string) bool {
	return flag == "on" || (flag == "auto" && isTerminal(os.Stdout))
}

func printTimings(w io.Writer, timer *observ.Timer) {
	if timer == nil {
		return
	}
	fmt.Fprint(w, timer.Summary())
}

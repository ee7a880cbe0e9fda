package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"docthrows/internal/fix"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] <snapshot.toml|snapshot.yaml>",
	Short: "Apply did-you-mean fixes to the source files of a snapshot",
	Long: `Run the analysis, then rewrite misspelled @throws types in the source files
named by the snapshot. By default the first available fix is applied.`,
	Args: cobra.ExactArgs(1),
	RunE: runFix,
}

func init() {
	analysisFlags(fixCmd)
	fixCmd.Flags().Bool("all", false, "apply all safe fixes")
	fixCmd.Flags().Bool("once", false, "apply the first available fix (default)")
	fixCmd.Flags().String("id", "", "apply fix with a specific identifier")
	fixCmd.Flags().Bool("unsafe", false, "with --all, also apply fixes that need manual review")
}

func runFix(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	applyAll, err := flags.GetBool("all")
	if err != nil {
		return err
	}
	applyOnce, err := flags.GetBool("once")
	if err != nil {
		return err
	}
	targetID, err := flags.GetString("id")
	if err != nil {
		return err
	}
	unsafe, err := flags.GetBool("unsafe")
	if err != nil {
		return err
	}

	if targetID != "" && (applyAll || applyOnce) {
		return fmt.Errorf("--id cannot be combined with --all or --once")
	}
	if applyAll && applyOnce {
		return fmt.Errorf("--all and --once are mutually exclusive")
	}
	if unsafe && !applyAll {
		return fmt.Errorf("--unsafe requires --all")
	}

	opts := fix.ApplyOptions{Mode: fix.ApplyModeOnce, TargetID: targetID, Unsafe: unsafe}
	switch {
	case targetID != "":
		opts.Mode = fix.ApplyModeID
	case applyAll:
		opts.Mode = fix.ApplyModeAll
	}

	a, err := analyze(cmd, args[0], uiModeOff)
	if err != nil {
		return err
	}
	apply := a.timer.Begin("apply")
	res, applyErr := fix.Apply(a.result.Snapshot.Files, a.result.Bag.Items(), opts)
	applied := 0
	if res != nil {
		applied = len(res.Applied)
	}
	a.timer.EndItems(apply, "", applied)

	err = printApplyResult(cmd.OutOrStdout(), res, applyErr)
	printTimings(cmd.ErrOrStderr(), a.timer)
	return err
}

func printApplyResult(out io.Writer, res *fix.ApplyResult, applyErr error) error {
	if res == nil {
		return applyErr
	}
	if len(res.Applied) > 0 {
		fmt.Fprintf(out, "Applied %d fix(es):\n", len(res.Applied))
		for _, item := range res.Applied {
			location := item.PrimaryPath
			if location == "" {
				location = "(unknown location)"
			}
			fmt.Fprintf(out, "  %s [%s] at %s (%d edits, %s)\n",
				item.Title, item.ID, location, item.EditCount, item.Applicability)
		}
	}
	if len(res.FileChanges) > 0 {
		fmt.Fprintln(out, "Updated files:")
		for _, change := range res.FileChanges {
			fmt.Fprintf(out, "  %s (%d edits)\n", change.Path, change.EditCount)
		}
	}
	if len(res.Skipped) > 0 {
		fmt.Fprintln(out, "Skipped fixes:")
		for _, skip := range res.Skipped {
			id := skip.ID
			if id == "" {
				id = "(unnamed)"
			}
			if skip.Title != "" {
				fmt.Fprintf(out, "  %s [%s]: %s\n", skip.Title, id, skip.Reason)
			} else {
				fmt.Fprintf(out, "  [%s]: %s\n", id, skip.Reason)
			}
		}
	}

	if applyErr != nil {
		if errors.Is(applyErr, fix.ErrNoFixes) && len(res.Applied) == 0 {
			fmt.Fprintln(out, "No applicable fixes found.")
			return nil
		}
		return applyErr
	}
	return nil
}

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"docthrows/internal/codebase"
	"docthrows/internal/expand"
	"docthrows/internal/snapshot"
	"docthrows/internal/types"
)

var closureCmd = &cobra.Command{
	Use:   "closure [flags] <snapshot.toml|snapshot.yaml> <class>",
	Short: "Print the ancestor closure of a class and whether it is throwable",
	Args:  cobra.ExactArgs(2),
	RunE:  runClosure,
}

func init() {
	closureCmd.Flags().String("config", "", "path to docthrows.toml")
	closureCmd.Flags().Int("max-depth", 0, "maximum class hierarchy depth to expand")
	closureCmd.Flags().Bool("no-prelude", false, "do not seed PHP built-in exception classes")
	closureCmd.Flags().Bool("cache", false, "cache decoded snapshots on disk")
}

func runClosure(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd, args[0])
	if err != nil {
		return err
	}
	snap, err := snapshot.Load(args[0], snapshotOptions(cmd, cfg))
	if err != nil {
		return err
	}
	snap.Index.Freeze()
	oracle := expand.New(snap.Index, cfg.Analysis.MaxRecursionDepth)
	return printClosure(cmd.OutOrStdout(), oracle, args[1])
}

// printClosure resolves name (aliases included) and prints its closure.
func printClosure(out io.Writer, oracle *expand.Oracle, name string) error {
	in := oracle.Index().Types()
	fqsen := types.NormalizeFQSEN(name)
	id, ok := in.FindClass(fqsen)
	if !ok {
		return fmt.Errorf("class %s is not in the snapshot", fqsen)
	}
	resolved, st := oracle.Resolve(id, codebase.NoClassID)
	if st != expand.StatusOK {
		return fmt.Errorf("class %s: %s", fqsen, st)
	}
	if _, ok := oracle.Index().ClassByType(resolved); !ok {
		return fmt.Errorf("class %s is not declared", fqsen)
	}

	fmt.Fprintln(out, in.String(id))
	if resolved != id {
		fmt.Fprintf(out, "  alias of: %s\n", in.String(resolved))
	}
	set, st := oracle.Expand(resolved)
	if st != expand.StatusOK {
		fmt.Fprintf(out, "  closure: incomplete (%s)\n", st)
		fmt.Fprintln(out, "  throwable: unknown")
		return nil
	}
	fmt.Fprintf(out, "  closure: %s\n", set.Format(in))
	throwable, _ := oracle.IsThrowable(resolved)
	answer := "no"
	if throwable {
		answer = "yes"
	}
	fmt.Fprintf(out, "  throwable: %s\n", answer)
	return nil
}

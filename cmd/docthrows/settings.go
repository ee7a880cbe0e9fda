package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"docthrows/internal/codebase"
	"docthrows/internal/config"
	"docthrows/internal/driver"
	"docthrows/internal/sema"
	"docthrows/internal/snapshot"
)

// analysisFlags registers the flags shared by check and fix.
func analysisFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to "+config.FileName+" (default: discovered from the snapshot directory upwards)")
	cmd.Flags().Bool("inherit", false, "inherit @throws from overridden methods when a function declares none")
	cmd.Flags().String("inherit-policy", "", "how several overridden methods combine (union|last)")
	cmd.Flags().Int("max-depth", 0, "maximum class hierarchy depth to expand")
	cmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	cmd.Flags().Bool("no-suggest", false, "disable did-you-mean suggestions")
	cmd.Flags().Bool("no-prelude", false, "do not seed PHP built-in exception classes")
	cmd.Flags().Bool("cache", false, "cache decoded snapshots on disk")
	cmd.Flags().Bool("clear-cache", false, "drop cached snapshots before loading (implies --cache)")
}

// loadSettings discovers the configuration for snapshotPath and applies
// explicitly set command-line flags on top of it.
func loadSettings(cmd *cobra.Command, snapshotPath string) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	explicit, err := cmd.Flags().GetString("config")
	if err != nil {
		return cfg, err
	}
	if explicit != "" {
		cfg, err = config.Load(explicit)
	} else {
		cfg, err = config.Discover(filepath.Dir(snapshotPath))
	}
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("inherit") {
		if cfg.Analysis.InheritPhpdocTypes, err = flags.GetBool("inherit"); err != nil {
			return cfg, err
		}
	}
	if flags.Changed("inherit-policy") {
		if cfg.Analysis.InheritPolicy, err = flags.GetString("inherit-policy"); err != nil {
			return cfg, err
		}
	}
	if flags.Changed("max-depth") {
		if cfg.Analysis.MaxRecursionDepth, err = flags.GetInt("max-depth"); err != nil {
			return cfg, err
		}
	}
	if flags.Changed("jobs") {
		if cfg.Output.Jobs, err = flags.GetInt("jobs"); err != nil {
			return cfg, err
		}
	}
	if flags.Changed("no-suggest") {
		noSuggest, err := flags.GetBool("no-suggest")
		if err != nil {
			return cfg, err
		}
		cfg.Suggest.Enabled = !noSuggest
	}
	if flags.Changed("no-prelude") {
		noPrelude, err := flags.GetBool("no-prelude")
		if err != nil {
			return cfg, err
		}
		cfg.Analysis.Prelude = !noPrelude
	}
	if f := flags.Lookup("format"); f != nil && f.Changed {
		cfg.Output.Format = f.Value.String()
	}
	if f := flags.Lookup("min-severity"); f != nil && f.Changed {
		cfg.Output.MinSeverity = f.Value.String()
	}
	if root := cmd.Root().PersistentFlags(); root.Changed("max-diagnostics") {
		if cfg.Output.MaxDiagnostics, err = root.GetInt("max-diagnostics"); err != nil {
			return cfg, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

// snapshotOptions maps cfg to loader options. The disk cache is opened only
// when --cache is set; a cache that cannot be opened is skipped.
func snapshotOptions(cmd *cobra.Command, cfg config.Config) snapshot.Options {
	opts := snapshot.Options{
		Throwable:      cfg.Analysis.Throwable,
		Prelude:        cfg.Analysis.Prelude,
		MaxDiagnostics: cfg.Output.MaxDiagnostics,
	}
	useCache, _ := cmd.Flags().GetBool("cache")
	clearCache, _ := cmd.Flags().GetBool("clear-cache")
	if !useCache && !clearCache {
		return opts
	}
	cache, err := snapshot.OpenCache("docthrows")
	if err != nil {
		warnf(cmd, "cache disabled: %v", err)
		return opts
	}
	if clearCache {
		if err := cache.DropAll(); err != nil {
			warnf(cmd, "failed to clear cache: %v", err)
		}
	}
	opts.Cache = cache
	return opts
}

// driverOptions maps cfg to analysis options.
func driverOptions(cfg config.Config) (driver.Options, error) {
	policy, err := sema.ParseInheritPolicy(cfg.Analysis.InheritPolicy)
	if err != nil {
		return driver.Options{}, err
	}
	opts := driver.Options{
		Jobs:             cfg.Output.Jobs,
		MaxDiagnostics:   cfg.Output.MaxDiagnostics,
		MaxDepth:         cfg.Analysis.MaxRecursionDepth,
		InheritThrows:    cfg.Analysis.InheritPhpdocTypes,
		InheritPolicy:    policy,
		Suggest:          cfg.Suggest.Enabled,
		SuggestCacheSize: cfg.Suggest.CacheSize,
	}
	if !cfg.Analysis.SkipSynthesized {
		opts.SkipInheritance = inheritAll
	}
	return opts, nil
}

func inheritAll(*codebase.Function) bool { return false }

// warnf prints a non-essential message unless --quiet is set.
func warnf(cmd *cobra.Command, format string, args ...any) {
	if quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet"); quiet {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "warning: "+format+"\n", args...)
}

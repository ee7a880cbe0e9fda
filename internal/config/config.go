// Package config loads docthrows.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"docthrows/internal/diag"
)

// FileName is the configuration file looked up from the working directory
// upwards.
const FileName = "docthrows.toml"

// ErrNotFound is returned by Find when no configuration file exists.
var ErrNotFound = errors.New("no " + FileName + " found")

// Config mirrors docthrows.toml.
type Config struct {
	Analysis Analysis `toml:"analysis"`
	Suggest  Suggest  `toml:"suggest"`
	Output   Output   `toml:"output"`

	// Path is the file the config was read from; empty for defaults.
	Path string `toml:"-"`
}

type Analysis struct {
	InheritPhpdocTypes bool   `toml:"inherit_phpdoc_types"`
	InheritPolicy      string `toml:"inherit_policy"`
	SkipSynthesized    bool   `toml:"skip_synthesized"`
	MaxRecursionDepth  int    `toml:"max_recursion_depth"`
	Throwable          string `toml:"throwable"`
	Prelude            bool   `toml:"prelude"`
}

type Suggest struct {
	Enabled   bool `toml:"enabled"`
	CacheSize int  `toml:"cache_size"`
}

type Output struct {
	Format         string `toml:"format"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
	Jobs           int    `toml:"jobs"`
	// MinSeverity hides less severe diagnostics from the rendered output.
	MinSeverity string `toml:"min_severity"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Analysis: Analysis{
			InheritPolicy:     "union",
			SkipSynthesized:   true,
			MaxRecursionDepth: 50,
			Throwable:         `\Throwable`,
			Prelude:           true,
		},
		Suggest: Suggest{Enabled: true, CacheSize: 1024},
		Output:  Output{Format: "pretty", MaxDiagnostics: 500},
	}
}

// Find walks from startDir up to the filesystem root looking for FileName.
func Find(startDir string) (string, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// Discover finds and loads the nearest configuration file, falling back to
// Default when there is none.
func Discover(startDir string) (Config, error) {
	path, err := Find(startDir)
	if errors.Is(err, ErrNotFound) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, err
	}
	return Load(path)
}

// Load reads path on top of Default. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("analysis", "throwable") && strings.TrimSpace(cfg.Analysis.Throwable) == "" {
		return Config{}, fmt.Errorf("%s: [analysis].throwable must not be empty", path)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	switch strings.ToLower(c.Analysis.InheritPolicy) {
	case "", "union", "last", "last-wins":
	default:
		return fmt.Errorf("[analysis].inherit_policy: unknown value %q (want union or last)", c.Analysis.InheritPolicy)
	}
	if c.Analysis.MaxRecursionDepth < 0 {
		return fmt.Errorf("[analysis].max_recursion_depth must be >= 0")
	}
	switch c.Output.Format {
	case "", "pretty", "short", "json", "sarif":
	default:
		return fmt.Errorf("[output].format: unknown value %q (want pretty, short, json or sarif)", c.Output.Format)
	}
	if _, err := diag.ParseSeverity(c.Output.MinSeverity); err != nil {
		return fmt.Errorf("[output].min_severity: %w", err)
	}
	if c.Output.Jobs < 0 {
		return fmt.Errorf("[output].jobs must be >= 0")
	}
	if c.Suggest.CacheSize < 0 {
		return fmt.Errorf("[suggest].cache_size must be >= 0")
	}
	return nil
}

// Package diagfmt renders diagnostics for terminals and tools.
package diagfmt

import (
	"fmt"
	"strings"

	"docthrows/internal/source"
)

// Format selects a renderer.
type Format uint8

const (
	FormatPretty Format = iota
	FormatShort
	FormatJSON
	FormatSarif
)

func (f Format) String() string {
	switch f {
	case FormatShort:
		return "short"
	case FormatJSON:
		return "json"
	case FormatSarif:
		return "sarif"
	default:
		return "pretty"
	}
}

// ParseFormat accepts pretty, short, json and sarif.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pretty":
		return FormatPretty, nil
	case "short":
		return FormatShort, nil
	case "json":
		return FormatJSON, nil
	case "sarif":
		return FormatSarif, nil
	default:
		return FormatPretty, fmt.Errorf("unknown format %q (want pretty, short, json or sarif)", s)
	}
}

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto chooses relative or absolute path automatically.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color       bool
	Context     int8 // строки контекста вокруг основной
	PathMode    PathMode
	ShowNotes   bool
	ShowFixes   bool
	ShowPreview bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool // добавить line/col
	PathMode         PathMode
	Max              int // обрезка вывода, не Bag
	IncludeNotes     bool
	IncludeFixes     bool
	IncludePreviews  bool
}

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InvocationArgs []string
}

func formatPath(fs *source.FileSet, f *source.File, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	default:
		return f.FormatPath("auto", "")
	}
}

// location renders path:line:col for span; "<unknown>" when the file is gone.
func location(fs *source.FileSet, span source.Span, mode PathMode) string {
	f := fs.Get(span.File)
	if f == nil {
		return "<unknown>"
	}
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", formatPath(fs, f, mode), start.Line, start.Col)
}

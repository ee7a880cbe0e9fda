package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"docthrows/internal/diag"
	"docthrows/internal/source"
)

type palette struct {
	err, warn, info, code, gutter, marker, help, dim *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		code:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		marker: color.New(color.FgRed),
		help:   color.New(color.FgGreen),
		dim:    color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.gutter, p.marker, p.help, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes с аналогичным форматом.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil {
		return
	}
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, d, fs, opts, p)
	}
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	fmt.Fprintf(w, "%s: %s %s: %s\n",
		location(fs, d.Primary, opts.PathMode),
		p.severity(d.Severity).Sprint(d.Severity.String()),
		p.code.Sprint(d.Code.ID()),
		d.Message)

	writeSnippet(w, fs, d.Primary, int(opts.Context), p)

	if d.Suggestion != "" {
		fmt.Fprintf(w, "  %s did you mean %s?\n", p.help.Sprint("help:"), d.Suggestion)
	}
	if opts.ShowNotes {
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  note: %s: %s\n", location(fs, n.Span, opts.PathMode), n.Msg)
		}
	}
	if opts.ShowFixes {
		for i, fix := range d.Fixes {
			writeFix(w, fs, i+1, fix, opts, p)
		}
	}
}

func writeFix(w io.Writer, fs *source.FileSet, n int, fix diag.Fix, opts PrettyOpts, p palette) {
	fmt.Fprintf(w, "  fix #%d: %s [%s]", n, fix.Title, fix.Applicability)
	if fix.ID != "" {
		fmt.Fprintf(w, " id=%s", fix.ID)
	}
	fmt.Fprintln(w)
	for _, edit := range fix.Edits {
		fmt.Fprintf(w, "    edit %s apply=%q\n", location(fs, edit.Span, opts.PathMode), edit.NewText)
		if !opts.ShowPreview {
			continue
		}
		preview, err := previewEdit(fs, edit)
		if err != nil {
			continue
		}
		fmt.Fprintln(w, "    preview:")
		for _, line := range preview.before {
			fmt.Fprintf(w, "      %s\n", p.marker.Sprint("- "+line))
		}
		for _, line := range preview.after {
			fmt.Fprintf(w, "      %s\n", p.help.Sprint("+ "+line))
		}
	}
}

// writeSnippet prints the primary line with context and underlines span.
// Empty spans carry no position and print nothing.
func writeSnippet(w io.Writer, fs *source.FileSet, span source.Span, context int, p palette) {
	f := fs.Get(span.File)
	if f == nil || len(f.Content) == 0 || span.Empty() {
		return
	}
	start, end := fs.Resolve(span)
	lineCount := len(f.LineIdx)
	if f.Content[len(f.Content)-1] != '\n' {
		lineCount++
	}
	line := int(start.Line)
	first := max(1, line-context)
	last := min(lineCount, line+context)
	width := len(fmt.Sprint(last))

	for ln := first; ln <= last; ln++ {
		text := f.GetLine(uint32(ln)) // #nosec G115 -- ln <= lineCount
		fmt.Fprintf(w, "  %s %s\n", p.gutter.Sprintf("%*d |", width, ln), text)
		if ln != line {
			continue
		}
		col := min(int(start.Col)-1, len(text))
		spanLen := len(text) - col
		if end.Line == start.Line {
			spanLen = int(end.Col - start.Col)
		}
		fmt.Fprintf(w, "  %s %s\n", p.gutter.Sprintf("%*s |", width, ""), p.marker.Sprint(underline(text, col, spanLen)))
	}
}

// underline builds "   ^~~~" aligned under text[col:col+n], keeping tabs so
// the marker lines up with the printed source.
func underline(text string, col, n int) string {
	var sb strings.Builder
	for _, r := range text[:col] {
		if r == '\t' {
			sb.WriteByte('\t')
			continue
		}
		sb.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	endCol := min(len(text), col+n)
	w := runewidth.StringWidth(text[col:endCol])
	if w <= 0 {
		w = 1
	}
	sb.WriteByte('^')
	sb.WriteString(strings.Repeat("~", w-1))
	return sb.String()
}

package diagfmt

import (
	"encoding/json"
	"io"
	"sort"

	"docthrows/internal/diag"
	"docthrows/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// FixEditJSON представляет одно редактирование для JSON
type FixEditJSON struct {
	Location    LocationJSON `json:"location"`
	NewText     string       `json:"new_text"`
	OldText     string       `json:"old_text,omitempty"`
	BeforeLines []string     `json:"before_lines,omitempty"`
	AfterLines  []string     `json:"after_lines,omitempty"`
}

// FixJSON представляет предложение по исправлению для JSON
type FixJSON struct {
	ID            string        `json:"id,omitempty"`
	Title         string        `json:"title"`
	Applicability string        `json:"applicability"`
	IsPreferred   bool          `json:"is_preferred,omitempty"`
	Edits         []FixEditJSON `json:"edits,omitempty"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity   string       `json:"severity"`
	Code       string       `json:"code"`
	Message    string       `json:"message"`
	Args       []string     `json:"args,omitempty"`
	Suggestion string       `json:"suggestion,omitempty"`
	Location   LocationJSON `json:"location"`
	Notes      []NoteJSON   `json:"notes,omitempty"`
	Fixes      []FixJSON    `json:"fixes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Dropped     int              `json:"dropped,omitempty"`
}

// makeLocation создаёт LocationJSON из Span
func makeLocation(span source.Span, fs *source.FileSet, pathMode PathMode, includePositions bool) LocationJSON {
	loc := LocationJSON{
		StartByte: span.Start,
		EndByte:   span.End,
	}
	f := fs.Get(span.File)
	if f == nil {
		return loc
	}
	loc.File = formatPath(fs, f, pathMode)

	// Позиции строк/колонок только для спанов с известным местом
	if includePositions && !span.Empty() {
		startPos, endPos := fs.Resolve(span)
		loc.StartLine = startPos.Line
		loc.StartCol = startPos.Col
		loc.EndLine = endPos.Line
		loc.EndCol = endPos.Col
	}
	return loc
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}
	diagnostics := make([]DiagnosticJSON, 0, maxItems)

	for _, d := range items[:maxItems] {
		diagJSON := DiagnosticJSON{
			Severity:   d.Severity.String(),
			Code:       d.Code.ID(),
			Message:    d.Message,
			Args:       d.Args,
			Suggestion: d.Suggestion,
			Location:   makeLocation(d.Primary, fs, opts.PathMode, opts.IncludePositions),
		}

		if opts.IncludeNotes && len(d.Notes) > 0 {
			diagJSON.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				diagJSON.Notes[j] = NoteJSON{
					Message:  note.Msg,
					Location: makeLocation(note.Span, fs, opts.PathMode, opts.IncludePositions),
				}
			}
		}

		if opts.IncludeFixes && len(d.Fixes) > 0 {
			diagJSON.Fixes = fixesJSON(d.Fixes, fs, opts)
		}
		diagnostics = append(diagnostics, diagJSON)
	}

	return DiagnosticsOutput{
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
		Dropped:     bag.Dropped() + len(items) - maxItems,
	}
}

func fixesJSON(in []diag.Fix, fs *source.FileSet, opts JSONOpts) []FixJSON {
	fixes := append([]diag.Fix(nil), in...)
	sort.SliceStable(fixes, func(i, j int) bool {
		fi, fj := fixes[i], fixes[j]
		if fi.IsPreferred != fj.IsPreferred {
			return fi.IsPreferred && !fj.IsPreferred
		}
		if fi.Applicability != fj.Applicability {
			return fi.Applicability < fj.Applicability
		}
		if fi.Title != fj.Title {
			return fi.Title < fj.Title
		}
		return fi.ID < fj.ID
	})

	out := make([]FixJSON, 0, len(fixes))
	for _, fix := range fixes {
		fixJSON := FixJSON{
			ID:            fix.ID,
			Title:         fix.Title,
			Applicability: fix.Applicability.String(),
			IsPreferred:   fix.IsPreferred,
		}
		for _, edit := range fix.Edits {
			editJSON := FixEditJSON{
				Location: makeLocation(edit.Span, fs, opts.PathMode, opts.IncludePositions),
				NewText:  edit.NewText,
				OldText:  edit.OldText,
			}
			if opts.IncludePreviews {
				if preview, err := previewEdit(fs, edit); err == nil {
					editJSON.BeforeLines = preview.before
					editJSON.AfterLines = preview.after
				}
			}
			fixJSON.Edits = append(fixJSON.Edits, editJSON)
		}
		out = append(out, fixJSON)
	}
	return out
}

// JSON форматирует диагностики в JSON формат.
// Выводит массив диагностик с полной информацией о местоположении, заметках и исправлениях.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(bag, fs, opts))
}

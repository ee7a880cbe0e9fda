package diagfmt

import (
	"fmt"
	"strings"

	"docthrows/internal/diag"
	"docthrows/internal/source"
)

// editPreview is the block of whole lines touched by an edit, before and
// after applying it.
type editPreview struct {
	before []string
	after  []string
}

func previewEdit(fs *source.FileSet, edit diag.TextEdit) (editPreview, error) {
	if fs == nil {
		return editPreview{}, fmt.Errorf("nil FileSet")
	}
	file := fs.Get(edit.Span.File)
	if file == nil {
		return editPreview{}, fmt.Errorf("file %d not found in FileSet", edit.Span.File)
	}
	startPos, endPos := fs.Resolve(edit.Span)
	blockStart, blockEnd, ok := file.LineBlock(startPos.Line, endPos.Line)
	if !ok {
		return editPreview{}, fmt.Errorf("line %d out of range in %s", startPos.Line, file.Path)
	}
	start, end := int(edit.Span.Start), int(edit.Span.End)
	if start < blockStart || end < start || end > blockEnd {
		return editPreview{}, fmt.Errorf("edit span %d..%d outside preview block %d..%d", start, end, blockStart, blockEnd)
	}

	block := file.Content[blockStart:blockEnd]
	var after strings.Builder
	after.Grow(len(block) + len(edit.NewText))
	after.Write(file.Content[blockStart:start])
	after.WriteString(edit.NewText)
	after.Write(file.Content[end:blockEnd])

	return editPreview{
		before: previewLines(string(block)),
		after:  previewLines(after.String()),
	}, nil
}

func previewLines(text string) []string {
	if text == "" {
		return nil
	}
	// завершающий '\n' не даёт лишней пустой строки
	return strings.Split(strings.TrimRight(text, "\n"), "\n")
}

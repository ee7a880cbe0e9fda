package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// FileSet manages a collection of source files and resolves spans to
// line/column positions. Loading is single-threaded; once populated the set
// may be read from many goroutines.
type FileSet struct {
	files   []File
	index   map[string]FileID // path -> latest id
	baseDir string
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return NewFileSetWithBase("")
}

// NewFileSetWithBase создаёт FileSet с заданной базовой директорией.
func NewFileSetWithBase(baseDir string) *FileSet {
	return &FileSet{
		files:   make([]File, 0, 8),
		index:   make(map[string]FileID),
		baseDir: baseDir,
	}
}

// SetBaseDir sets the directory relative paths are resolved against.
func (fileSet *FileSet) SetBaseDir(dir string) {
	fileSet.baseDir = dir
}

// BaseDir returns the base directory, falling back to the working directory.
func (fileSet *FileSet) BaseDir() string {
	if fileSet.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return fileSet.baseDir
}

// Len reports the number of stored files.
func (fileSet *FileSet) Len() int {
	return len(fileSet.files)
}

// Add stores a file from normalized bytes and returns a new FileID.
// A new FileID is allocated even if the path was added before.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	normalizedPath := normalizePath(path)
	lenFiles, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(lenFiles)
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    normalizedPath,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fileSet.index[normalizedPath] = id
	return id
}

// Load reads a file from disk, normalizes CRLF/BOM, and calls Add.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)

	flags := FileFlags(0)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return fileSet.Add(path, content, flags), nil
}

// LoadOrVirtual loads path from disk; when the file cannot be read an empty
// virtual file with the same path is registered instead.
func (fileSet *FileSet) LoadOrVirtual(path string) (FileID, error) {
	if id, ok := fileSet.GetLatest(path); ok {
		return id, nil
	}
	id, err := fileSet.Load(path)
	if err != nil {
		return fileSet.AddVirtual(path, nil), err
	}
	return id, nil
}

// AddVirtual adds a virtual file (stdin, test, or generated) with the FileVirtual flag.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns the file metadata for the given ID, or nil when id is unknown.
func (fileSet *FileSet) Get(id FileID) *File {
	if int(id) >= len(fileSet.files) {
		return nil
	}
	return &fileSet.files[id]
}

// GetLatest returns the latest file ID for the given path, if it exists.
func (fileSet *FileSet) GetLatest(path string) (FileID, bool) {
	id, ok := fileSet.index[normalizePath(path)]
	return id, ok
}

// Resolve converts a span into line and column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fileSet.Get(span.File)
	if f == nil {
		return LineCol{Line: 1, Col: 1}, LineCol{Line: 1, Col: 1}
	}
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// SpanAt builds a span of width bytes starting at the given line/column.
// ok is false when the position lies outside the file content; the returned
// span is then empty and anchored at the start of the file.
func (fileSet *FileSet) SpanAt(id FileID, pos LineCol, width uint32) (Span, bool) {
	f := fileSet.Get(id)
	if f == nil || pos.Col == 0 {
		return Span{File: id}, false
	}
	start, ok := lineStart(f.LineIdx, pos.Line)
	if !ok {
		return Span{File: id}, false
	}
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	off := start + pos.Col - 1
	if off > lenContent || off+width > lenContent {
		return Span{File: id}, false
	}
	return Span{File: id, Start: off, End: off + width}, true
}

// GetLine возвращает строку с заданным номером (1-based) без завершающего '\n'.
func (f *File) GetLine(lineNum uint32) string {
	start, ok := lineStart(f.LineIdx, lineNum)
	if !ok || int(start) > len(f.Content) {
		return ""
	}
	end := len(f.Content)
	if int(lineNum-1) < len(f.LineIdx) {
		end = int(f.LineIdx[lineNum-1])
	}
	return string(f.Content[start:end])
}

// LineBlock returns the byte range of whole lines first..last (1-based),
// including the trailing '\n' of last. ok is false when first is past the
// end of the file.
func (f *File) LineBlock(first, last uint32) (start, end int, ok bool) {
	s, ok := lineStart(f.LineIdx, first)
	if !ok || int(s) > len(f.Content) {
		return 0, 0, false
	}
	last = max(last, first)
	end = len(f.Content)
	if int(last-1) < len(f.LineIdx) {
		end = int(f.LineIdx[last-1]) + 1
	}
	return int(s), end, true
}

// Text returns the bytes covered by span, or "" when the span is out of range.
func (f *File) Text(span Span) string {
	if span.File != f.ID || span.End < span.Start || int(span.End) > len(f.Content) {
		return ""
	}
	return string(f.Content[span.Start:span.End])
}

// FormatPath formats the file path. mode: "absolute", "relative", "basename", "auto".
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := AbsolutePath(f.Path); err == nil {
			return abs
		}
		return f.Path
	case "relative":
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		if rel, err := RelativePath(f.Path, baseDir); err == nil {
			return rel
		}
		return f.Path
	case "basename":
		return BaseName(f.Path)
	case "auto":
		if len(f.Path) < 40 || !filepath.IsAbs(f.Path) {
			return f.Path
		}
		return BaseName(f.Path)
	default:
		return f.Path
	}
}

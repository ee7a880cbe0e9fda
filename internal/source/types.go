package source

import "bytes"

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags records how the stored content differs from the file on disk.
	FileFlags uint8
)

const (
	// FileVirtual marks files that were not read from disk (tests, missing sources).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File captures metadata and content for a single source file. Content is
// normalized: no BOM, "\n" line endings.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // позиции '\n'
	Hash    [32]byte
	Flags   FileFlags
}

// IsVirtual reports whether f has no backing file on disk.
func (f *File) IsVirtual() bool { return f.Flags&FileVirtual != 0 }

// Denormalize converts normalized content back to the on-disk encoding of f,
// restoring the BOM and CRLF line endings that Load removed.
func (f *File) Denormalize(content []byte) []byte {
	if f.Flags&FileNormalizedCRLF != 0 {
		content = bytes.ReplaceAll(content, []byte("\n"), []byte("\r\n"))
	}
	if f.Flags&FileHadBOM != 0 {
		content = append([]byte{0xEF, 0xBB, 0xBF}, content...)
	}
	return content
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}

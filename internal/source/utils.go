package source

import (
	"path/filepath"
	"slices"
	"sort"
	"strings"
)

// normalizeCRLF заменяет все \r\n на \n, не трогая одиночные \r.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !slices.Contains(content, '\r') {
		return content, false
	}

	out := make([]byte, 0, len(content))
	changed := false
	for i := 0; i < len(content); i++ {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			changed = true
			continue
		}
		out = append(out, content[i])
	}
	return out, changed
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}
	return content, false
}

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, len(content)/32+1)
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i))
		}
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// количество '\n' строго до off = номер строки (0-based)
	n := sort.Search(len(lineIdx), func(i int) bool { return lineIdx[i] >= off })
	var start uint32
	if n > 0 {
		start = lineIdx[n-1] + 1
	}
	return LineCol{Line: uint32(n) + 1, Col: off - start + 1}
}

// lineStart returns the byte offset where the 1-based line begins.
func lineStart(lineIdx []uint32, line uint32) (uint32, bool) {
	if line == 0 {
		return 0, false
	}
	if line == 1 {
		return 0, true
	}
	if int(line-2) >= len(lineIdx) {
		return 0, false
	}
	return lineIdx[line-2] + 1, true
}

func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// AbsolutePath returns p as an absolute, slash-separated path.
func AbsolutePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(abs), nil
}

// RelativePath returns p relative to baseDir. Paths outside baseDir stay absolute.
func RelativePath(p, baseDir string) (string, error) {
	absPath, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(absPath), nil
	}
	return filepath.ToSlash(rel), nil
}

// BaseName returns the last element of p.
func BaseName(p string) string {
	return filepath.Base(p)
}

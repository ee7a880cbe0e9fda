package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"docthrows/internal/codebase"
	"docthrows/internal/source"
)

// CheckIndexInvariants runs a minimal set of invariants on a loaded index:
// 1) every class is reachable by its own type and ids match slots
// 2) every method is registered under its class
// 3) every non-empty throws span lies inside its file and covers the written text
func CheckIndexInvariants(ix *codebase.Index, fs *source.FileSet) error {
	if ix == nil {
		return fmt.Errorf("nil index")
	}
	for i, c := range ix.Classes() {
		if int(c.ID) != i+1 {
			return fmt.Errorf("class %s has id %d in slot %d", c.Name, c.ID, i+1)
		}
		got, ok := ix.ClassByType(c.Type)
		if !ok || got.ID != c.ID {
			return fmt.Errorf("class %s not reachable by type", c.Name)
		}
	}

	for _, fn := range ix.Functions() {
		if fn.IsMethod() {
			id, ok := ix.Method(fn.Class, fn.Name)
			if !ok || id != fn.ID {
				return fmt.Errorf("method %s is not registered", ix.FQSEN(fn))
			}
		}
		for _, d := range fn.Throws {
			if err := checkThrowsSpan(fs, d); err != nil {
				return fmt.Errorf("%s: %w", ix.FQSEN(fn), err)
			}
		}
	}
	return nil
}

func checkThrowsSpan(fs *source.FileSet, d codebase.ThrowsDecl) error {
	sp := d.Span
	if sp.Empty() {
		return nil
	}
	if fs == nil {
		return fmt.Errorf("span %v without file set", sp)
	}
	f := fs.Get(sp.File)
	if f == nil {
		return fmt.Errorf("span %v points to unknown file", sp)
	}
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if sp.End > lenContent {
		return fmt.Errorf("span end beyond content: %d > %d", sp.End, lenContent)
	}
	if got := f.Text(sp); got != d.Text {
		return fmt.Errorf("span %v covers %q, want %q", sp, got, d.Text)
	}
	return nil
}

package codebase

import (
	"fmt"

	"docthrows/internal/source"
	"docthrows/internal/types"
)

// ClassKind is the closed set of class-like declaration kinds.
type ClassKind uint8

const (
	ClassKindClass ClassKind = iota
	ClassKindInterface
	ClassKindTrait
)

func (k ClassKind) String() string {
	switch k {
	case ClassKindClass:
		return "class"
	case ClassKindInterface:
		return "interface"
	case ClassKindTrait:
		return "trait"
	default:
		return fmt.Sprintf("ClassKind(%d)", k)
	}
}

// ParseClassKind maps the textual kind used in snapshots.
func ParseClassKind(s string) (ClassKind, bool) {
	switch s {
	case "", "class":
		return ClassKindClass, true
	case "interface":
		return ClassKindInterface, true
	case "trait":
		return ClassKindTrait, true
	default:
		return 0, false
	}
}

// Class describes a declared class, interface or trait.
type Class struct {
	ID         ClassID
	Type       types.TypeID // class identity in the interner
	Name       string       // FQSEN as first written
	Kind       ClassKind
	Parent     types.TypeID   // extends; NoTypeID when absent
	Interfaces []types.TypeID // implements (classes) or extends (interfaces), declaration order
	Traits     []types.TypeID
	Templates  []string
	Span       source.Span
}

// DirectAncestors lists the ancestors visited when walking the hierarchy:
// the parent class first, then interfaces in declaration order. Traits are
// not ancestors.
func (c *Class) DirectAncestors() []types.TypeID {
	if c == nil {
		return nil
	}
	out := make([]types.TypeID, 0, 1+len(c.Interfaces))
	if c.Parent.IsValid() {
		out = append(out, c.Parent)
	}
	out = append(out, c.Interfaces...)
	return out
}

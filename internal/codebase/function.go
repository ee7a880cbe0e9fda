package codebase

import (
	"sync/atomic"

	"docthrows/internal/source"
	"docthrows/internal/types"
)

// FuncFlags stores boolean properties of a function-like entity.
type FuncFlags uint8

const (
	// FuncFlagSynthesized marks methods synthesised from a class-level doc
	// block (@method) instead of written by the author.
	FuncFlagSynthesized FuncFlags = 1 << iota
	FuncFlagAbstract
)

// ThrowsDecl is one documented @throws type.
type ThrowsDecl struct {
	Type types.TypeID
	Text string      // as written
	Span source.Span // location of Text; empty when unknown
}

// Function is a function or method declaration. Declared throws are
// immutable once the index is frozen; the inherited set only grows.
type Function struct {
	ID        FunctionID
	Name      string
	Namespace string  // for free functions
	Class     ClassID // NoClassID for free functions
	Static    bool
	Flags     FuncFlags
	Templates []string
	Throws    []ThrowsDecl
	Overrides []FunctionID // explicit override edges
	Span      source.Span

	inherited atomic.Pointer[types.Set]
}

// IsMethod reports whether fn belongs to a class.
func (fn *Function) IsMethod() bool { return fn.Class.IsValid() }

// Synthesized reports whether the declaration was not written by the author.
func (fn *Function) Synthesized() bool { return fn.Flags&FuncFlagSynthesized != 0 }

// HasTemplate reports whether name is one of fn's own template parameters.
func (fn *Function) HasTemplate(name string) bool {
	for _, t := range fn.Templates {
		if t == name {
			return true
		}
	}
	return false
}

// Declared returns the set of own documented throws.
func (fn *Function) Declared() types.Set {
	ids := make([]types.TypeID, 0, len(fn.Throws))
	for _, d := range fn.Throws {
		ids = append(ids, d.Type)
	}
	return types.NewSet(ids...)
}

// Inherited returns the throws copied from overridden methods.
func (fn *Function) Inherited() types.Set {
	if p := fn.inherited.Load(); p != nil {
		return *p
	}
	return types.Set{}
}

// MergeInherited unions s into the inherited set and reports whether the
// set grew. Safe for concurrent use.
func (fn *Function) MergeInherited(s types.Set) bool {
	if s.Empty() {
		return false
	}
	for {
		old := fn.inherited.Load()
		var cur types.Set
		if old != nil {
			cur = *old
		}
		if cur.SupersetOf(s) {
			return false
		}
		next := cur.Union(s)
		if fn.inherited.CompareAndSwap(old, &next) {
			return true
		}
	}
}

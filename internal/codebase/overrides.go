package codebase

import "docthrows/internal/types"

// OverrideStatus reports whether override edges could be computed.
type OverrideStatus uint8

const (
	OverridesOK OverrideStatus = iota
	// OverridesNone: not a method, or nothing is overridden.
	OverridesNone
	// OverridesUnresolved: a class on the way is missing or the hierarchy
	// is deeper than allowed.
	OverridesUnresolved
)

func (s OverrideStatus) String() string {
	switch s {
	case OverridesOK:
		return "ok"
	case OverridesNone:
		return "none"
	default:
		return "unresolved"
	}
}

// Overrides returns the methods directly overridden by id. Explicit edges
// win; otherwise each direct ancestor (parent first, then interfaces in
// declaration order) contributes the nearest method of the same name.
func (ix *Index) Overrides(id FunctionID, maxDepth int) ([]FunctionID, OverrideStatus) {
	fn := ix.Function(id)
	if fn == nil {
		return nil, OverridesUnresolved
	}
	if len(fn.Overrides) > 0 {
		out := make([]FunctionID, 0, len(fn.Overrides))
		for _, o := range fn.Overrides {
			if ix.Function(o) == nil {
				return nil, OverridesUnresolved
			}
			out = append(out, o)
		}
		return out, OverridesOK
	}
	if !fn.IsMethod() {
		return nil, OverridesNone
	}
	cls := ix.Class(fn.Class)
	if cls == nil {
		return nil, OverridesUnresolved
	}

	w := methodWalk{ix: ix, name: fn.Name, visited: map[ClassID]bool{cls.ID: true}}
	var out []FunctionID
	seen := make(map[FunctionID]bool)
	for _, anc := range cls.DirectAncestors() {
		m, ok := w.nearest(anc, maxDepth-1)
		if !ok {
			return nil, OverridesUnresolved
		}
		if m.IsValid() && !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil, OverridesNone
	}
	return out, OverridesOK
}

type methodWalk struct {
	ix      *Index
	name    string
	visited map[ClassID]bool
}

// nearest finds the closest method named w.name starting at class t.
// ok is false when a class is missing or depth runs out.
func (w *methodWalk) nearest(t types.TypeID, depth int) (FunctionID, bool) {
	if depth < 0 {
		return NoFunctionID, false
	}
	c, ok := w.ix.lookupClass(t, maxAliasChain)
	if !ok {
		return NoFunctionID, false
	}
	if w.visited[c.ID] {
		// цикл или ромб: этот класс уже просмотрен
		return NoFunctionID, true
	}
	w.visited[c.ID] = true
	if m, ok := w.ix.Method(c.ID, w.name); ok {
		return m, true
	}
	for _, anc := range c.DirectAncestors() {
		m, ok := w.nearest(anc, depth-1)
		if !ok {
			return NoFunctionID, false
		}
		if m.IsValid() {
			return m, true
		}
	}
	return NoFunctionID, true
}

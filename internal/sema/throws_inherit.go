package sema

import (
	"docthrows/internal/codebase"
	"docthrows/internal/expand"
	"docthrows/internal/types"
)

// ResolveInherited copies the throws of the methods fn overrides into fn's
// inherited set. Overridden methods are resolved first. Re-running it on
// the same index yields the same set.
//
// Nothing is inherited when the option is off, the overrides cannot be
// computed, fn is skipped by the predicate, or fn documents its own throws.
func (c *ThrowsChecker) ResolveInherited(fn *codebase.Function) (types.Set, expand.Status) {
	if !c.opts.InheritThrows {
		return fn.Inherited(), expand.StatusOK
	}
	st := c.inherit(fn, c.oracle.MaxDepth(), make(map[codebase.FunctionID]struct{}))
	return fn.Inherited(), st
}

// inherit resolves fn once per checker: a finished method is recorded in
// c.resolved, so shared ancestors of a diamond are visited a single time.
// visiting holds the methods on the current path; meeting one again is a
// cycle and aborts like an exhausted depth.
func (c *ThrowsChecker) inherit(fn *codebase.Function, depth expand.Depth, visiting map[codebase.FunctionID]struct{}) expand.Status {
	if _, done := c.resolved.Load(fn.ID); done {
		return expand.StatusOK
	}
	if depth.Exhausted() {
		return expand.StatusDepthExceeded
	}
	if _, onPath := visiting[fn.ID]; onPath {
		return expand.StatusDepthExceeded
	}
	if c.skipper(fn) || len(fn.Throws) > 0 {
		c.resolved.Store(fn.ID, struct{}{})
		return expand.StatusOK
	}
	overridden, ost := c.ix.Overrides(fn.ID, int(depth))
	if ost != codebase.OverridesOK {
		if ost == codebase.OverridesNone {
			c.resolved.Store(fn.ID, struct{}{})
		}
		return expand.StatusOK
	}

	visiting[fn.ID] = struct{}{}
	defer delete(visiting, fn.ID)

	var result types.Set
	for _, id := range overridden {
		anc := c.ix.Function(id)
		if st := c.inherit(anc, depth.Next(), visiting); st != expand.StatusOK {
			return st
		}
		full, st := c.fullSet(anc, depth.Next())
		if st != expand.StatusOK {
			return st
		}
		switch c.opts.InheritPolicy {
		case InheritLastWins:
			if !full.Empty() {
				result = full
			}
		default:
			result = result.Union(full)
		}
	}
	fn.MergeInherited(result)
	c.resolved.Store(fn.ID, struct{}{})
	return expand.StatusOK
}

// fullSet is fn's declared throws, with self references bound to fn's class,
// joined with its inherited throws.
func (c *ThrowsChecker) fullSet(fn *codebase.Function, depth expand.Depth) (types.Set, expand.Status) {
	ids := make([]types.TypeID, 0, len(fn.Throws))
	for _, d := range fn.Throws {
		bound := d.Type
		if typ, ok := c.in.Lookup(d.Type); ok && typ.IsSelfReference() {
			var st expand.Status
			bound, st = c.oracle.ResolveDepth(d.Type, fn.Class, depth)
			switch st {
			case expand.StatusDepthExceeded:
				return types.Set{}, st
			case expand.StatusUnbound:
				continue
			}
		}
		ids = append(ids, bound)
	}
	return types.NewSet(ids...).Union(fn.Inherited()), expand.StatusOK
}

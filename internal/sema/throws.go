package sema

import (
	"docthrows/internal/codebase"
	"docthrows/internal/diag"
	"docthrows/internal/expand"
	"docthrows/internal/types"
)

// CheckThrows applies the throws rules to every declared type of fn.
// Diagnostics are buffered and reach r only when the whole function was
// checked without exceeding the depth limit.
func (c *ThrowsChecker) CheckThrows(fn *codebase.Function, r diag.Reporter) Outcome {
	out := Outcome{Throwable: make([]bool, len(fn.Throws))}
	rep := newThrowsReporter(c, fn)
	for i, decl := range fn.Throws {
		throwable, st := c.checkOne(fn, decl, rep)
		if st == expand.StatusDepthExceeded {
			return Outcome{Aborted: true}
		}
		out.Throwable[i] = throwable
	}
	rep.flush(r)
	return out
}

// checkOne reports whether decl can be thrown. Only StatusDepthExceeded is
// returned as a non-OK status.
func (c *ThrowsChecker) checkOne(fn *codebase.Function, decl codebase.ThrowsDecl, rep *throwsReporter) (bool, expand.Status) {
	typ, ok := c.in.Lookup(decl.Type)
	if !ok || !typ.IsObjectLike() {
		rep.nonObject(decl)
		return false, expand.StatusOK
	}

	switch typ.Kind {
	case types.KindTemplate:
		if fn.Static && !fn.HasTemplate(typ.Name) {
			rep.templateStatic(decl)
		}
		return false, expand.StatusOK
	case types.KindObject:
		return true, expand.StatusOK
	}
	if decl.Type == c.marker {
		return true, expand.StatusOK
	}

	resolved, st := c.oracle.Resolve(decl.Type, fn.Class)
	switch st {
	case expand.StatusDepthExceeded:
		return false, st
	case expand.StatusUnbound:
		rep.undeclared(decl, types.NoTypeID)
		return false, expand.StatusOK
	}
	if resolved == c.marker {
		return true, expand.StatusOK
	}

	cls, ok := c.ix.ClassByType(resolved)
	if !ok {
		rep.undeclared(decl, c.suggest(resolved))
		return false, expand.StatusOK
	}
	switch cls.Kind {
	case codebase.ClassKindTrait:
		rep.isTrait(decl)
		return false, expand.StatusOK
	case codebase.ClassKindInterface:
		rep.isInterface(decl)
		return true, expand.StatusOK
	case codebase.ClassKindClass:
	}

	throwable, st := c.oracle.IsThrowable(resolved)
	if st == expand.StatusDepthExceeded {
		return false, st
	}
	if !throwable {
		rep.nonThrowable(decl, c.suggest(resolved))
	}
	return true, expand.StatusOK
}

func (c *ThrowsChecker) suggest(missing types.TypeID) types.TypeID {
	if c.opts.Suggester == nil {
		return types.NoTypeID
	}
	id, ok := c.opts.Suggester.Suggest(missing, c.filter)
	if !ok {
		return types.NoTypeID
	}
	return id
}

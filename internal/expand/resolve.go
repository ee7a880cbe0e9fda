package expand

import (
	"docthrows/internal/codebase"
	"docthrows/internal/types"
)

// Resolve binds self/static/parent against scope and follows class
// aliases. The result may name a class that is not indexed; callers check
// with ClassByType.
func (o *Oracle) Resolve(t types.TypeID, scope codebase.ClassID) (types.TypeID, Status) {
	return o.ResolveDepth(t, scope, o.maxDepth)
}

// ResolveDepth is Resolve with an explicit budget.
func (o *Oracle) ResolveDepth(t types.TypeID, scope codebase.ClassID, depth Depth) (types.TypeID, Status) {
	if depth.Exhausted() {
		return types.NoTypeID, StatusDepthExceeded
	}
	typ, ok := o.ix.Types().Lookup(t)
	if !ok {
		return types.NoTypeID, StatusUnknown
	}
	switch typ.Kind {
	case types.KindSelf, types.KindStatic:
		c := o.ix.Class(scope)
		if c == nil {
			return types.NoTypeID, StatusUnbound
		}
		return c.Type, StatusOK
	case types.KindParent:
		c := o.ix.Class(scope)
		if c == nil || !c.Parent.IsValid() {
			return types.NoTypeID, StatusUnbound
		}
		return o.followAliases(c.Parent, depth.Next())
	case types.KindClass:
		return o.followAliases(t, depth)
	default:
		return t, StatusOK
	}
}

// followAliases walks class_alias links until a declared class or a name
// without alias is reached.
func (o *Oracle) followAliases(t types.TypeID, depth Depth) (types.TypeID, Status) {
	for {
		if depth.Exhausted() {
			return types.NoTypeID, StatusDepthExceeded
		}
		if _, ok := o.ix.ClassByType(t); ok {
			return t, StatusOK
		}
		next, ok := o.ix.Alias(t)
		if !ok {
			return t, StatusOK
		}
		t = next
		depth = depth.Next()
	}
}

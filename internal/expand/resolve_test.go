package expand

import (
	"testing"

	"docthrows/internal/codebase"
	"docthrows/internal/types"
)

func TestResolveSelfStaticParent(t *testing.T) {
	h := newHierarchy()
	h.exceptions(t)
	child := h.add(t, `\App\Err`, codebase.ClassKindClass, `\RuntimeException`)
	root := h.add(t, `\App\Root`, codebase.ClassKindClass, "")
	h.ix.Freeze()
	o := New(h.ix, 0)

	self := h.in.Intern(types.Type{Kind: types.KindSelf, Name: "self"})
	static := h.in.Intern(types.Type{Kind: types.KindStatic, Name: "static"})
	parent := h.in.Intern(types.Type{Kind: types.KindParent, Name: "parent"})

	if got, st := o.Resolve(self, child); st != StatusOK || got != h.in.Class(`\App\Err`) {
		t.Fatalf("self = %s %s", h.in.String(got), st)
	}
	if got, st := o.Resolve(static, child); st != StatusOK || got != h.in.Class(`\App\Err`) {
		t.Fatalf("static = %s %s", h.in.String(got), st)
	}
	if got, st := o.Resolve(parent, child); st != StatusOK || got != h.in.Class(`\RuntimeException`) {
		t.Fatalf("parent = %s %s", h.in.String(got), st)
	}
	if _, st := o.Resolve(parent, root); st != StatusUnbound {
		t.Fatalf("parent without parent class: %s", st)
	}
	if _, st := o.Resolve(self, codebase.NoClassID); st != StatusUnbound {
		t.Fatalf("self outside class: %s", st)
	}
}

func TestResolveAliases(t *testing.T) {
	h := newHierarchy()
	h.exceptions(t)
	target := h.in.Class(`\RuntimeException`)
	if err := h.ix.AddAlias(h.in.Class(`\Legacy\Failure`), h.in.Class(`\Compat\Failure`)); err != nil {
		t.Fatal(err)
	}
	if err := h.ix.AddAlias(h.in.Class(`\Compat\Failure`), target); err != nil {
		t.Fatal(err)
	}
	if err := h.ix.AddAlias(h.in.Class(`\Loop\A`), h.in.Class(`\Loop\B`)); err != nil {
		t.Fatal(err)
	}
	if err := h.ix.AddAlias(h.in.Class(`\Loop\B`), h.in.Class(`\Loop\A`)); err != nil {
		t.Fatal(err)
	}
	h.ix.Freeze()
	o := New(h.ix, 10)

	if got, st := o.Resolve(h.in.Class(`\Legacy\Failure`), codebase.NoClassID); st != StatusOK || got != target {
		t.Fatalf("alias chain = %s %s", h.in.String(got), st)
	}
	if _, st := o.Resolve(h.in.Class(`\Loop\A`), codebase.NoClassID); st != StatusDepthExceeded {
		t.Fatalf("alias loop: %s", st)
	}
	if ok, st := o.IsThrowable(h.in.Class(`\Legacy\Failure`)); !ok || st != StatusOK {
		t.Fatalf("aliased class throwable = %v %s", ok, st)
	}
	intID := h.in.Intern(types.MakePrimitive("int"))
	if got, st := o.Resolve(intID, codebase.NoClassID); got != intID || st != StatusOK {
		t.Fatalf("Resolve must leave primitives alone")
	}
}

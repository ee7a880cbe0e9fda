package codebase

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"docthrows/internal/types"
)

type fixture struct {
	in *types.Interner
	ix *Index
}

func newFixture() *fixture {
	in := types.NewInterner("")
	return &fixture{in: in, ix: NewIndex(in)}
}

func (f *fixture) class(t *testing.T, name string, kind ClassKind, parent string, ifaces ...string) ClassID {
	t.Helper()
	c := Class{Name: name, Kind: kind}
	if parent != "" {
		c.Parent = f.in.Class(parent)
	}
	for _, i := range ifaces {
		c.Interfaces = append(c.Interfaces, f.in.Class(i))
	}
	id, err := f.ix.AddClass(c)
	if err != nil {
		t.Fatalf("AddClass(%s): %v", name, err)
	}
	return id
}

func (f *fixture) method(t *testing.T, class ClassID, name string, throws ...string) FunctionID {
	t.Helper()
	fn := &Function{Name: name, Class: class}
	for _, th := range throws {
		fn.Throws = append(fn.Throws, ThrowsDecl{Type: f.in.Class(th), Text: th})
	}
	id, err := f.ix.AddFunction(fn)
	if err != nil {
		t.Fatalf("AddFunction(%s): %v", name, err)
	}
	return id
}

func TestIndexDuplicates(t *testing.T) {
	f := newFixture()
	a := f.class(t, `\A`, ClassKindClass, "")
	if _, err := f.ix.AddClass(Class{Name: `\a`}); !errors.Is(err, ErrDuplicateClass) {
		t.Fatalf("expected ErrDuplicateClass, got %v", err)
	}
	f.method(t, a, "run")
	if _, err := f.ix.AddFunction(&Function{Name: "RUN", Class: a}); !errors.Is(err, ErrDuplicateFunction) {
		t.Fatalf("expected ErrDuplicateFunction, got %v", err)
	}
	if err := f.ix.AddAlias(f.in.Class(`\A`), f.in.Class(`\B`)); !errors.Is(err, ErrAliasConflict) {
		t.Fatalf("expected ErrAliasConflict, got %v", err)
	}
	if _, err := f.ix.AddFunction(&Function{Name: "x", Class: 42}); !errors.Is(err, ErrUnknownClass) {
		t.Fatalf("expected ErrUnknownClass, got %v", err)
	}
}

func TestIndexFreezePanics(t *testing.T) {
	f := newFixture()
	f.ix.Freeze()
	defer func() {
		if recover() == nil {
			t.Fatalf("AddClass after Freeze must panic")
		}
	}()
	_, _ = f.ix.AddClass(Class{Name: `\A`})
}

func TestIndexLookups(t *testing.T) {
	f := newFixture()
	a := f.class(t, `\App\Service`, ClassKindClass, "")
	m := f.method(t, a, "Handle")
	if err := f.ix.AddAlias(f.in.Class(`\Legacy`), f.in.Class(`\App\Service`)); err != nil {
		t.Fatalf("AddAlias: %v", err)
	}
	free, err := f.ix.AddFunction(&Function{Name: "helper", Namespace: `\App`})
	if err != nil {
		t.Fatalf("AddFunction: %v", err)
	}

	if got, ok := f.ix.FindMethod(`\legacy`, "handle"); !ok || got != m {
		t.Fatalf("FindMethod via alias = %d, %v", got, ok)
	}
	if got, ok := f.ix.FindFunction(`\app\HELPER`); !ok || got != free {
		t.Fatalf("FindFunction = %d, %v", got, ok)
	}
	if got := f.ix.FQSEN(f.ix.Function(m)); got != `\App\Service::Handle` {
		t.Fatalf("FQSEN = %q", got)
	}
	if got := f.ix.FQSEN(f.ix.Function(free)); got != `\App\helper` {
		t.Fatalf("FQSEN free = %q", got)
	}
	if f.ix.ClassCount() != 1 || len(f.ix.Functions()) != 2 {
		t.Fatalf("unexpected counts")
	}
}

func TestMergeInheritedIsMonotone(t *testing.T) {
	f := newFixture()
	fn := &Function{Name: "op"}
	a := f.in.Class(`\A`)
	b := f.in.Class(`\B`)

	if !fn.MergeInherited(types.NewSet(a)) {
		t.Fatalf("first merge must grow the set")
	}
	if fn.MergeInherited(types.NewSet(a)) {
		t.Fatalf("repeated merge must be a no-op")
	}
	fn.MergeInherited(types.NewSet(b))
	if got := fn.Inherited(); !got.Equal(types.NewSet(a, b)) {
		t.Fatalf("Inherited = %v", got.IDs())
	}
}

func TestMergeInheritedConcurrent(t *testing.T) {
	f := newFixture()
	fn := &Function{Name: "op"}
	ids := make([]types.TypeID, 32)
	for i := range ids {
		ids[i] = f.in.Class(fmt.Sprintf(`\E%d`, i))
	}
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id types.TypeID) {
			defer wg.Done()
			fn.MergeInherited(types.NewSet(id))
		}(id)
	}
	wg.Wait()
	if fn.Inherited().Len() != len(ids) {
		t.Fatalf("lost updates: %d of %d", fn.Inherited().Len(), len(ids))
	}
}

package expand

import (
	"fmt"
	"sync"
	"testing"

	"docthrows/internal/codebase"
	"docthrows/internal/types"
)

type hierarchy struct {
	in *types.Interner
	ix *codebase.Index
}

func newHierarchy() *hierarchy {
	in := types.NewInterner("")
	return &hierarchy{in: in, ix: codebase.NewIndex(in)}
}

func (h *hierarchy) add(t *testing.T, name string, kind codebase.ClassKind, parent string, ifaces ...string) codebase.ClassID {
	t.Helper()
	c := codebase.Class{Name: name, Kind: kind}
	if parent != "" {
		c.Parent = h.in.Class(parent)
	}
	for _, i := range ifaces {
		c.Interfaces = append(c.Interfaces, h.in.Class(i))
	}
	id, err := h.ix.AddClass(c)
	if err != nil {
		t.Fatalf("AddClass(%s): %v", name, err)
	}
	return id
}

func (h *hierarchy) exceptions(t *testing.T) {
	h.add(t, `\Throwable`, codebase.ClassKindInterface, "")
	h.add(t, `\Exception`, codebase.ClassKindClass, "", `\Throwable`)
	h.add(t, `\RuntimeException`, codebase.ClassKindClass, `\Exception`)
}

func TestExpandClosure(t *testing.T) {
	h := newHierarchy()
	h.exceptions(t)
	h.add(t, `\App\Tagged`, codebase.ClassKindInterface, "")
	h.add(t, `\App\IOFailure`, codebase.ClassKindClass, `\RuntimeException`, `\App\Tagged`)
	h.ix.Freeze()
	o := New(h.ix, 0)

	set, st := o.Expand(h.in.Class(`\App\IOFailure`))
	if st != StatusOK {
		t.Fatalf("status = %s", st)
	}
	want := types.NewSet(
		h.in.Class(`\App\IOFailure`), h.in.Class(`\RuntimeException`),
		h.in.Class(`\Exception`), h.in.Class(`\Throwable`), h.in.Class(`\App\Tagged`),
	)
	if !set.Equal(want) {
		t.Fatalf("closure = %s, want %s", set.Format(h.in), want.Format(h.in))
	}
	if ok, _ := o.IsThrowable(h.in.Class(`\App\IOFailure`)); !ok {
		t.Fatalf("IOFailure must be throwable")
	}
	if ok, _ := o.IsThrowable(h.in.Class(`\App\Tagged`)); ok {
		t.Fatalf("Tagged must not be throwable")
	}
}

func TestExpandKeepsUnindexedAncestors(t *testing.T) {
	h := newHierarchy()
	h.add(t, `\Loose`, codebase.ClassKindClass, "", `\Throwable`)
	h.ix.Freeze()
	o := New(h.ix, 0)
	if ok, st := o.IsThrowable(h.in.Class(`\Loose`)); !ok || st != StatusOK {
		t.Fatalf("IsThrowable = %v %s", ok, st)
	}
	if _, st := o.Expand(h.in.Class(`\Nowhere`)); st != StatusUnknown {
		t.Fatalf("unindexed class: %s", st)
	}
}

func TestExpandCycleExceedsDepth(t *testing.T) {
	h := newHierarchy()
	h.add(t, `\A`, codebase.ClassKindClass, `\B`)
	h.add(t, `\B`, codebase.ClassKindClass, `\A`)
	h.ix.Freeze()
	o := New(h.ix, 8)
	if _, st := o.Expand(h.in.Class(`\A`)); st != StatusDepthExceeded {
		t.Fatalf("cycle: %s", st)
	}
	// memoised answer stays the same
	if _, st := o.Expand(h.in.Class(`\A`)); st != StatusDepthExceeded {
		t.Fatalf("second query: %s", st)
	}
}

func TestExpandDeepChain(t *testing.T) {
	h := newHierarchy()
	h.add(t, `\C0`, codebase.ClassKindClass, "")
	for i := 1; i <= 10; i++ {
		h.add(t, fmt.Sprintf(`\C%d`, i), codebase.ClassKindClass, fmt.Sprintf(`\C%d`, i-1))
	}
	h.ix.Freeze()

	if _, st := New(h.ix, 5).Expand(h.in.Class(`\C10`)); st != StatusDepthExceeded {
		t.Fatalf("shallow budget: %s", st)
	}
	set, st := New(h.ix, 20).Expand(h.in.Class(`\C10`))
	if st != StatusOK || set.Len() != 11 {
		t.Fatalf("deep budget: %d %s", set.Len(), st)
	}
}

func TestExpandConcurrent(t *testing.T) {
	h := newHierarchy()
	h.exceptions(t)
	for i := 0; i < 20; i++ {
		h.add(t, fmt.Sprintf(`\E%d`, i), codebase.ClassKindClass, `\RuntimeException`)
	}
	h.ix.Freeze()
	o := New(h.ix, 0)

	var wg sync.WaitGroup
	errs := make(chan string, 200)
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				id := h.in.Class(fmt.Sprintf(`\E%d`, (i+g)%20))
				if ok, st := o.IsThrowable(id); !ok || st != StatusOK {
					errs <- fmt.Sprintf("E%d: %v %s", i, ok, st)
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

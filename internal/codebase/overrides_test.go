package codebase

import (
	"slices"
	"testing"
)

func TestOverridesParentBeforeInterfaces(t *testing.T) {
	f := newFixture()
	i1 := f.class(t, `\I1`, ClassKindInterface, "")
	i2 := f.class(t, `\I2`, ClassKindInterface, "")
	base := f.class(t, `\Base`, ClassKindClass, "")
	child := f.class(t, `\Child`, ClassKindClass, `\Base`, `\I2`, `\I1`)

	mi1 := f.method(t, i1, "op")
	mi2 := f.method(t, i2, "op")
	mb := f.method(t, base, "Op")
	mc := f.method(t, child, "op")

	got, st := f.ix.Overrides(mc, 10)
	if st != OverridesOK {
		t.Fatalf("status = %s", st)
	}
	want := []FunctionID{mb, mi2, mi1}
	if !slices.Equal(got, want) {
		t.Fatalf("Overrides = %v, want %v", got, want)
	}
}

func TestOverridesNearestAncestorAndDedup(t *testing.T) {
	f := newFixture()
	iface := f.class(t, `\I`, ClassKindInterface, "")
	f.class(t, `\Mid`, ClassKindClass, "", `\I`)
	child := f.class(t, `\Child`, ClassKindClass, `\Mid`, `\I`)
	mi := f.method(t, iface, "op")
	mc := f.method(t, child, "op")

	got, st := f.ix.Overrides(mc, 10)
	if st != OverridesOK || !slices.Equal(got, []FunctionID{mi}) {
		t.Fatalf("Overrides = %v (%s)", got, st)
	}
}

func TestOverridesStatuses(t *testing.T) {
	f := newFixture()
	free, _ := f.ix.AddFunction(&Function{Name: "f"})
	if _, st := f.ix.Overrides(free, 10); st != OverridesNone {
		t.Fatalf("free function: %s", st)
	}

	lonely := f.class(t, `\Lonely`, ClassKindClass, "")
	if _, st := f.ix.Overrides(f.method(t, lonely, "op"), 10); st != OverridesNone {
		t.Fatalf("no ancestors: %s", st)
	}

	orphan := f.class(t, `\Orphan`, ClassKindClass, `\Missing`)
	if _, st := f.ix.Overrides(f.method(t, orphan, "op"), 10); st != OverridesUnresolved {
		t.Fatalf("missing parent: %s", st)
	}

	if _, st := f.ix.Overrides(FunctionID(999), 10); st != OverridesUnresolved {
		t.Fatalf("unknown function: %s", st)
	}
}

func TestOverridesCycleAndDepth(t *testing.T) {
	f := newFixture()
	a := f.class(t, `\A`, ClassKindClass, `\B`)
	f.class(t, `\B`, ClassKindClass, `\A`)
	ma := f.method(t, a, "op")
	if _, st := f.ix.Overrides(ma, 50); st != OverridesNone {
		t.Fatalf("cycle must terminate with none, got %s", st)
	}

	g := newFixture()
	g.class(t, `\C0`, ClassKindClass, "")
	names := []string{`\C0`, `\C1`, `\C2`, `\C3`, `\C4`}
	var last ClassID
	for i := 1; i < len(names); i++ {
		last = g.class(t, names[i], ClassKindClass, names[i-1])
	}
	g.method(t, g.ix.byType[g.in.Class(`\C0`)], "op")
	m := g.method(t, last, "op")
	if _, st := g.ix.Overrides(m, 2); st != OverridesUnresolved {
		t.Fatalf("depth limit: %s", st)
	}
	if got, st := g.ix.Overrides(m, 10); st != OverridesOK || len(got) != 1 {
		t.Fatalf("deep chain: %v %s", got, st)
	}
}

func TestOverridesExplicitEdgesWin(t *testing.T) {
	f := newFixture()
	base := f.class(t, `\Base`, ClassKindClass, "")
	other := f.class(t, `\Other`, ClassKindClass, "")
	child := f.class(t, `\Child`, ClassKindClass, `\Base`)
	f.method(t, base, "op")
	mo := f.method(t, other, "op")
	mc := f.method(t, child, "op")
	f.ix.SetOverrides(mc, []FunctionID{mo})

	got, st := f.ix.Overrides(mc, 10)
	if st != OverridesOK || !slices.Equal(got, []FunctionID{mo}) {
		t.Fatalf("explicit edges: %v %s", got, st)
	}
}

package types

import "testing"

func TestInternerClassIdentityIsCaseInsensitive(t *testing.T) {
	in := NewInterner("")
	a := in.Class(`\App\IOFailure`)
	b := in.Class(`app\iofailure`)
	if a != b {
		t.Fatalf("expected same id, got %d and %d", a, b)
	}
	if got := in.String(a); got != `\App\IOFailure` {
		t.Fatalf("display should keep first spelling, got %q", got)
	}
}

func TestInternerThrowableMarker(t *testing.T) {
	in := NewInterner("")
	if in.Throwable() != in.Class(`\Throwable`) {
		t.Fatalf("marker must resolve to \\Throwable")
	}
	if in.Class(`\App\Throwable`) == in.Throwable() {
		t.Fatalf("namespaced Throwable must not alias the marker")
	}

	custom := NewInterner(`\Base\Root`)
	if custom.MustLookup(custom.Throwable()).Name != `\Base\Root` {
		t.Fatalf("custom marker not honoured")
	}
}

func TestInternerArraysAndPrimitives(t *testing.T) {
	in := NewInterner("")
	intID := in.Intern(MakePrimitive("int"))
	if in.Intern(MakePrimitive("INT")) != intID {
		t.Fatalf("primitive keywords are case-insensitive")
	}
	arr := in.Intern(MakeArray(intID))
	if got := in.String(arr); got != "int[]" {
		t.Fatalf("String = %q", got)
	}
	if got := in.String(in.Builtins().Array); got != "array" {
		t.Fatalf("bare array String = %q", got)
	}
	if _, ok := in.Lookup(NoTypeID); ok {
		t.Fatalf("NoTypeID must not resolve")
	}
	if _, ok := in.FindClass(`\Missing`); ok {
		t.Fatalf("FindClass must not intern")
	}
}

func TestSetOperations(t *testing.T) {
	in := NewInterner("")
	a := in.Class(`\A`)
	b := in.Class(`\B`)
	c := in.Class(`\C`)

	s := NewSet(b, a, NoTypeID, a)
	if s.Len() != 2 || !s.Contains(a) || !s.Contains(b) || s.Contains(c) {
		t.Fatalf("unexpected set %v", s.IDs())
	}
	u := s.Union(NewSet(c, a))
	if u.Len() != 3 || !u.SupersetOf(s) {
		t.Fatalf("union = %v", u.IDs())
	}
	if !u.Union(u).Equal(u) {
		t.Fatalf("union must be idempotent")
	}
	if got := u.Format(in); got != `{\A, \B, \C}` {
		t.Fatalf("Format = %q", got)
	}
	var empty Set
	if !empty.Empty() || !empty.Union(s).Equal(s) {
		t.Fatalf("zero Set must behave as empty")
	}
}

func TestFQSENHelpers(t *testing.T) {
	if got := NormalizeFQSEN(` \\A\B `); got != `\A\B` {
		t.Fatalf("NormalizeFQSEN = %q", got)
	}
	ns, short := SplitFQSEN(`\A\B\C`)
	if ns != `\A\B` || short != "C" {
		t.Fatalf("SplitFQSEN = %q %q", ns, short)
	}
	ns, short = SplitFQSEN(`Exception`)
	if ns != `\` || short != "Exception" {
		t.Fatalf("SplitFQSEN global = %q %q", ns, short)
	}
	if got := JoinFQSEN(`\App\`, `Err`); got != `\App\Err` {
		t.Fatalf("JoinFQSEN = %q", got)
	}
	if got := JoinFQSEN("", "Err"); got != `\Err` {
		t.Fatalf("JoinFQSEN global = %q", got)
	}
}

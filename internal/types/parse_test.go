package types

import (
	"errors"
	"testing"
)

func TestParseExpr(t *testing.T) {
	in := NewInterner("")
	ctx := ParseContext{
		Namespace: `\App\Net`,
		Uses:      map[string]string{FoldName("Base"): `\Lib\BaseException`},
		Templates: []string{"T"},
	}
	cases := []struct {
		expr  string
		texts []string
		kinds []Kind
		names []string
	}{
		{"NetworkError", []string{"NetworkError"}, []Kind{KindClass}, []string{`\App\Net\NetworkError`}},
		{`\RuntimeException|int`, []string{`\RuntimeException`, "int"}, []Kind{KindClass, KindPrimitive}, []string{`\RuntimeException`, "int"}},
		{"?Base", []string{"null", "Base"}, []Kind{KindPrimitive, KindClass}, []string{"null", `\Lib\BaseException`}},
		{"T", []string{"T"}, []Kind{KindTemplate}, []string{"T"}},
		{"static|self|parent", []string{"static", "self", "parent"}, []Kind{KindStatic, KindSelf, KindParent}, nil},
		{"string[]", []string{"string[]"}, []Kind{KindArray}, []string{"string[]"}},
		{"array<int, Foo>", []string{"array<int, Foo>"}, []Kind{KindArray}, []string{"array"}},
		{"Collection<Foo|Bar>", []string{"Collection<Foo|Bar>"}, []Kind{KindClass}, []string{`\App\Net\Collection`}},
		{"object", []string{"object"}, []Kind{KindObject}, []string{"object"}},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			parts, err := in.ParseExpr(tc.expr, ctx)
			if err != nil {
				t.Fatalf("ParseExpr: %v", err)
			}
			if len(parts) != len(tc.texts) {
				t.Fatalf("got %d parts, want %d", len(parts), len(tc.texts))
			}
			for i, p := range parts {
				if p.Text != tc.texts[i] {
					t.Errorf("part %d text = %q, want %q", i, p.Text, tc.texts[i])
				}
				typ := in.MustLookup(p.Type)
				if typ.Kind != tc.kinds[i] {
					t.Errorf("part %d kind = %s, want %s", i, typ.Kind, tc.kinds[i])
				}
				if tc.names != nil && in.String(p.Type) != tc.names[i] {
					t.Errorf("part %d name = %q, want %q", i, in.String(p.Type), tc.names[i])
				}
			}
		})
	}
}

func TestParseExprOffsets(t *testing.T) {
	in := NewInterner("")
	parts, err := in.ParseExpr("A | ?B", ParseContext{})
	if err != nil {
		t.Fatalf("ParseExpr: %v", err)
	}
	if len(parts) != 3 {
		t.Fatalf("got %d parts", len(parts))
	}
	if parts[0].Offset != 0 || parts[2].Offset != 5 || parts[2].Text != "B" {
		t.Fatalf("offsets = %+v", parts)
	}
}

func TestParseExprErrors(t *testing.T) {
	in := NewInterner("")
	for _, expr := range []string{"", "A||B", "Foo<int", "Foo>", `Bad\`, "1Foo"} {
		if _, err := in.ParseExpr(expr, ParseContext{}); err == nil {
			t.Errorf("%q: expected error", expr)
		}
	}
	if _, err := in.ParseExpr("A|", ParseContext{}); !errors.Is(err, ErrEmptyType) {
		t.Errorf("trailing bar: want ErrEmptyType, got %v", err)
	}
}

func TestParseContextResolve(t *testing.T) {
	ctx := ParseContext{Namespace: `App`, Uses: map[string]string{"sub": `\Vendor\Sub`}}
	if got := ctx.Resolve(`Sub\Err`); got != `\Vendor\Sub\Err` {
		t.Fatalf("Resolve alias prefix = %q", got)
	}
	if got := ctx.Resolve(`\Abs`); got != `\Abs` {
		t.Fatalf("Resolve absolute = %q", got)
	}
	if got := ctx.Resolve(`Local`); got != `\App\Local` {
		t.Fatalf("Resolve relative = %q", got)
	}
}

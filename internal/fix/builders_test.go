package fix

import (
	"testing"

	"docthrows/internal/diag"
	"docthrows/internal/source"
)

func TestReplaceSpanDefaults(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("A.php", []byte("@throws Foo"))
	span := source.Span{File: fileID, Start: 8, End: 11}

	f := ReplaceSpan("replace with \\FooException", span, "FooException", "Foo")

	if f.Applicability != diag.FixApplicabilityAlwaysSafe {
		t.Errorf("expected always-safe applicability, got %s", f.Applicability)
	}
	if f.IsPreferred {
		t.Error("fix must not be preferred by default")
	}
	if f.ID != "" {
		t.Errorf("expected empty id, got %q", f.ID)
	}
	if len(f.Edits) != 1 {
		t.Fatalf("expected 1 edit, got %d", len(f.Edits))
	}
	edit := f.Edits[0]
	if edit.Span != span {
		t.Errorf("span mismatch: %v", edit.Span)
	}
	if edit.NewText != "FooException" || edit.OldText != "Foo" {
		t.Errorf("unexpected edit %q -> %q", edit.OldText, edit.NewText)
	}
}

func TestReplaceSpanOptions(t *testing.T) {
	span := source.Span{File: 1, Start: 0, End: 3}
	f := ReplaceSpan("t", span, "x", "",
		WithID("throws-suggest-1-0"),
		WithApplicability(diag.FixApplicabilityManualReview),
		Preferred(),
		nil,
	)
	if f.ID != "throws-suggest-1-0" {
		t.Errorf("id = %q", f.ID)
	}
	if f.Applicability != diag.FixApplicabilityManualReview {
		t.Errorf("applicability = %s", f.Applicability)
	}
	if !f.IsPreferred {
		t.Error("expected preferred")
	}
}

func TestSpansConflict(t *testing.T) {
	edit := func(start, end uint32) diag.TextEdit {
		return diag.TextEdit{Span: source.Span{Start: start, End: end}}
	}
	tests := []struct {
		name string
		a, b diag.TextEdit
		want bool
	}{
		{"disjoint", edit(0, 3), edit(3, 5), false},
		{"overlap", edit(0, 4), edit(3, 5), true},
		{"nested", edit(0, 10), edit(2, 3), true},
		{"two inserts", edit(4, 4), edit(4, 4), false},
		{"insert inside", edit(2, 2), edit(0, 4), true},
		{"insert at end", edit(4, 4), edit(0, 4), false},
		{"insert at start", edit(0, 4), edit(0, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := spansConflict(tt.a, tt.b); got != tt.want {
				t.Errorf("spansConflict = %v, want %v", got, tt.want)
			}
		})
	}
}

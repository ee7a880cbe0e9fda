package fix

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docthrows/internal/diag"
	"docthrows/internal/source"
)

const engineSource = "<?php\n/** @throws Foo */\nfunction f() {}\n/** @throws Bar */\nfunction g() {}\n"

// writeSource stores engineSource in a temp dir and loads it into a fresh FileSet.
func writeSource(t *testing.T) (*source.FileSet, source.FileID, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "funcs.php")
	if err := os.WriteFile(path, []byte(engineSource), 0o600); err != nil {
		t.Fatal(err)
	}
	fs := source.NewFileSetWithBase(dir)
	id, err := fs.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	return fs, id, path
}

func suggestionDiag(span source.Span, f diag.Fix) diag.Diagnostic {
	return diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.SemaUndeclaredThrowsType,
		Message:  "undeclared",
		Primary:  span,
		Fixes:    []diag.Fix{f},
	}
}

func fooBarDiagnostics(id source.FileID, barApp diag.FixApplicability) []diag.Diagnostic {
	foo := source.Span{File: id, Start: 18, End: 21}
	bar := source.Span{File: id, Start: 53, End: 56}
	return []diag.Diagnostic{
		// порядок намеренно обратный
		suggestionDiag(bar, ReplaceSpan("replace with \\BarError", bar, "\\BarError", "Bar",
			WithID("bar"), WithApplicability(barApp))),
		suggestionDiag(foo, ReplaceSpan("replace with FooException", foo, "FooException", "Foo",
			WithID("foo"))),
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestApplyOncePicksFirstSafeFix(t *testing.T) {
	fs, id, path := writeSource(t)
	res, err := Apply(fs, fooBarDiagnostics(id, diag.FixApplicabilityAlwaysSafe), ApplyOptions{Mode: ApplyModeOnce})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Applied) != 1 || res.Applied[0].ID != "foo" {
		t.Fatalf("expected fix foo applied first, got %+v", res.Applied)
	}
	want := "<?php\n/** @throws FooException */\nfunction f() {}\n/** @throws Bar */\nfunction g() {}\n"
	if got := readFile(t, path); got != want {
		t.Fatalf("file content:\n%s\nwant:\n%s", got, want)
	}
	if len(res.FileChanges) != 1 || res.FileChanges[0].Path != "funcs.php" || res.FileChanges[0].EditCount != 1 {
		t.Fatalf("unexpected file changes %+v", res.FileChanges)
	}
}

func TestApplyAllKeepsOffsetsStable(t *testing.T) {
	fs, id, path := writeSource(t)
	res, err := Apply(fs, fooBarDiagnostics(id, diag.FixApplicabilityAlwaysSafe), ApplyOptions{Mode: ApplyModeAll})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Applied) != 2 {
		t.Fatalf("expected 2 applied fixes, got %+v", res)
	}
	want := "<?php\n/** @throws FooException */\nfunction f() {}\n/** @throws \\BarError */\nfunction g() {}\n"
	if got := readFile(t, path); got != want {
		t.Fatalf("file content:\n%s\nwant:\n%s", got, want)
	}
	if res.FileChanges[0].EditCount != 2 {
		t.Fatalf("expected 2 edits in file, got %d", res.FileChanges[0].EditCount)
	}
}

func TestApplyAllSkipsUnsafeUnlessAllowed(t *testing.T) {
	fs, id, _ := writeSource(t)
	res, err := Apply(fs, fooBarDiagnostics(id, diag.FixApplicabilityManualReview), ApplyOptions{Mode: ApplyModeAll})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Applied) != 1 || res.Applied[0].ID != "foo" {
		t.Fatalf("expected only foo applied, got %+v", res.Applied)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].ID != "bar" || res.Skipped[0].Reason != "applicability is manual-review" {
		t.Fatalf("unexpected skips %+v", res.Skipped)
	}

	fs, id, path := writeSource(t)
	res, err = Apply(fs, fooBarDiagnostics(id, diag.FixApplicabilityManualReview), ApplyOptions{Mode: ApplyModeAll, Unsafe: true})
	if err != nil {
		t.Fatalf("Apply unsafe: %v", err)
	}
	if len(res.Applied) != 2 {
		t.Fatalf("expected both fixes with unsafe, got %+v", res.Applied)
	}
	if got := readFile(t, path); got == engineSource {
		t.Fatal("file not rewritten")
	}
}

func TestApplyByID(t *testing.T) {
	fs, id, path := writeSource(t)
	res, err := Apply(fs, fooBarDiagnostics(id, diag.FixApplicabilityManualReview), ApplyOptions{Mode: ApplyModeID, TargetID: "bar"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Applied) != 1 || res.Applied[0].ID != "bar" {
		t.Fatalf("unexpected applied %+v", res.Applied)
	}
	if filepath.Base(res.Applied[0].PrimaryPath) != "funcs.php" {
		t.Fatalf("primary path = %q", res.Applied[0].PrimaryPath)
	}
	want := "<?php\n/** @throws Foo */\nfunction f() {}\n/** @throws \\BarError */\nfunction g() {}\n"
	if got := readFile(t, path); got != want {
		t.Fatalf("file content:\n%s\nwant:\n%s", got, want)
	}

	_, err = Apply(fs, fooBarDiagnostics(id, diag.FixApplicabilityAlwaysSafe), ApplyOptions{Mode: ApplyModeID, TargetID: "nope"})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("expected ErrNoFixes for unknown id, got %v", err)
	}
}

func TestApplyOldTextGuard(t *testing.T) {
	fs, id, path := writeSource(t)
	span := source.Span{File: id, Start: 18, End: 21}
	diags := []diag.Diagnostic{suggestionDiag(span, ReplaceSpan("t", span, "X", "Baz", WithID("stale")))}

	res, err := Apply(fs, diags, ApplyOptions{Mode: ApplyModeAll})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("expected ErrNoFixes, got %v", err)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Reason != "existing text does not match expected content" {
		t.Fatalf("unexpected skips %+v", res.Skipped)
	}
	if got := readFile(t, path); got != engineSource {
		t.Fatal("file must stay untouched")
	}
}

func TestApplyOverlapSkipsLater(t *testing.T) {
	fs, id, _ := writeSource(t)
	wide := source.Span{File: id, Start: 10, End: 21}
	narrow := source.Span{File: id, Start: 18, End: 21}
	diags := []diag.Diagnostic{
		suggestionDiag(wide, ReplaceSpan("wide", wide, "@throws X", "@throws Foo", WithID("wide"))),
		suggestionDiag(narrow, ReplaceSpan("narrow", narrow, "Y", "Foo", WithID("narrow"))),
	}
	res, err := Apply(fs, diags, ApplyOptions{Mode: ApplyModeAll})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Applied) != 1 || res.Applied[0].ID != "wide" {
		t.Fatalf("unexpected applied %+v", res.Applied)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].ID != "narrow" {
		t.Fatalf("unexpected skipped %+v", res.Skipped)
	}
}

func TestApplySkipsVirtualFiles(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("virtual.php", []byte(engineSource))
	span := source.Span{File: id, Start: 18, End: 21}
	diags := []diag.Diagnostic{suggestionDiag(span, ReplaceSpan("t", span, "X", "Foo"))}

	res, err := Apply(fs, diags, ApplyOptions{Mode: ApplyModeOnce})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("expected ErrNoFixes, got %v", err)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Reason != "target file is virtual" {
		t.Fatalf("unexpected skips %+v", res.Skipped)
	}
	if res.Skipped[0].ID != "SEM3003-0-18-0" {
		t.Fatalf("expected synthesized id, got %q", res.Skipped[0].ID)
	}
}

func TestGatherCandidatesSkipsDuplicateFixIDs(t *testing.T) {
	span := source.Span{File: 0, Start: 0, End: 0}
	diagnostics := []diag.Diagnostic{{
		Code:    diag.SemaUndeclaredThrowsType,
		Message: "undeclared",
		Primary: span,
		Fixes: []diag.Fix{
			{ID: "dup", Title: "first", Edits: []diag.TextEdit{{Span: span, NewText: "A"}}},
			{ID: "dup", Title: "second", Edits: []diag.TextEdit{{Span: span, NewText: "B"}}},
			{ID: "empty", Title: "no edits"},
		},
	}}

	candidates, skips := gatherCandidates(diagnostics)
	if len(candidates) != 1 || candidates[0].fix.Title != "first" {
		t.Fatalf("unexpected candidates %+v", candidates)
	}
	if len(skips) != 2 {
		t.Fatalf("expected 2 skipped fixes, got %+v", skips)
	}
	if skips[0].Reason != "duplicate fix id" || skips[1].Reason != "fix has no edits" {
		t.Fatalf("unexpected reasons %+v", skips)
	}
}

func TestApplyNoFixes(t *testing.T) {
	fs := source.NewFileSet()
	_, err := Apply(fs, []diag.Diagnostic{{Code: diag.SemaUndeclaredThrowsType}}, ApplyOptions{})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("expected ErrNoFixes, got %v", err)
	}
	if _, err := Apply(nil, nil, ApplyOptions{}); err == nil {
		t.Fatal("expected error for nil FileSet")
	}
}

func TestApplyKeepsCRLFLineEndings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.php")
	crlf := strings.ReplaceAll(engineSource, "\n", "\r\n")
	if err := os.WriteFile(path, []byte(crlf), 0o600); err != nil {
		t.Fatal(err)
	}
	fs := source.NewFileSetWithBase(dir)
	id, err := fs.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	span := source.Span{File: id, Start: 18, End: 21}
	d := suggestionDiag(span, ReplaceSpan("replace", span, "Baz", "Foo"))
	if _, err := Apply(fs, []diag.Diagnostic{d}, ApplyOptions{Mode: ApplyModeAll}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := strings.Replace(crlf, "@throws Foo", "@throws Baz", 1)
	if got := readFile(t, path); got != want {
		t.Fatalf("content = %q, want %q", got, want)
	}
}

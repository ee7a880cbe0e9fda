package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"
)

// TestJSONBasic проверяет базовое JSON форматирование
func TestJSONBasic(t *testing.T) {
	fs, bag := undeclaredFixture(t, "B.php")

	var buf bytes.Buffer
	opts := JSONOpts{
		IncludePositions: true,
		PathMode:         PathModeBasename,
		IncludeNotes:     true,
		IncludeFixes:     true,
		IncludePreviews:  true,
	}
	if err := JSON(&buf, bag, fs, opts); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("count = %d, diagnostics = %d", output.Count, len(output.Diagnostics))
	}

	d := output.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "SEM3003" {
		t.Errorf("severity/code = %s/%s", d.Severity, d.Code)
	}
	if len(d.Args) != 2 || d.Args[0] != `\B::run` || d.Args[1] != "NetworkError" {
		t.Errorf("args = %v", d.Args)
	}
	if d.Suggestion != `\NetworkException` {
		t.Errorf("suggestion = %q", d.Suggestion)
	}
	if d.Location.File != "B.php" || d.Location.StartLine != 3 || d.Location.StartCol != 17 {
		t.Errorf("location = %+v", d.Location)
	}
	if len(d.Notes) != 1 {
		t.Errorf("notes = %d", len(d.Notes))
	}
	if len(d.Fixes) != 1 || d.Fixes[0].Applicability != "always-safe" || len(d.Fixes[0].Edits) != 1 {
		t.Fatalf("fixes = %+v", d.Fixes)
	}
	edit := d.Fixes[0].Edits[0]
	if edit.NewText != "NetworkException" || edit.OldText != "NetworkError" {
		t.Errorf("edit = %+v", edit)
	}
	if len(edit.AfterLines) != 1 || edit.AfterLines[0] != "    /** @throws NetworkException */" {
		t.Errorf("after = %q", edit.AfterLines)
	}
}

// TestJSONMax проверяет обрезку вывода без изменения Bag
func TestJSONMax(t *testing.T) {
	fs, bag := undeclaredFixture(t, "B.php")
	bag.Add(bag.Items()[0])

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 1})
	if out.Count != 1 || out.Dropped != 1 {
		t.Fatalf("count=%d dropped=%d", out.Count, out.Dropped)
	}
	if bag.Len() != 2 {
		t.Fatalf("bag must stay intact")
	}
	if out.Diagnostics[0].Fixes != nil || out.Diagnostics[0].Notes != nil {
		t.Fatalf("fixes and notes are opt-in")
	}
	if out.Diagnostics[0].Location.StartLine != 0 {
		t.Fatalf("positions are opt-in")
	}
}

func TestSarif(t *testing.T) {
	fs, bag := undeclaredFixture(t, "B.php")
	var buf bytes.Buffer
	if err := Sarif(&buf, bag, fs, SarifRunMeta{ToolName: "docthrows", ToolVersion: "test"}); err != nil {
		t.Fatalf("Sarif: %v", err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("invalid SARIF: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("log = %+v", log)
	}
	run := log.Runs[0]
	if len(run.Results) != 1 || run.Results[0].RuleID != "SEM3003" || run.Results[0].Level != "error" {
		t.Fatalf("results = %+v", run.Results)
	}
	if len(run.Tool.Driver.Rules) != 1 {
		t.Fatalf("rules = %+v", run.Tool.Driver.Rules)
	}
	region := run.Results[0].Locations[0].PhysicalLocation.Region
	if region == nil || region.StartLine != 3 || region.StartColumn != 17 {
		t.Fatalf("region = %+v", region)
	}
}

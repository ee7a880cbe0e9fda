package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltersScopes(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopeDriver, true},
		{LevelPhase, ScopePass, false},
		{LevelPass, ScopePass, true},
		{LevelPass, ScopeEntity, false},
		{LevelDebug, ScopeEntity, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Errorf("%s.ShouldEmit(%s) = %v", tc.level, tc.scope, got)
		}
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPass, FormatText)
	span := Begin(tr, ScopePass, "validate", 0)
	Begin(tr, ScopeEntity, `\A::op`, span.ID()).End("")
	span.WithExtra("functions", "3").WithExtra("aborted", "0").End("done")

	out := buf.String()
	if strings.Contains(out, `\A::op`) {
		t.Fatalf("entity scope leaked at pass level:\n%s", out)
	}
	if !strings.Contains(out, "→ validate") || !strings.Contains(out, "← validate (done) {aborted=0, functions=3}") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeEntity, `\A::op`, "aborted: depth", 0)

	var ev map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &ev); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if ev["kind"] != "point" || ev["scope"] != "entity" || ev["detail"] != "aborted: depth" {
		t.Fatalf("event = %v", ev)
	}
}

func TestRingTracerWrapsAndDumps(t *testing.T) {
	r := NewRingTracer(2, LevelError)
	for _, name := range []string{"a", "b", "c"} {
		r.Emit(&Event{Kind: KindPoint, Scope: ScopeEntity, Name: name})
	}
	snap := r.Snapshot()
	if len(snap) != 2 || snap[0].Name != "b" || snap[1].Name != "c" {
		t.Fatalf("snapshot = %+v", snap)
	}
	var buf bytes.Buffer
	if err := r.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 2 {
		t.Fatalf("dump:\n%s", buf.String())
	}
}

func TestNewAndContext(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("LevelOff must yield Nop")
	}
	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelDebug, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	ring, ok := Ring(tr)
	if !ok {
		t.Fatalf("ModeBoth must contain a ring")
	}
	ctx := WithTracer(context.Background(), tr)
	span := Begin(FromContext(ctx), ScopeDriver, "check", 0)
	ctx = WithSpan(ctx, span)
	if CurrentSpan(ctx) != span.ID() {
		t.Fatalf("span not propagated")
	}
	span.End("")
	if len(ring.Snapshot()) != 2 || buf.Len() == 0 {
		t.Fatalf("fan-out failed")
	}
	if FromContext(context.Background()) != Nop {
		t.Fatalf("missing tracer must be Nop")
	}
}

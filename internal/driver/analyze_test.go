package driver

import (
	"context"
	"errors"
	"testing"

	"docthrows/internal/diag"
	"docthrows/internal/observ"
	"docthrows/internal/snapshot"
	"docthrows/internal/source"
	"docthrows/internal/testkit"
	"docthrows/internal/trace"
)

func fixtureResult(f *testkit.Fixture) *snapshot.Result {
	return &snapshot.Result{
		Path:        "fixture",
		Types:       f.Types,
		Index:       f.Index,
		Files:       f.Files,
		Diagnostics: diag.NewBag(0),
	}
}

func TestAnalyzeReportsWithSuggestion(t *testing.T) {
	f := testkit.New(t).Prelude()
	f.Class(`\App\NetworkException`, testkit.Extends(`\RuntimeException`))
	b := f.Class(`\App\B`)
	f.Method(b, "run", testkit.Throws("NetworkError"))
	f.Method(b, "stop", testkit.Throws(`\Exception`))

	timer := observ.NewTimer()
	res, err := Analyze(context.Background(), fixtureResult(f), Options{Jobs: 4, Suggest: true, Timer: timer})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.SemaUndeclaredThrowsType {
		t.Fatalf("diagnostics = %+v", items)
	}
	if items[0].Suggestion != `\App\NetworkException` {
		t.Fatalf("suggestion = %q", items[0].Suggestion)
	}
	if res.Stats.Entities != 2 || res.Stats.Errors != 1 || res.Stats.ByCode[diag.SemaUndeclaredThrowsType] != 1 {
		t.Fatalf("stats = %+v", res.Stats)
	}
	if !f.Index.Frozen() {
		t.Fatalf("index must be frozen by Analyze")
	}
	if got := len(timer.Report().Phases); got != 3 {
		t.Fatalf("phases = %d, want 3", got)
	}
}

func TestAnalyzeWithoutSuggestions(t *testing.T) {
	f := testkit.New(t).Prelude()
	f.Class(`\App\NetworkException`, testkit.Extends(`\RuntimeException`))
	f.Func(`\App`, "run", testkit.Throws("NetworkError"))

	res, err := Analyze(context.Background(), fixtureResult(f), Options{})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if items := res.Bag.Items(); len(items) != 1 || items[0].Suggestion != "" {
		t.Fatalf("diagnostics = %+v", items)
	}
}

func TestAnalyzeInheritsAcrossWorkers(t *testing.T) {
	f := testkit.New(t).Prelude()
	f.Class(`\App\IOFailure`, testkit.Extends(`\Exception`))
	iface := f.Interface(`\App\I`)
	f.Method(iface, "op", testkit.Throws("IOFailure"))
	var children []string
	for _, name := range []string{`\App\A`, `\App\B`, `\App\C`, `\App\D`} {
		c := f.Class(name, testkit.Implements(`\App\I`))
		f.Method(c, "op")
		children = append(children, name)
	}

	res, err := Analyze(context.Background(), fixtureResult(f), Options{Jobs: 3, InheritThrows: true})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Stats.Inherited != len(children) {
		t.Fatalf("inherited = %d, want %d", res.Stats.Inherited, len(children))
	}
	want := f.Types.Class(`\App\IOFailure`)
	for _, name := range children {
		id, ok := f.Index.FindMethod(name, "op")
		if !ok {
			t.Fatalf("%s::op missing", name)
		}
		if got := f.Index.Function(id).Inherited(); !got.Contains(want) || got.Len() != 1 {
			t.Fatalf("%s::op inherited %s", name, got.Format(f.Types))
		}
	}
}

func TestAnalyzeCountsInheritedRegardlessOfOrder(t *testing.T) {
	f := testkit.New(t).Prelude()
	f.Class(`\App\IOFailure`, testkit.Extends(`\Exception`))
	iface := f.Interface(`\App\I`)
	f.Method(iface, "op", testkit.Throws("IOFailure"))
	mid := f.Class(`\App\Mid`, testkit.Implements(`\App\I`))
	leaf := f.Class(`\App\Leaf`, testkit.Extends(`\App\Mid`))
	// the leaf comes first, so it resolves Mid::op before Mid's own turn
	leafOp := f.Method(leaf, "op")
	midOp := f.Method(mid, "op")

	res, err := Analyze(context.Background(), fixtureResult(f), Options{Jobs: 1, InheritThrows: true})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Stats.Inherited != 2 {
		t.Fatalf("inherited = %d, want 2 (leaf %s, mid %s)", res.Stats.Inherited,
			leafOp.Inherited().Format(f.Types), midOp.Inherited().Format(f.Types))
	}
}

func TestAnalyzeMergesLoaderDiagnosticsAndCaps(t *testing.T) {
	f := testkit.New(t).Prelude()
	f.Func(`\App`, "a", testkit.Throws("Missing1"))
	f.Func(`\App`, "b", testkit.Throws("Missing2"))
	snap := fixtureResult(f)
	diag.ReportError(diag.BagReporter{Bag: snap.Diagnostics}, diag.SnapDuplicateClass, source.Span{}, "dup").Emit()

	res, err := Analyze(context.Background(), snap, Options{MaxDiagnostics: 2})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Bag.Len() != 2 || res.Stats.Dropped != 1 {
		t.Fatalf("len=%d dropped=%d", res.Bag.Len(), res.Stats.Dropped)
	}
	if res.Stats.ByCode[diag.SnapDuplicateClass] != 1 {
		t.Fatalf("loader diagnostic lost: %v", res.Stats.ByCode)
	}
}

func TestAnalyzeAbortsCyclicEntitySilently(t *testing.T) {
	f := testkit.New(t).Prelude()
	f.Class(`\App\X`, testkit.Extends(`\App\Y`))
	f.Class(`\App\Y`, testkit.Extends(`\App\X`))
	f.Func(`\App`, "loop", testkit.Throws("X"))
	f.Func(`\App`, "fine", testkit.Throws(`\Exception`))

	ring := trace.NewRingTracer(64, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	res, err := Analyze(ctx, fixtureResult(f), Options{MaxDepth: 8})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Stats.Aborted != 1 || res.Bag.Len() != 0 {
		t.Fatalf("stats=%+v diagnostics=%+v", res.Stats, res.Bag.Items())
	}
	var points int
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindPoint && ev.Name == `\App\loop` {
			points++
		}
	}
	if points != 1 {
		t.Fatalf("expected one debug point for the aborted entity, got %d", points)
	}
}

func TestAnalyzeEmitsProgress(t *testing.T) {
	f := testkit.New(t).Prelude()
	for _, name := range []string{"a", "b", "c"} {
		f.Func(`\App`, name, testkit.Throws(`\Exception`))
	}
	events := make(chan Event, 16)
	if _, err := Analyze(context.Background(), fixtureResult(f), Options{Jobs: 2, Events: events}); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var got []Event
	for ev := range events {
		got = append(got, ev)
	}
	if len(got) != 5 {
		t.Fatalf("events = %d, want 5", len(got))
	}
	if got[0].Kind != EventBegin || got[0].Total != 3 {
		t.Fatalf("first event = %+v", got[0])
	}
	if last := got[len(got)-1]; last.Kind != EventEnd || last.Done != 3 {
		t.Fatalf("last event = %+v", last)
	}
}

func TestAnalyzeHonoursCancellation(t *testing.T) {
	f := testkit.New(t).Prelude()
	f.Func(`\App`, "a", testkit.Throws(`\Exception`))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Analyze(ctx, fixtureResult(f), Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

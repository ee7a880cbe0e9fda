package diag

import (
	"strings"

	"docthrows/internal/source"
)

type dedupKey struct {
	code Code
	span source.Span
	msg  string
	args string
}

// DedupReporter forwards the first report per (code, primary span, message,
// args) and counts the rest. Not safe for concurrent use.
type DedupReporter struct {
	next       Reporter
	seen       map[dedupKey]struct{}
	suppressed int
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[dedupKey]struct{}),
	}
}

func (r *DedupReporter) Report(d Diagnostic) {
	if r == nil {
		return
	}
	key := dedupKey{code: d.Code, span: d.Primary, msg: d.Message, args: strings.Join(d.Args, "\x00")}
	if _, ok := r.seen[key]; ok {
		r.suppressed++
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(d)
	}
}

// Suppressed returns how many duplicates were dropped.
func (r *DedupReporter) Suppressed() int {
	if r == nil {
		return 0
	}
	return r.suppressed
}

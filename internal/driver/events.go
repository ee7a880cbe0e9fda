package driver

import (
	"context"
	"sync/atomic"

	"docthrows/internal/codebase"
	"docthrows/internal/sema"
	"docthrows/internal/source"
)

// EventKind classifies progress events.
type EventKind uint8

const (
	EventBegin  EventKind = iota + 1 // Total is set
	EventEntity                      // one entity finished
	EventEnd
)

// Event reports analysis progress. Events are sent from worker goroutines.
type Event struct {
	Kind        EventKind
	Entity      string // FQSEN of the function
	File        string // declaring source file; empty when unknown
	Done        int
	Total       int
	Aborted     bool
	Diagnostics int
}

type progress struct {
	ctx    context.Context
	events chan<- Event
	files  *source.FileSet
	total  int
	done   atomic.Int64
}

func newProgress(ctx context.Context, events chan<- Event, files *source.FileSet, total int) *progress {
	return &progress{ctx: ctx, events: events, files: files, total: total}
}

func (p *progress) send(ev Event) {
	if p.events == nil {
		return
	}
	select {
	case p.events <- ev:
	case <-p.ctx.Done():
	}
}

func (p *progress) begin() { p.send(Event{Kind: EventBegin, Total: p.total}) }

func (p *progress) end() {
	p.send(Event{Kind: EventEnd, Done: int(p.done.Load()), Total: p.total})
}

func (p *progress) entity(fn *codebase.Function, name string, out sema.Outcome, diags int) {
	done := int(p.done.Add(1))
	if p.events == nil {
		return
	}
	var file string
	if p.files != nil {
		if f := p.files.Get(fn.Span.File); f != nil {
			file = f.Path
		}
	}
	p.send(Event{
		Kind:        EventEntity,
		Entity:      name,
		File:        file,
		Done:        done,
		Total:       p.total,
		Aborted:     out.Aborted,
		Diagnostics: diags,
	})
}

// FileTotal counts the functions declared in one source file.
type FileTotal struct {
	Path     string
	Entities int
}

// Files lists the declaring files of all functions in first-seen order.
// Functions without a known file are not counted.
func Files(fs *source.FileSet, ix *codebase.Index) []FileTotal {
	index := make(map[string]int)
	var out []FileTotal
	for _, fn := range ix.Functions() {
		f := fs.Get(fn.Span.File)
		if f == nil {
			continue
		}
		i, ok := index[f.Path]
		if !ok {
			i = len(out)
			index[f.Path] = i
			out = append(out, FileTotal{Path: f.Path})
		}
		out[i].Entities++
	}
	return out
}

// Package observ measures how long each analysis phase takes.
package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Phase records the duration and metadata of one analysis phase.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
	Items int // entities processed, when meaningful
}

// Timer tracks phases in the order they were begun. Safe for concurrent use.
type Timer struct {
	mu     sync.Mutex
	phases []Phase
}

// NewTimer creates an empty Timer.
func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 8)} }

// Begin starts a phase and returns its index.
func (t *Timer) Begin(name string) int {
	if t == nil {
		return -1
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End finishes the phase at idx.
func (t *Timer) End(idx int, note string) {
	t.EndItems(idx, note, 0)
}

// EndItems finishes the phase at idx and records how many items it handled.
func (t *Timer) EndItems(idx int, note string, items int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
	p.Items = items
}

// Summary renders all phases for --timings.
func (t *Timer) Summary() string {
	report := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&sb, "  %-20s %9.2f ms", p.Name, p.DurationMS)
		if p.Items > 0 {
			fmt.Fprintf(&sb, "  %d items", p.Items)
		}
		if p.Note != "" {
			sb.WriteString("  // " + p.Note)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "  %-20s %9.2f ms\n", "total", report.TotalMS)
	return sb.String()
}

// PhaseReport is the serialisable form of a phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Items      int     `json:"items,omitempty"`
	Note       string  `json:"note,omitempty"`
}

// Report aggregates all phases.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report returns the phases and the total duration in milliseconds.
func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.phases) == 0 {
		return Report{}
	}
	report := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, phase := range t.phases {
		total += phase.Dur
		report.Phases[i] = PhaseReport{
			Name:       phase.Name,
			DurationMS: durationToMillis(phase.Dur),
			Items:      phase.Items,
			Note:       phase.Note,
		}
	}
	report.TotalMS = durationToMillis(total)
	return report
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the last N events in memory.
type RingTracer struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
	head     int  // next write position
	full     bool // has wrapped around
	level    Level
}

// NewRingTracer creates a RingTracer; capacity <= 0 selects 4096.
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{
		events:   make([]Event, capacity),
		capacity: capacity,
		level:    level,
	}
}

// Emit stores a copy of ev. The ring records every scope so that a dump
// after a failure shows the last functions touched.
func (t *RingTracer) Emit(ev *Event) {
	if t.level == LevelOff {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	stored := *ev
	stored.Seq = NextSeq()
	t.events[t.head] = stored
	t.head = (t.head + 1) % t.capacity
	if t.head == 0 {
		t.full = true
	}
}

// Snapshot returns the stored events in chronological order.
func (t *RingTracer) Snapshot() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.full {
		return append([]Event(nil), t.events[:t.head]...)
	}
	out := make([]Event, 0, t.capacity)
	out = append(out, t.events[t.head:]...)
	return append(out, t.events[:t.head]...)
}

// Dump writes all stored events to w.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error { return nil }

func (t *RingTracer) Close() error { return nil }

func (t *RingTracer) Level() Level { return t.level }

func (t *RingTracer) Enabled() bool { return t.level > LevelOff }

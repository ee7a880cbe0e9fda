package trace

import "errors"

// MultiTracer fans out events to several tracers.
type MultiTracer struct {
	tracers []Tracer
	level   Level
}

// NewMultiTracer emits to every tracer in tracers.
func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	return &MultiTracer{tracers: tracers, level: level}
}

// Emit passes a copy of ev to each tracer, since tracers stamp Seq.
func (t *MultiTracer) Emit(ev *Event) {
	for _, tr := range t.tracers {
		cp := *ev
		tr.Emit(&cp)
	}
}

func (t *MultiTracer) Flush() error {
	var errs []error
	for _, tr := range t.tracers {
		errs = append(errs, tr.Flush())
	}
	return errors.Join(errs...)
}

func (t *MultiTracer) Close() error {
	var errs []error
	for _, tr := range t.tracers {
		errs = append(errs, tr.Close())
	}
	return errors.Join(errs...)
}

func (t *MultiTracer) Level() Level { return t.level }

func (t *MultiTracer) Enabled() bool { return t.level > LevelOff }

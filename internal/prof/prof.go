// Package prof wraps Go runtime profilers for the analysis commands.
package prof

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	rtrace "runtime/trace"
)

// Options name the output files; empty paths disable the profiler.
type Options struct {
	CPU   string
	Heap  string
	Trace string
}

// Enabled reports whether any profiler is requested.
func (o Options) Enabled() bool { return o.CPU != "" || o.Heap != "" || o.Trace != "" }

// Session is a set of running profilers. Stop is idempotent.
type Session struct {
	opts      Options
	cpuFile   *os.File
	traceFile *os.File
	stopped   bool
}

// Start enables the profilers named by opts. On error everything already
// started is stopped again and no heap profile is written.
func Start(opts Options) (*Session, error) {
	s := &Session{opts: opts}
	if opts.CPU != "" {
		f, err := os.Create(opts.CPU)
		if err != nil {
			return nil, fmt.Errorf("cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("cpu profile: %w", err)
		}
		s.cpuFile = f
	}
	if opts.Trace != "" {
		f, err := os.Create(opts.Trace)
		if err != nil {
			s.abort()
			return nil, fmt.Errorf("runtime trace: %w", err)
		}
		if err := rtrace.Start(f); err != nil {
			_ = f.Close()
			s.abort()
			return nil, fmt.Errorf("runtime trace: %w", err)
		}
		s.traceFile = f
	}
	return s, nil
}

func (s *Session) abort() {
	s.opts.Heap = ""
	_ = s.Stop()
}

// Stop ends the runtime trace and CPU profile, then writes the heap
// profile. A nil session is a no-op.
func (s *Session) Stop() error {
	if s == nil || s.stopped {
		return nil
	}
	s.stopped = true
	var errs []error
	if s.traceFile != nil {
		rtrace.Stop()
		errs = append(errs, s.traceFile.Close())
		s.traceFile = nil
	}
	if s.cpuFile != nil {
		pprof.StopCPUProfile()
		errs = append(errs, s.cpuFile.Close())
		s.cpuFile = nil
	}
	if s.opts.Heap != "" {
		errs = append(errs, writeHeap(s.opts.Heap))
	}
	return errors.Join(errs...)
}

func writeHeap(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("heap profile: %w", err)
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("heap profile: %w", err)
	}
	return f.Close()
}

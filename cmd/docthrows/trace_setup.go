package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docthrows/internal/trace"
)

// setupTracing inspects trace-related flags and attaches a tracer to the
// command context. closeTracing releases it.
func setupTracing(cmd *cobra.Command, _ []string) error {
	root := cmd.Root()
	flags := root.PersistentFlags()

	traceOutput, err := flags.GetString("trace")
	if err != nil {
		return fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := flags.GetString("trace-mode")
	if err != nil {
		return fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	ringSize, err := flags.GetInt("trace-ring-size")
	if err != nil {
		return fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return fmt.Errorf("invalid trace level: %w", err)
	}
	// --trace без уровня включает phase
	if level == trace.LevelOff && traceOutput != "" {
		level = trace.LevelPhase
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(ctx, trace.Nop))
		return nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return fmt.Errorf("invalid trace mode: %w", err)
	}
	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: traceOutput,
		RingSize:   ringSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}

	ctx = trace.WithTracer(ctx, tracer)
	cmd.SetContext(ctx)
	root.SetContext(ctx)
	return nil
}

// closeTracing flushes the tracer attached by setupTracing. On failure the
// ring buffer, if any, is dumped to stderr.
func closeTracing(root *cobra.Command, failed bool) {
	ctx := root.Context()
	if ctx == nil {
		return
	}
	tracer := trace.FromContext(ctx)
	if tracer == nil || tracer == trace.Nop {
		return
	}
	if ring, ok := trace.Ring(tracer); ok && failed {
		fmt.Fprintln(os.Stderr, "trace: last events before failure:")
		if err := ring.Dump(os.Stderr, trace.FormatText); err != nil {
			fmt.Fprintf(os.Stderr, "trace: dump error: %v\n", err)
		}
	}
	if err := tracer.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "trace: flush error: %v\n", err)
	}
	if err := tracer.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "trace: close error: %v\n", err)
	}
}

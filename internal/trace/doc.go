// Package trace records what the analyzer is doing: driver phases, passes
// over the codebase and, at debug level, individual functions.
//
// # Usage
//
//	docthrows check --trace=- --trace-level=pass snapshot.toml
//
// Tracers:
//
//   - Nop: disabled tracing
//   - StreamTracer: writes every event immediately (file or stderr)
//   - RingTracer: keeps the last events in memory, dumped on failure
//   - MultiTracer: fans out to several tracers
//
// Scopes, from coarse to fine: ScopeDriver (CLI command), ScopePass
// (load, freeze, validate, report) and ScopeEntity (one function).
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "validate", 0)
//	defer span.End("")
package trace

// Package diag defines the diagnostic model shared by the snapshot loader,
// the throws checker and the CLI.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity: tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code: compact numeric identifier (see codes.go) with a stable string form.
//   - Message: human oriented text; keep it short and actionable.
//   - Primary: the source.Span of the offending declaration or type.
//   - Args: ordered message arguments (entity name, type name), so that
//     consumers can match findings without parsing Message.
//   - Suggestion: optional "did you mean" class identity.
//   - Notes, Fixes: secondary spans and structured text edits.
//
// # Emitting diagnostics
//
// Producers depend on Reporter only. ReportError/ReportWarning/ReportInfo
// return a ReportBuilder; chain WithArgs / WithSuggestion / WithFixSuggestion
// and call Emit. BagReporter collects into a Bag, which supports limits,
// sorting, filtering and deduplication. Bag is not safe for concurrent use;
// the driver gives each entity its own bag and merges them afterwards.
//
// Package diag performs no formatting or IO: rendering lives in
// internal/diagfmt, applying fixes in internal/fix.
package diag

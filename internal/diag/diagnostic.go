package diag

import (
	"docthrows/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// FixApplicability describes how confident a producer is in a fix.
type FixApplicability uint8

const (
	FixApplicabilityAlwaysSafe FixApplicability = iota
	FixApplicabilitySafeWithHeuristics
	FixApplicabilityManualReview
)

func (a FixApplicability) String() string {
	switch a {
	case FixApplicabilityAlwaysSafe:
		return "always-safe"
	case FixApplicabilitySafeWithHeuristics:
		return "safe-with-heuristics"
	case FixApplicabilityManualReview:
		return "manual-review"
	}
	return "unknown"
}

// TextEdit replaces Span with NewText. OldText, when set, must match the
// current content for the edit to apply.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

type Fix struct {
	ID            string
	Title         string
	Applicability FixApplicability
	IsPreferred   bool
	Edits         []TextEdit
}

// Diagnostic is one finding. Args carries the ordered message arguments
// (entity and type names) and Suggestion the optional "did you mean" identity.
type Diagnostic struct {
	Severity   Severity
	Code       Code
	Message    string
	Primary    source.Span
	Args       []string
	Suggestion string
	Notes      []Note
	Fixes      []Fix
}

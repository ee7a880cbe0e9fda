package fix

import (
	"docthrows/internal/diag"
	"docthrows/internal/source"
)

// Option mutates fix during construction.
type Option func(*diag.Fix)

// WithApplicability overrides applicability metadata.
func WithApplicability(app diag.FixApplicability) Option {
	return func(f *diag.Fix) {
		f.Applicability = app
	}
}

// Preferred marks fix as preferred suggestion.
func Preferred() Option {
	return func(f *diag.Fix) {
		f.IsPreferred = true
	}
}

// WithID sets stable identifier for fix.
func WithID(id string) Option {
	return func(f *diag.Fix) {
		f.ID = id
	}
}

func applyOptions(f diag.Fix, opts []Option) diag.Fix {
	for _, opt := range opts {
		if opt != nil {
			opt(&f)
		}
	}
	return f
}

// ReplaceSpan replaces text covered by span with newText. expect guards the
// replaced text; empty disables the guard.
func ReplaceSpan(title string, span source.Span, newText, expect string, opts ...Option) diag.Fix {
	fix := diag.Fix{
		Title:         title,
		Applicability: diag.FixApplicabilityAlwaysSafe,
		Edits: []diag.TextEdit{{
			Span:    span,
			NewText: newText,
			OldText: expect,
		}},
	}
	return applyOptions(fix, opts)
}

package sema

import (
	"fmt"
	"strings"

	"docthrows/internal/codebase"
	"docthrows/internal/diag"
	"docthrows/internal/fix"
	"docthrows/internal/source"
	"docthrows/internal/types"
)

// throwsReporter buffers the diagnostics of one function.
type throwsReporter struct {
	c      *ThrowsChecker
	fn     *codebase.Function
	name   string
	buffer []diag.Diagnostic
}

func newThrowsReporter(c *ThrowsChecker, fn *codebase.Function) *throwsReporter {
	return &throwsReporter{c: c, fn: fn, name: c.ix.FQSEN(fn)}
}

func (r *throwsReporter) Report(d diag.Diagnostic) {
	r.buffer = append(r.buffer, d)
}

func (r *throwsReporter) flush(to diag.Reporter) {
	if to == nil {
		return
	}
	for _, d := range r.buffer {
		to.Report(d)
	}
	r.buffer = nil
}

func (r *throwsReporter) span(decl codebase.ThrowsDecl) source.Span {
	if !decl.Span.Empty() {
		return decl.Span
	}
	return r.fn.Span
}

func (r *throwsReporter) nonObject(decl codebase.ThrowsDecl) {
	msg := fmt.Sprintf("%s declares @throws %s, which is not an object type", r.name, decl.Text)
	diag.ReportError(r, diag.SemaInvalidThrowsNonObject, r.span(decl), msg).
		WithArgs(r.name, decl.Text).
		Emit()
}

func (r *throwsReporter) templateStatic(decl codebase.ThrowsDecl) {
	msg := fmt.Sprintf("static method %s throws template type %s that it does not bind", r.name, decl.Text)
	diag.ReportError(r, diag.SemaTemplateTypeStaticMethod, r.span(decl), msg).
		WithArgs(r.name).
		WithNote(r.fn.Span, "declare the template on the method with @template "+decl.Text).
		Emit()
}

func (r *throwsReporter) undeclared(decl codebase.ThrowsDecl, suggestion types.TypeID) {
	msg := fmt.Sprintf("%s declares @throws %s, but no such class exists", r.name, decl.Text)
	b := diag.ReportError(r, diag.SemaUndeclaredThrowsType, r.span(decl), msg).
		WithArgs(r.name, decl.Text)
	r.withSuggestion(b, decl, suggestion).Emit()
}

func (r *throwsReporter) isTrait(decl codebase.ThrowsDecl) {
	msg := fmt.Sprintf("%s declares @throws %s, which is a trait", r.name, decl.Text)
	diag.ReportError(r, diag.SemaInvalidThrowsIsTrait, r.span(decl), msg).
		WithArgs(r.name, decl.Text).
		Emit()
}

func (r *throwsReporter) isInterface(decl codebase.ThrowsDecl) {
	msg := fmt.Sprintf("%s declares @throws %s, which is an interface", r.name, decl.Text)
	diag.ReportInfo(r, diag.SemaInvalidThrowsIsInterface, r.span(decl), msg).
		WithArgs(r.name, decl.Text).
		Emit()
}

func (r *throwsReporter) nonThrowable(decl codebase.ThrowsDecl, suggestion types.TypeID) {
	marker := r.c.in.String(r.c.marker)
	msg := fmt.Sprintf("%s declares @throws %s, which does not extend %s", r.name, decl.Text, marker)
	b := diag.ReportWarning(r, diag.SemaInvalidThrowsNonThrowable, r.span(decl), msg).
		WithArgs(r.name, decl.Text)
	r.withSuggestion(b, decl, suggestion).Emit()
}

func (r *throwsReporter) withSuggestion(b *diag.ReportBuilder, decl codebase.ThrowsDecl, suggestion types.TypeID) *diag.ReportBuilder {
	if !suggestion.IsValid() {
		return b
	}
	fqsen := r.c.in.String(suggestion)
	b.WithSuggestion(fqsen)
	if decl.Span.Empty() {
		return b
	}
	text, applicability := replacementText(decl, fqsen, r.c.in)
	id := fmt.Sprintf("throws-suggest-%d-%d", decl.Span.File, decl.Span.Start)
	return b.WithFixSuggestion(fix.ReplaceSpan("replace with "+fqsen, decl.Span, text, decl.Text,
		fix.WithID(id),
		fix.WithApplicability(applicability),
		fix.Preferred(),
	))
}

// replacementText keeps a relative spelling when the suggestion lives in the
// namespace the written name resolved into.
func replacementText(decl codebase.ThrowsDecl, fqsen string, in *types.Interner) (string, diag.FixApplicability) {
	if strings.HasPrefix(decl.Text, `\`) {
		return fqsen, diag.FixApplicabilityAlwaysSafe
	}
	if typ, ok := in.Lookup(decl.Type); ok && typ.Kind == types.KindClass {
		writtenNS, _ := types.SplitFQSEN(typ.Name)
		suggNS, short := types.SplitFQSEN(fqsen)
		if types.FoldName(writtenNS) == types.FoldName(suggNS) && !strings.Contains(decl.Text, `\`) {
			return short, diag.FixApplicabilityAlwaysSafe
		}
	}
	return fqsen, diag.FixApplicabilityManualReview
}

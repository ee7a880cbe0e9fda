package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/safecast"

	"docthrows/internal/codebase"
	"docthrows/internal/diag"
	"docthrows/internal/source"
	"docthrows/internal/types"
)

// Options control how a snapshot is turned into an index.
type Options struct {
	Throwable      string // FQSEN of the throwable marker; empty = \Throwable
	Prelude        bool   // seed PHP built-in exception classes
	Cache          *Cache // optional decoded-document cache
	MaxDiagnostics int    // cap for loader diagnostics; 0 = unlimited
}

// Result is a loaded codebase ready for analysis. Index is not frozen yet.
type Result struct {
	Path        string
	Types       *types.Interner
	Index       *codebase.Index
	Files       *source.FileSet
	Diagnostics *diag.Bag
	FromCache   bool

	// Duplicates counts loader problems reported more than once.
	Duplicates int
}

// Load reads the snapshot at path.
func Load(path string, opts Options) (*Result, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	key := DigestOf(content, format)
	doc, hit, err := opts.Cache.Get(key)
	if err != nil {
		// битый кэш не мешает загрузке
		hit = false
	}
	if !hit {
		doc, err = Decode(content, format)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		// ошибка записи кэша не фатальна
		_ = opts.Cache.Put(key, doc)
	}

	res := Build(path, content, doc, opts)
	res.FromCache = hit
	return res, nil
}

// Build turns a decoded document into an index. content is the raw snapshot
// text; it becomes the first file of the set and anchors loader diagnostics.
func Build(path string, content []byte, doc *Document, opts Options) *Result {
	fs := source.NewFileSetWithBase(filepath.Dir(path))
	snapID := fs.Add(path, content, 0)
	in := types.NewInterner(opts.Throwable)
	bag := diag.NewBag(opts.MaxDiagnostics)
	dedup := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	b := &builder{
		doc:     doc,
		dir:     filepath.Dir(path),
		types:   in,
		index:   codebase.NewIndex(in),
		files:   fs,
		snap:    source.Span{File: snapID},
		report:  dedup,
		fileIDs: make(map[string]source.FileID),
	}
	if opts.Prelude {
		b.prelude()
	}
	for i := range doc.Classes {
		b.class(&doc.Classes[i])
	}
	for i := range doc.Aliases {
		b.alias(&doc.Aliases[i])
	}
	ids := make([]codebase.FunctionID, len(doc.Functions))
	for i := range doc.Functions {
		ids[i] = b.function(&doc.Functions[i])
	}
	for i := range doc.Functions {
		if ids[i].IsValid() && len(doc.Functions[i].Overrides) > 0 {
			b.overrides(ids[i], &doc.Functions[i])
		}
	}
	return &Result{
		Path:        path,
		Types:       in,
		Index:       b.index,
		Files:       fs,
		Diagnostics: bag,
		Duplicates:  dedup.Suppressed(),
	}
}

type builder struct {
	doc     *Document
	dir     string
	types   *types.Interner
	index   *codebase.Index
	files   *source.FileSet
	snap    source.Span
	report  diag.Reporter
	fileIDs map[string]source.FileID
}

func (b *builder) prelude() {
	declared := make(map[string]struct{}, len(b.doc.Classes)+len(b.doc.Aliases))
	for _, c := range b.doc.Classes {
		declared[types.CanonicalFQSEN(c.Name)] = struct{}{}
	}
	for _, a := range b.doc.Aliases {
		declared[types.CanonicalFQSEN(a.Name)] = struct{}{}
	}
	for _, entry := range PreludeEntries() {
		if _, ok := declared[types.CanonicalFQSEN(entry.Name)]; ok {
			continue
		}
		b.class(&entry)
	}
}

// file returns the FileID for a path named by an entry; unreadable files are
// replaced by empty virtual ones and reported once.
func (b *builder) file(name string) (source.FileID, bool) {
	if name == "" {
		return 0, false
	}
	p := name
	if !filepath.IsAbs(p) {
		p = filepath.Join(b.dir, p)
	}
	if id, ok := b.fileIDs[p]; ok {
		return id, true
	}
	id, err := b.files.LoadOrVirtual(p)
	if err != nil {
		diag.ReportWarning(b.report, diag.IOSourceMissing, source.Span{File: id},
			fmt.Sprintf("source file %s cannot be read; positions are unavailable", name)).
			WithArgs(name).
			Emit()
	}
	b.fileIDs[p] = id
	return id, true
}

// lineSpan anchors a declaration at the start of line.
func (b *builder) lineSpan(fileName string, line int) source.Span {
	id, ok := b.file(fileName)
	if !ok {
		return b.snap
	}
	ln, err := safecast.Conv[uint32](line)
	if err != nil || ln == 0 {
		return source.Span{File: id}
	}
	sp, _ := b.files.SpanAt(id, source.LineCol{Line: ln, Col: 1}, 0)
	return sp
}

func (b *builder) errorf(code diag.Code, subject, format string, args ...any) {
	diag.ReportError(b.report, code, b.snap, fmt.Sprintf(format, args...)).
		WithArgs(subject).
		Emit()
}

func parseContext(namespace string, templates []string, imports ...map[string]string) types.ParseContext {
	ctx := types.ParseContext{Namespace: namespace, Templates: templates}
	for _, m := range imports {
		for alias, target := range m {
			if ctx.Uses == nil {
				ctx.Uses = make(map[string]string, len(m))
			}
			ctx.Uses[types.FoldName(strings.Trim(alias, `\`))] = types.NormalizeFQSEN(target)
		}
	}
	return ctx
}

func (b *builder) class(e *ClassEntry) {
	name := strings.TrimSpace(e.Name)
	if name == "" || strings.Trim(name, `\`) == "" {
		b.errorf(diag.SnapBadType, e.Name, "class entry without a name")
		return
	}
	name = types.NormalizeFQSEN(name)
	kind := codebase.ClassKindClass
	if e.Kind != "" {
		k, ok := codebase.ParseClassKind(e.Kind)
		if !ok {
			b.errorf(diag.SnapUnknownKind, name, "class %s has unknown kind %q", name, e.Kind)
			return
		}
		kind = k
	}
	ns, _ := types.SplitFQSEN(name)
	ctx := parseContext(ns, nil, e.Imports)

	c := codebase.Class{
		Name:      name,
		Kind:      kind,
		Templates: append([]string(nil), e.Templates...),
		Span:      b.lineSpan(e.File, e.Line),
	}
	if strings.TrimSpace(e.Extends) != "" {
		c.Parent = b.types.Class(ctx.Resolve(strings.TrimSpace(e.Extends)))
	}
	for _, iface := range e.Implements {
		c.Interfaces = append(c.Interfaces, b.types.Class(ctx.Resolve(strings.TrimSpace(iface))))
	}
	for _, tr := range e.Traits {
		c.Traits = append(c.Traits, b.types.Class(ctx.Resolve(strings.TrimSpace(tr))))
	}
	if _, err := b.index.AddClass(c); err != nil {
		code := diag.SnapDuplicateClass
		if errors.Is(err, codebase.ErrAliasConflict) {
			code = diag.SnapBadAlias
		}
		b.errorf(code, name, "class %s skipped: %v", name, err)
	}
}

func (b *builder) alias(e *AliasEntry) {
	if strings.Trim(e.Name, `\ `) == "" || strings.Trim(e.Target, `\ `) == "" {
		b.errorf(diag.SnapBadAlias, e.Name, "alias %q -> %q is incomplete", e.Name, e.Target)
		return
	}
	alias := b.types.Class(types.NormalizeFQSEN(e.Name))
	target := b.types.Class(types.NormalizeFQSEN(e.Target))
	if alias == target {
		b.errorf(diag.SnapBadAlias, e.Name, "alias %s points to itself", e.Name)
		return
	}
	if err := b.index.AddAlias(alias, target); err != nil {
		b.errorf(diag.SnapBadAlias, e.Name, "alias %s skipped: %v", e.Name, err)
	}
}

func (b *builder) function(e *FunctionEntry) codebase.FunctionID {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		b.errorf(diag.SnapBadType, e.Name, "function entry without a name")
		return codebase.NoFunctionID
	}
	fn := &codebase.Function{
		Name:      name,
		Namespace: e.Namespace,
		Static:    e.Static,
		Templates: append([]string(nil), e.Templates...),
		Span:      b.lineSpan(e.File, e.Line),
	}
	if e.Synthesized {
		fn.Flags |= codebase.FuncFlagSynthesized
	}
	if e.Abstract {
		fn.Flags |= codebase.FuncFlagAbstract
	}

	ctx := parseContext(e.Namespace, fn.Templates, e.Imports)
	if strings.TrimSpace(e.Class) != "" {
		className := types.NormalizeFQSEN(e.Class)
		c, ok := b.findClass(className)
		if !ok {
			b.errorf(diag.SnapUnknownClass, className, "method %s::%s skipped: class is not declared", className, name)
			return codebase.NoFunctionID
		}
		fn.Class = c.ID
		ns, _ := types.SplitFQSEN(c.Name)
		ctx = parseContext(ns, append(append([]string(nil), fn.Templates...), c.Templates...),
			b.classImports(c.Name), e.Imports)
	}

	for _, t := range e.Throws {
		b.throws(fn, e, ctx, t)
	}

	if _, err := b.index.AddFunction(fn); err != nil {
		b.errorf(diag.SnapDuplicateFunc, name, "function %s skipped: %v", name, err)
		return codebase.NoFunctionID
	}
	return fn.ID
}

func (b *builder) findClass(fqsen string) (*codebase.Class, bool) {
	t, ok := b.types.FindClass(fqsen)
	if !ok {
		return nil, false
	}
	return b.index.ClassByType(t)
}

// classImports returns the imports written on the class entry; methods see
// the use statements of their file.
func (b *builder) classImports(name string) map[string]string {
	want := types.CanonicalFQSEN(name)
	for i := range b.doc.Classes {
		if types.CanonicalFQSEN(b.doc.Classes[i].Name) == want {
			return b.doc.Classes[i].Imports
		}
	}
	return nil
}

func (b *builder) throws(fn *codebase.Function, e *FunctionEntry, ctx types.ParseContext, t ThrowsEntry) {
	parts, err := b.types.ParseExpr(t.Type, ctx)
	if err != nil {
		b.errorf(diag.SnapBadType, t.Type, "@throws of %s ignored: %v", e.Name, err)
		return
	}
	fileID, hasFile := b.file(e.File)
	for _, p := range parts {
		decl := codebase.ThrowsDecl{Type: p.Type, Text: p.Text}
		if hasFile {
			decl.Span = source.Span{File: fileID}
			if t.Line > 0 && t.Col > 0 {
				decl.Span = b.typeSpan(fileID, t, p)
			}
		}
		fn.Throws = append(fn.Throws, decl)
	}
}

// typeSpan locates one union member inside the written expression.
func (b *builder) typeSpan(id source.FileID, t ThrowsEntry, p types.Parsed) source.Span {
	line, err1 := safecast.Conv[uint32](t.Line)
	col, err2 := safecast.Conv[uint32](t.Col + p.Offset)
	width, err3 := safecast.Conv[uint32](len(p.Text))
	if err1 != nil || err2 != nil || err3 != nil {
		return source.Span{File: id}
	}
	nullable := p.Offset < len(t.Type) && t.Type[p.Offset] == '?'
	if nullable {
		// null из '?T' занимает только сам '?'
		width = 1
	}
	sp, ok := b.files.SpanAt(id, source.LineCol{Line: line, Col: col}, width)
	if !ok {
		return source.Span{File: id}
	}
	if f := b.files.Get(id); f != nil && !nullable && f.Text(sp) != p.Text {
		// позиция не совпадает с текстом: не даём чинить не то место
		return source.Span{File: id, Start: sp.Start, End: sp.Start}
	}
	return sp
}

func (b *builder) overrides(id codebase.FunctionID, e *FunctionEntry) {
	targets := make([]codebase.FunctionID, 0, len(e.Overrides))
	for _, raw := range e.Overrides {
		target, ok := b.lookupOverride(strings.TrimSpace(raw))
		if !ok {
			b.errorf(diag.SnapBadOverride, raw, "override target %s of %s is not declared", raw, e.Name)
			continue
		}
		if target == id {
			b.errorf(diag.SnapBadOverride, raw, "%s cannot override itself", raw)
			continue
		}
		targets = append(targets, target)
	}
	b.index.SetOverrides(id, targets)
}

func (b *builder) lookupOverride(ref string) (codebase.FunctionID, bool) {
	if class, method, ok := strings.Cut(ref, "::"); ok {
		return b.index.FindMethod(types.NormalizeFQSEN(class), strings.TrimSuffix(method, "()"))
	}
	return b.index.FindFunction(strings.TrimSuffix(ref, "()"))
}

package testkit

import (
	"testing"

	"docthrows/internal/codebase"
	"docthrows/internal/source"
	"docthrows/internal/types"
)

// Fixture builds small codebases for tests.
type Fixture struct {
	t     testing.TB
	Types *types.Interner
	Index *codebase.Index
	Files *source.FileSet
}

// New returns an empty fixture using the default throwable marker.
func New(t testing.TB) *Fixture {
	t.Helper()
	in := types.NewInterner("")
	return &Fixture{t: t, Types: in, Index: codebase.NewIndex(in), Files: source.NewFileSet()}
}

// Prelude adds \Throwable, \Exception, \Error and \RuntimeException.
func (f *Fixture) Prelude() *Fixture {
	f.Interface(`\Throwable`)
	f.Class(`\Exception`, Implements(`\Throwable`))
	f.Class(`\Error`, Implements(`\Throwable`))
	f.Class(`\RuntimeException`, Extends(`\Exception`))
	return f
}

// ClassOpt customises a class declaration.
type ClassOpt func(*codebase.Class, *types.Interner)

func Extends(name string) ClassOpt {
	return func(c *codebase.Class, in *types.Interner) { c.Parent = in.Class(name) }
}

func Implements(names ...string) ClassOpt {
	return func(c *codebase.Class, in *types.Interner) {
		for _, n := range names {
			c.Interfaces = append(c.Interfaces, in.Class(n))
		}
	}
}

func ClassTemplates(names ...string) ClassOpt {
	return func(c *codebase.Class, _ *types.Interner) { c.Templates = append(c.Templates, names...) }
}

func (f *Fixture) add(name string, kind codebase.ClassKind, opts []ClassOpt) codebase.ClassID {
	f.t.Helper()
	c := codebase.Class{Name: name, Kind: kind}
	for _, opt := range opts {
		opt(&c, f.Types)
	}
	id, err := f.Index.AddClass(c)
	if err != nil {
		f.t.Fatalf("class %s: %v", name, err)
	}
	return id
}

func (f *Fixture) Class(name string, opts ...ClassOpt) codebase.ClassID {
	f.t.Helper()
	return f.add(name, codebase.ClassKindClass, opts)
}

// Interface declares an interface; opts usually carry Implements for the
// extended interfaces.
func (f *Fixture) Interface(name string, opts ...ClassOpt) codebase.ClassID {
	f.t.Helper()
	return f.add(name, codebase.ClassKindInterface, opts)
}

func (f *Fixture) Trait(name string) codebase.ClassID {
	f.t.Helper()
	return f.add(name, codebase.ClassKindTrait, nil)
}

// Alias registers class_alias(target, alias).
func (f *Fixture) Alias(alias, target string) {
	f.t.Helper()
	if err := f.Index.AddAlias(f.Types.Class(alias), f.Types.Class(target)); err != nil {
		f.t.Fatalf("alias %s: %v", alias, err)
	}
}

// FuncOpt customises a function declaration.
type FuncOpt func(*codebase.Function)

func Static() FuncOpt { return func(fn *codebase.Function) { fn.Static = true } }

func Synthesized() FuncOpt {
	return func(fn *codebase.Function) { fn.Flags |= codebase.FuncFlagSynthesized }
}

func Templates(names ...string) FuncOpt {
	return func(fn *codebase.Function) { fn.Templates = append(fn.Templates, names...) }
}

// Throws records raw type expressions; they are parsed when the function is
// added so that templates from other options are visible.
func Throws(exprs ...string) FuncOpt {
	return func(fn *codebase.Function) {
		for _, e := range exprs {
			fn.Throws = append(fn.Throws, codebase.ThrowsDecl{Text: e})
		}
	}
}

// Method declares a method on class.
func (f *Fixture) Method(class codebase.ClassID, name string, opts ...FuncOpt) *codebase.Function {
	f.t.Helper()
	fn := &codebase.Function{Name: name, Class: class}
	return f.addFunction(fn, opts)
}

// Func declares a free function in namespace ns.
func (f *Fixture) Func(ns, name string, opts ...FuncOpt) *codebase.Function {
	f.t.Helper()
	fn := &codebase.Function{Name: name, Namespace: ns}
	return f.addFunction(fn, opts)
}

func (f *Fixture) addFunction(fn *codebase.Function, opts []FuncOpt) *codebase.Function {
	f.t.Helper()
	for _, opt := range opts {
		opt(fn)
	}
	ctx := types.ParseContext{Templates: fn.Templates}
	if c := f.Index.Class(fn.Class); c != nil {
		ctx.Namespace, _ = types.SplitFQSEN(c.Name)
		ctx.Templates = append(append([]string(nil), fn.Templates...), c.Templates...)
	} else {
		ctx.Namespace = fn.Namespace
	}
	raw := fn.Throws
	fn.Throws = nil
	for _, r := range raw {
		parts, err := f.Types.ParseExpr(r.Text, ctx)
		if err != nil {
			f.t.Fatalf("throws %q: %v", r.Text, err)
		}
		for _, p := range parts {
			fn.Throws = append(fn.Throws, codebase.ThrowsDecl{Type: p.Type, Text: p.Text})
		}
	}
	if _, err := f.Index.AddFunction(fn); err != nil {
		f.t.Fatalf("function %s: %v", fn.Name, err)
	}
	return fn
}

// Freeze freezes the index and returns it.
func (f *Fixture) Freeze() *codebase.Index {
	f.Index.Freeze()
	return f.Index
}

// Package sema validates documented @throws types and propagates them down
// the override graph.
package sema

import (
	"fmt"
	"strings"
	"sync"

	"docthrows/internal/codebase"
	"docthrows/internal/diag"
	"docthrows/internal/expand"
	"docthrows/internal/suggest"
	"docthrows/internal/types"
)

// InheritPolicy decides how throws from several overridden methods combine.
type InheritPolicy uint8

const (
	// InheritUnion unions every contribution in visit order.
	InheritUnion InheritPolicy = iota
	// InheritLastWins keeps the last non-empty contribution.
	InheritLastWins
)

func (p InheritPolicy) String() string {
	if p == InheritLastWins {
		return "last"
	}
	return "union"
}

// ParseInheritPolicy accepts "union" (or empty) and "last".
func ParseInheritPolicy(s string) (InheritPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "union":
		return InheritUnion, nil
	case "last", "last-wins":
		return InheritLastWins, nil
	default:
		return InheritUnion, fmt.Errorf("unknown inherit policy %q (want union or last)", s)
	}
}

// SkipSynthesized is the default inheritance skip predicate.
func SkipSynthesized(fn *codebase.Function) bool { return fn.Synthesized() }

// Options configure a ThrowsChecker.
type Options struct {
	// InheritThrows enables copying throws from overridden methods.
	InheritThrows bool
	InheritPolicy InheritPolicy
	// SkipInheritance excludes methods from inheritance; nil means
	// SkipSynthesized.
	SkipInheritance func(*codebase.Function) bool
	// Suggester may be nil to disable suggestions.
	Suggester *suggest.Engine
}

// Outcome is the result of validating one function.
type Outcome struct {
	// Throwable is parallel to fn.Throws.
	Throwable []bool
	// Aborted is set when the hierarchy was too deep or cyclic; nothing was
	// reported for the function.
	Aborted bool
	// Inherited is set when fn carries inherited throws after resolution,
	// whichever entity filled them.
	Inherited bool
}

// ThrowsChecker is shared by all workers of one analysis pass. Its only
// per-function state is the set of methods whose inheritance is resolved.
type ThrowsChecker struct {
	ix      *codebase.Index
	in      *types.Interner
	oracle  *expand.Oracle
	marker  types.TypeID
	opts    Options
	filter  suggest.Filter
	skipper func(*codebase.Function) bool

	resolved sync.Map // codebase.FunctionID -> struct{}
}

// NewThrowsChecker binds a checker to the oracle's frozen index.
func NewThrowsChecker(oracle *expand.Oracle, opts Options) *ThrowsChecker {
	ix := oracle.Index()
	c := &ThrowsChecker{
		ix:      ix,
		in:      ix.Types(),
		oracle:  oracle,
		marker:  ix.Types().Throwable(),
		opts:    opts,
		skipper: opts.SkipInheritance,
	}
	if c.skipper == nil {
		c.skipper = SkipSynthesized
	}
	c.filter = suggest.Filter{
		Name: "throwable-class",
		Accept: func(cls *codebase.Class) bool {
			if cls.Kind == codebase.ClassKindTrait {
				return false
			}
			ok, st := oracle.IsThrowable(cls.Type)
			return ok && st == expand.StatusOK
		},
	}
	return c
}

// Validate checks fn's throws and, for methods, resolves inherited throws
// unless the check was aborted.
func (c *ThrowsChecker) Validate(fn *codebase.Function, r diag.Reporter) Outcome {
	out := c.CheckThrows(fn, r)
	if out.Aborted || !fn.IsMethod() || !c.opts.InheritThrows {
		return out
	}
	set, _ := c.ResolveInherited(fn)
	out.Inherited = !set.Empty()
	return out
}

// Package expand computes ancestor closures of classes and binds
// self/static/parent references. Every traversal is bounded by an explicit
// depth counter; running out of depth is reported as a status.
package expand

import (
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"docthrows/internal/codebase"
	"docthrows/internal/types"
)

// DefaultMaxDepth bounds closure expansion and reference resolution.
const DefaultMaxDepth = 50

// Status is the outcome of an expansion or resolution.
type Status uint8

const (
	StatusOK Status = iota
	// StatusUnknown: the class is not indexed.
	StatusUnknown
	// StatusUnbound: self/static/parent used without a class that can
	// bind it.
	StatusUnbound
	// StatusDepthExceeded: the hierarchy is cyclic or deeper than allowed.
	StatusDepthExceeded
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnknown:
		return "unknown"
	case StatusUnbound:
		return "unbound"
	case StatusDepthExceeded:
		return "depth-exceeded"
	default:
		return "Status(" + strconv.Itoa(int(s)) + ")"
	}
}

// Depth is the remaining recursion budget of a traversal.
type Depth int

// Exhausted reports whether no further step is allowed.
func (d Depth) Exhausted() bool { return d < 0 }

// Next spends one step.
func (d Depth) Next() Depth { return d - 1 }

type entry struct {
	set    types.Set
	status Status
}

// Oracle answers closure queries over a frozen index. Safe for concurrent
// use; closures are computed once and memoised.
type Oracle struct {
	ix       *codebase.Index
	marker   types.TypeID
	maxDepth Depth

	mu    sync.RWMutex
	memo  map[types.TypeID]entry
	group singleflight.Group
}

// New creates an oracle. maxDepth <= 0 selects DefaultMaxDepth.
func New(ix *codebase.Index, maxDepth int) *Oracle {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Oracle{
		ix:       ix,
		marker:   ix.Types().Throwable(),
		maxDepth: Depth(maxDepth),
		memo:     make(map[types.TypeID]entry, ix.ClassCount()),
	}
}

// MaxDepth returns the budget every top-level query starts with.
func (o *Oracle) MaxDepth() Depth { return o.maxDepth }

// Index returns the index the oracle reads.
func (o *Oracle) Index() *codebase.Index { return o.ix }

// Expand returns the ancestor closure of t: t itself, its parent chain and
// all implemented or extended interfaces. Ancestors that are not indexed
// are kept by identity but not expanded further.
func (o *Oracle) Expand(t types.TypeID) (types.Set, Status) {
	if e, ok := o.lookup(t); ok {
		return e.set, e.status
	}
	v, _, _ := o.group.Do(strconv.FormatUint(uint64(t), 10), func() (any, error) {
		if e, ok := o.lookup(t); ok {
			return e, nil
		}
		set, st := o.expand(t, o.maxDepth)
		e := entry{set: set, status: st}
		o.store(t, e)
		return e, nil
	})
	e := v.(entry)
	return e.set, e.status
}

// IsThrowable reports whether the closure of t contains the throwable
// marker.
func (o *Oracle) IsThrowable(t types.TypeID) (bool, Status) {
	if t == o.marker {
		return true, StatusOK
	}
	set, st := o.Expand(t)
	if st != StatusOK {
		return false, st
	}
	return set.Contains(o.marker), StatusOK
}

// expand is the recursive worker. Only complete closures are memoised from
// here; a nested failure depends on the remaining budget.
func (o *Oracle) expand(t types.TypeID, depth Depth) (types.Set, Status) {
	if depth.Exhausted() {
		return types.Set{}, StatusDepthExceeded
	}
	if e, ok := o.lookup(t); ok && e.status == StatusOK {
		return e.set, StatusOK
	}
	target, st := o.followAliases(t, depth)
	if st != StatusOK {
		return types.Set{}, st
	}
	c, ok := o.ix.ClassByType(target)
	if !ok {
		return types.Set{}, StatusUnknown
	}

	ids := []types.TypeID{t, target}
	for _, anc := range c.DirectAncestors() {
		set, st := o.expand(anc, depth.Next())
		switch st {
		case StatusOK:
			ids = append(ids, set.IDs()...)
		case StatusUnknown:
			ids = append(ids, anc)
		default:
			return types.Set{}, st
		}
	}
	set := types.NewSet(ids...)
	o.store(t, entry{set: set, status: StatusOK})
	return set, StatusOK
}

func (o *Oracle) lookup(t types.TypeID) (entry, bool) {
	o.mu.RLock()
	e, ok := o.memo[t]
	o.mu.RUnlock()
	return e, ok
}

func (o *Oracle) store(t types.TypeID, e entry) {
	o.mu.Lock()
	if _, ok := o.memo[t]; !ok {
		o.memo[t] = e
	}
	o.mu.Unlock()
}

// Package suggest finds "did you mean" replacements for unknown or unsuitable
// class names.
package suggest

import (
	"fmt"

	"github.com/agext/levenshtein"
	lru "github.com/hashicorp/golang-lru/v2"

	"docthrows/internal/codebase"
	"docthrows/internal/types"
)

// DefaultCacheSize bounds the number of memoised answers.
const DefaultCacheSize = 1024

// Filter restricts candidates. Name identifies the predicate for caching;
// an empty Name disables caching for the query.
type Filter struct {
	Name   string
	Accept func(*codebase.Class) bool
}

type candidate struct {
	class     *codebase.Class
	short     string // folded short name
	namespace string // folded namespace
	canonical string
}

type cacheKey struct {
	missing types.TypeID
	filter  string
}

type answer struct {
	id types.TypeID
	ok bool
}

// Engine ranks indexed classes by edit distance of their short names.
// Safe for concurrent use once the index is frozen.
type Engine struct {
	in         *types.Interner
	candidates []candidate
	cache      *lru.Cache[cacheKey, answer]
}

// New builds an engine over every class in ix. cacheSize <= 0 selects
// DefaultCacheSize.
func New(ix *codebase.Index, cacheSize int) (*Engine, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[cacheKey, answer](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("suggest cache: %w", err)
	}
	classes := ix.Classes()
	e := &Engine{
		in:         ix.Types(),
		candidates: make([]candidate, 0, len(classes)),
		cache:      cache,
	}
	for i := range classes {
		c := &classes[i]
		ns, short := types.SplitFQSEN(c.Name)
		e.candidates = append(e.candidates, candidate{
			class:     c,
			short:     types.FoldName(short),
			namespace: types.FoldName(ns),
			canonical: types.CanonicalFQSEN(c.Name),
		})
	}
	return e, nil
}

// Threshold is the largest distance accepted between names of lengths a and b.
func Threshold(a, b int) int {
	longer := max(a, b)
	return max(3, (longer+1)/2)
}

// Suggest returns the accepted class whose short name is closest to the
// short name of missing. Ties prefer the same namespace, then the
// lexicographically smaller FQSEN.
func (e *Engine) Suggest(missing types.TypeID, f Filter) (types.TypeID, bool) {
	key := cacheKey{missing: missing, filter: f.Name}
	if f.Name != "" {
		if a, ok := e.cache.Get(key); ok {
			return a.id, a.ok
		}
	}
	a := e.search(missing, f)
	if f.Name != "" {
		e.cache.Add(key, a)
	}
	return a.id, a.ok
}

func (e *Engine) search(missing types.TypeID, f Filter) answer {
	typ, ok := e.in.Lookup(missing)
	if !ok || typ.Kind != types.KindClass {
		return answer{}
	}
	ns, short := types.SplitFQSEN(typ.Name)
	want := types.FoldName(short)
	wantNS := types.FoldName(ns)
	self := types.CanonicalFQSEN(typ.Name)
	wantLen := len([]rune(want))

	var (
		best      *candidate
		bestDist  int
		bestSameN bool
	)
	for i := range e.candidates {
		c := &e.candidates[i]
		if c.canonical == self {
			continue
		}
		limit := Threshold(wantLen, len([]rune(c.short)))
		dist := levenshtein.Distance(want, c.short, levenshtein.NewParams().MaxCost(limit))
		if dist > limit {
			continue
		}
		if f.Accept != nil && !f.Accept(c.class) {
			continue
		}
		sameNS := c.namespace == wantNS
		if best == nil || better(dist, sameNS, c.canonical, bestDist, bestSameN, best.canonical) {
			best, bestDist, bestSameN = c, dist, sameNS
		}
	}
	if best == nil {
		return answer{}
	}
	return answer{id: best.class.Type, ok: true}
}

func better(dist int, sameNS bool, name string, bestDist int, bestSameNS bool, bestName string) bool {
	if dist != bestDist {
		return dist < bestDist
	}
	if sameNS != bestSameNS {
		return sameNS
	}
	return name < bestName
}

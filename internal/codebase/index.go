package codebase

import (
	"errors"
	"fmt"
	"sync/atomic"

	"fortio.org/safecast"

	"docthrows/internal/types"
)

var (
	ErrDuplicateClass    = errors.New("duplicate class")
	ErrDuplicateFunction = errors.New("duplicate function")
	ErrAliasConflict     = errors.New("alias conflicts with a declared class")
	ErrUnknownClass      = errors.New("unknown class")
)

type methodKey struct {
	class ClassID
	name  string // folded
}

// Index is the registry of classes, aliases and functions of a codebase.
// It is built single-threaded, then frozen and shared read-only.
type Index struct {
	types     *types.Interner
	classes   []Class
	byType    map[types.TypeID]ClassID
	aliases   map[types.TypeID]types.TypeID
	functions []*Function
	methods   map[methodKey]FunctionID
	frozen    atomic.Bool
}

// NewIndex creates an empty index bound to in.
func NewIndex(in *types.Interner) *Index {
	return &Index{
		types:     in,
		classes:   make([]Class, 1, 64), // index 0 reserved for NoClassID
		byType:    make(map[types.TypeID]ClassID, 64),
		aliases:   make(map[types.TypeID]types.TypeID),
		functions: make([]*Function, 1, 128), // index 0 reserved for NoFunctionID
		methods:   make(map[methodKey]FunctionID, 128),
	}
}

// Types returns the interner the index was built with.
func (ix *Index) Types() *types.Interner { return ix.types }

// Freeze forbids further mutation.
func (ix *Index) Freeze() { ix.frozen.Store(true) }

// Frozen reports whether Freeze was called.
func (ix *Index) Frozen() bool { return ix.frozen.Load() }

func (ix *Index) mustMutable() {
	if ix.frozen.Load() {
		panic("codebase: index is frozen")
	}
}

// AddClass registers c. c.Type is derived from c.Name when unset.
func (ix *Index) AddClass(c Class) (ClassID, error) {
	ix.mustMutable()
	if !c.Type.IsValid() {
		c.Type = ix.types.Class(c.Name)
	}
	if c.Name == "" {
		c.Name = ix.types.String(c.Type)
	}
	if _, dup := ix.byType[c.Type]; dup {
		return NoClassID, fmt.Errorf("%s: %w", c.Name, ErrDuplicateClass)
	}
	if _, alias := ix.aliases[c.Type]; alias {
		return NoClassID, fmt.Errorf("%s: %w", c.Name, ErrAliasConflict)
	}
	n, err := safecast.Conv[uint32](len(ix.classes))
	if err != nil {
		panic(fmt.Errorf("classes arena overflow: %w", err))
	}
	c.ID = ClassID(n)
	ix.classes = append(ix.classes, c)
	ix.byType[c.Type] = c.ID
	return c.ID, nil
}

// AddAlias registers alias as another name for target.
func (ix *Index) AddAlias(alias, target types.TypeID) error {
	ix.mustMutable()
	if _, declared := ix.byType[alias]; declared {
		return fmt.Errorf("%s: %w", ix.types.String(alias), ErrAliasConflict)
	}
	if prev, ok := ix.aliases[alias]; ok && prev != target {
		return fmt.Errorf("%s: %w", ix.types.String(alias), ErrDuplicateClass)
	}
	ix.aliases[alias] = target
	return nil
}

// AddFunction registers fn and assigns its ID.
func (ix *Index) AddFunction(fn *Function) (FunctionID, error) {
	ix.mustMutable()
	key := methodKey{class: fn.Class, name: types.FoldName(fn.Name)}
	if fn.Class.IsValid() {
		if ix.Class(fn.Class) == nil {
			return NoFunctionID, fmt.Errorf("%s: %w", fn.Name, ErrUnknownClass)
		}
		if _, dup := ix.methods[key]; dup {
			return NoFunctionID, fmt.Errorf("%s::%s: %w", ix.classes[fn.Class].Name, fn.Name, ErrDuplicateFunction)
		}
	}
	n, err := safecast.Conv[uint32](len(ix.functions))
	if err != nil {
		panic(fmt.Errorf("functions arena overflow: %w", err))
	}
	fn.ID = FunctionID(n)
	ix.functions = append(ix.functions, fn)
	if fn.Class.IsValid() {
		ix.methods[key] = fn.ID
	}
	return fn.ID, nil
}

// SetOverrides records explicit override edges for id.
func (ix *Index) SetOverrides(id FunctionID, targets []FunctionID) {
	ix.mustMutable()
	if fn := ix.Function(id); fn != nil {
		fn.Overrides = append(fn.Overrides[:0], targets...)
	}
}

// Class returns the class or nil if id is invalid.
func (ix *Index) Class(id ClassID) *Class {
	if !id.IsValid() || int(id) >= len(ix.classes) {
		return nil
	}
	return &ix.classes[id]
}

// ClassByType returns the class declared under t, without following aliases.
func (ix *Index) ClassByType(t types.TypeID) (*Class, bool) {
	id, ok := ix.byType[t]
	if !ok {
		return nil, false
	}
	return &ix.classes[id], true
}

// Alias returns the direct target of an alias.
func (ix *Index) Alias(t types.TypeID) (types.TypeID, bool) {
	target, ok := ix.aliases[t]
	return target, ok
}

// Classes returns all classes in declaration order.
func (ix *Index) Classes() []Class {
	if len(ix.classes) <= 1 {
		return nil
	}
	return ix.classes[1:]
}

// ClassCount reports the number of classes.
func (ix *Index) ClassCount() int { return len(ix.classes) - 1 }

// Function returns the function or nil if id is invalid.
func (ix *Index) Function(id FunctionID) *Function {
	if !id.IsValid() || int(id) >= len(ix.functions) {
		return nil
	}
	return ix.functions[id]
}

// Functions returns all functions in declaration order.
func (ix *Index) Functions() []*Function {
	if len(ix.functions) <= 1 {
		return nil
	}
	return ix.functions[1:]
}

// Method finds a method declared directly on class by case-insensitive name.
func (ix *Index) Method(class ClassID, name string) (FunctionID, bool) {
	id, ok := ix.methods[methodKey{class: class, name: types.FoldName(name)}]
	return id, ok
}

// FindMethod locates a method by class FQSEN and name, following aliases.
func (ix *Index) FindMethod(classFQSEN, name string) (FunctionID, bool) {
	t, ok := ix.types.FindClass(classFQSEN)
	if !ok {
		return NoFunctionID, false
	}
	c, ok := ix.lookupClass(t, maxAliasChain)
	if !ok {
		return NoFunctionID, false
	}
	return ix.Method(c.ID, name)
}

// FindFunction locates a free function by FQSEN.
func (ix *Index) FindFunction(fqsen string) (FunctionID, bool) {
	want := types.CanonicalFQSEN(fqsen)
	for _, fn := range ix.Functions() {
		if !fn.IsMethod() && types.CanonicalFQSEN(types.JoinFQSEN(fn.Namespace, fn.Name)) == want {
			return fn.ID, true
		}
	}
	return NoFunctionID, false
}

// FQSEN renders fn as \Ns\Class::method or \Ns\function.
func (ix *Index) FQSEN(fn *Function) string {
	if fn == nil {
		return "<invalid>"
	}
	if c := ix.Class(fn.Class); c != nil {
		return c.Name + "::" + fn.Name
	}
	return types.JoinFQSEN(fn.Namespace, fn.Name)
}

const maxAliasChain = 16

// lookupClass resolves t to a declared class, following at most depth
// alias hops.
func (ix *Index) lookupClass(t types.TypeID, depth int) (*Class, bool) {
	for n := 0; n < depth+1; n++ {
		if c, ok := ix.ClassByType(t); ok {
			return c, true
		}
		next, ok := ix.aliases[t]
		if !ok {
			return nil, false
		}
		t = next
	}
	return nil, false
}

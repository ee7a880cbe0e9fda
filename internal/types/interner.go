package types

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
)

// DefaultThrowable is the root every exception class must reach.
const DefaultThrowable = `\Throwable`

// Builtins stores TypeIDs of the sentinel types.
type Builtins struct {
	Object    TypeID
	Mixed     TypeID
	Null      TypeID
	Array     TypeID
	Throwable TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Interning is not safe for concurrent use; once loading is finished the
// interner is only read and may be shared.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins
}

type typeKey struct {
	Kind Kind
	Key  string
	Elem TypeID
}

// NewInterner constructs an interner seeded with the sentinels. throwable is
// the FQSEN of the root throwable marker; empty selects DefaultThrowable.
func NewInterner(throwable string) *Interner {
	if strings.TrimSpace(throwable) == "" {
		throwable = DefaultThrowable
	}
	in := &Interner{
		types: make([]Type, 1, 64), // 0 = NoTypeID
		index: make(map[typeKey]TypeID, 64),
	}
	in.builtins.Object = in.Intern(Type{Kind: KindObject, Name: "object"})
	in.builtins.Mixed = in.Intern(MakePrimitive("mixed"))
	in.builtins.Null = in.Intern(MakePrimitive("null"))
	in.builtins.Array = in.Intern(MakeArray(NoTypeID))
	in.builtins.Throwable = in.Intern(MakeClass(throwable))
	return in
}

// Builtins returns TypeIDs for the sentinel types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Throwable returns the canonical identity of the root throwable marker.
func (in *Interner) Throwable() TypeID {
	return in.builtins.Throwable
}

func keyOf(t Type) typeKey {
	switch t.Kind {
	case KindClass:
		return typeKey{Kind: t.Kind, Key: CanonicalFQSEN(t.Name)}
	case KindPrimitive:
		return typeKey{Kind: t.Kind, Key: strings.ToLower(t.Name)}
	case KindObject, KindSelf, KindStatic, KindParent:
		return typeKey{Kind: t.Kind}
	case KindArray:
		return typeKey{Kind: t.Kind, Elem: t.Elem}
	default:
		return typeKey{Kind: t.Kind, Key: t.Name}
	}
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := keyOf(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(n)
	in.types = append(in.types, t)
	in.index[key] = id
	return id
}

// Class interns a class-like type by FQSEN.
func (in *Interner) Class(fqsen string) TypeID {
	return in.Intern(MakeClass(fqsen))
}

// FindClass returns the identity of an already interned class without
// interning it.
func (in *Interner) FindClass(fqsen string) (TypeID, bool) {
	id, ok := in.index[keyOf(MakeClass(fqsen))]
	return id, ok
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Len reports the number of interned types (excluding NoTypeID).
func (in *Interner) Len() int {
	return len(in.types) - 1
}

// String renders id the way it is shown in diagnostics.
func (in *Interner) String(id TypeID) string {
	t, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	if t.Kind == KindArray {
		if t.Elem == NoTypeID {
			return "array"
		}
		return in.String(t.Elem) + "[]"
	}
	return t.Name
}

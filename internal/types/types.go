package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// IsValid reports whether id refers to an interned type.
func (id TypeID) IsValid() bool { return id != NoTypeID }

// Kind enumerates the categories a documented type can fall into.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindPrimitive
	KindArray
	KindObject // the unconstrained "object" type
	KindClass
	KindTemplate
	KindSelf
	KindStatic
	KindParent
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindPrimitive:
		return "primitive"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindClass:
		return "class"
	case KindTemplate:
		return "template"
	case KindSelf:
		return "self"
	case KindStatic:
		return "static"
	case KindParent:
		return "parent"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is a compact descriptor for a documented type.
type Type struct {
	Kind Kind
	Name string // FQSEN for classes (first spelling), keyword or template name otherwise
	Elem TypeID // element type of T[]; NoTypeID for bare array
}

// IsObjectLike reports whether values of the type are objects (or may be,
// for template parameters and self references).
func (t Type) IsObjectLike() bool {
	switch t.Kind {
	case KindObject, KindClass, KindTemplate, KindSelf, KindStatic, KindParent:
		return true
	default:
		return false
	}
}

// IsSelfReference reports whether the type must be bound against an
// enclosing class before it names a concrete class.
func (t Type) IsSelfReference() bool {
	return t.Kind == KindSelf || t.Kind == KindStatic || t.Kind == KindParent
}

// MakeClass describes a named class-like type.
func MakeClass(fqsen string) Type {
	return Type{Kind: KindClass, Name: NormalizeFQSEN(fqsen)}
}

// MakePrimitive describes a scalar/pseudo type keyword.
func MakePrimitive(name string) Type {
	return Type{Kind: KindPrimitive, Name: name}
}

// MakeArray describes elem[] or a bare array when elem is NoTypeID.
func MakeArray(elem TypeID) Type {
	return Type{Kind: KindArray, Name: "array", Elem: elem}
}

// MakeTemplate describes a @template parameter.
func MakeTemplate(name string) Type {
	return Type{Kind: KindTemplate, Name: name}
}

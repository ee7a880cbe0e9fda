package codebase

// ClassID identifies a class-like entity inside an Index.
type ClassID uint32

// FunctionID identifies a function or method inside an Index.
type FunctionID uint32

const (
	NoClassID    ClassID    = 0
	NoFunctionID FunctionID = 0
)

// IsValid reports whether the id refers to an allocated class.
func (id ClassID) IsValid() bool { return id != NoClassID }

// IsValid reports whether the id refers to an allocated function.
func (id FunctionID) IsValid() bool { return id != NoFunctionID }

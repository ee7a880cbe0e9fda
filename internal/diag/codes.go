package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Семантические: проверка @throws
	SemaInfo                      Code = 3000
	SemaInvalidThrowsNonObject    Code = 3001 // declared throw type is a primitive/array
	SemaTemplateTypeStaticMethod  Code = 3002 // static method uses a class template it cannot bind
	SemaUndeclaredThrowsType      Code = 3003 // no class with that name is indexed
	SemaInvalidThrowsIsTrait      Code = 3004 // traits cannot be thrown
	SemaInvalidThrowsIsInterface  Code = 3005 // interface accepted but flagged
	SemaInvalidThrowsNonThrowable Code = 3006 // class does not extend the throwable marker

	// Ошибки I/O
	IOLoadFileError Code = 4001
	IOSourceMissing Code = 4002

	// Snapshot loader
	SnapInfo           Code = 5000
	SnapDuplicateClass Code = 5001
	SnapUnknownKind    Code = 5002
	SnapBadType        Code = 5003
	SnapBadOverride    Code = 5004
	SnapBadAlias       Code = 5005
	SnapDuplicateFunc  Code = 5006
	SnapUnknownClass   Code = 5007

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:                   "Unknown error",
	SemaInfo:                      "Semantic information",
	SemaInvalidThrowsNonObject:    "Invalid non-object type in @throws",
	SemaTemplateTypeStaticMethod:  "Template type used in static method",
	SemaUndeclaredThrowsType:      "Undeclared type in @throws",
	SemaInvalidThrowsIsTrait:      "Trait type in @throws",
	SemaInvalidThrowsIsInterface:  "Interface type in @throws",
	SemaInvalidThrowsNonThrowable: "Non-throwable class in @throws",
	IOLoadFileError:               "I/O error",
	IOSourceMissing:               "Source file not found",
	SnapInfo:                      "Snapshot information",
	SnapDuplicateClass:            "Duplicate class declaration",
	SnapUnknownKind:               "Unknown class kind",
	SnapBadType:                   "Malformed type expression",
	SnapBadOverride:               "Unknown override target",
	SnapBadAlias:                  "Invalid class alias",
	SnapDuplicateFunc:             "Duplicate function declaration",
	SnapUnknownClass:              "Method of unknown class",
	ObsInfo:                       "Observability information",
	ObsTimings:                    "Timings",
}

// ID returns the stable short identifier, e.g. SEM3003.
func (c Code) ID() string {
	ic := int(c)
	switch {
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("SNP%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

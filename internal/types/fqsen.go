package types

import (
	"strings"

	"golang.org/x/text/cases"
)

// NormalizeFQSEN trims whitespace and ensures a single leading backslash.
// Case is preserved; use CanonicalFQSEN for identity.
func NormalizeFQSEN(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimLeft(name, `\`)
	return `\` + name
}

// CanonicalFQSEN returns the identity key of a class name: normalized and
// case-folded, since class names are case-insensitive.
func CanonicalFQSEN(name string) string {
	// cases.Caser хранит состояние, поэтому новый на каждый вызов
	return cases.Fold().String(NormalizeFQSEN(name))
}

// FoldName case-folds an unqualified name (method names, short class names).
func FoldName(name string) string {
	return cases.Fold().String(name)
}

// SplitFQSEN splits `\A\B\C` into namespace `\A\B` and short name `C`.
// Global names have namespace `\`.
func SplitFQSEN(fqsen string) (namespace, short string) {
	fqsen = NormalizeFQSEN(fqsen)
	idx := strings.LastIndex(fqsen, `\`)
	if idx <= 0 {
		return `\`, fqsen[1:]
	}
	return fqsen[:idx], fqsen[idx+1:]
}

// JoinFQSEN joins a namespace and a relative name.
func JoinFQSEN(namespace, name string) string {
	namespace = strings.Trim(strings.TrimSpace(namespace), `\`)
	name = strings.Trim(strings.TrimSpace(name), `\`)
	if namespace == "" {
		return `\` + name
	}
	return `\` + namespace + `\` + name
}

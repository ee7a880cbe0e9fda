package types

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrEmptyType is returned for empty members such as "A||B".
var ErrEmptyType = errors.New("empty type")

// ParseContext carries what is needed to resolve names written in a doc
// comment: the declaring namespace, `use` imports and visible templates.
type ParseContext struct {
	Namespace string
	Uses      map[string]string // folded alias -> FQSEN
	Templates []string
}

// Parsed is one member of a union type expression.
type Parsed struct {
	Type   TypeID
	Text   string // as written, trimmed
	Offset int    // byte offset of Text inside the expression
}

var primitiveNames = map[string]struct{}{
	"int": {}, "integer": {}, "float": {}, "double": {}, "string": {}, "bool": {},
	"boolean": {}, "true": {}, "false": {}, "null": {}, "void": {}, "mixed": {},
	"resource": {}, "callable": {}, "never": {}, "scalar": {}, "numeric": {},
	"array-key": {}, "non-empty-string": {}, "positive-int": {}, "negative-int": {},
	"class-string": {}, "callable-string": {}, "closed-resource": {},
}

var arrayNames = map[string]struct{}{
	"array": {}, "list": {}, "iterable": {}, "non-empty-array": {}, "non-empty-list": {},
	"associative-array": {},
}

// ParseExpr splits a doc type expression on top-level '|' and interns every
// member. A leading '?' adds null.
func (in *Interner) ParseExpr(expr string, ctx ParseContext) ([]Parsed, error) {
	parts, err := splitUnion(expr)
	if err != nil {
		return nil, err
	}
	out := make([]Parsed, 0, len(parts))
	for _, p := range parts {
		text := p.text
		offset := p.offset
		if strings.HasPrefix(text, "?") {
			out = append(out, Parsed{Type: in.builtins.Null, Text: "null", Offset: offset})
			text = strings.TrimSpace(text[1:])
			offset++
		}
		if text == "" {
			return nil, fmt.Errorf("%q: %w", expr, ErrEmptyType)
		}
		id, err := in.parseMember(text, ctx)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", expr, err)
		}
		out = append(out, Parsed{Type: id, Text: text, Offset: offset})
	}
	return out, nil
}

func (in *Interner) parseMember(text string, ctx ParseContext) (TypeID, error) {
	if strings.HasSuffix(text, "[]") {
		inner := strings.TrimSpace(strings.TrimSuffix(text, "[]"))
		if strings.HasPrefix(inner, "(") && strings.HasSuffix(inner, ")") {
			// (A|B)[]: элемент-объединение сводим к массиву без элемента
			return in.builtins.Array, nil
		}
		elem, err := in.parseMember(inner, ctx)
		if err != nil {
			return NoTypeID, err
		}
		return in.Intern(MakeArray(elem)), nil
	}

	name := text
	if i := strings.IndexAny(text, "<{"); i >= 0 {
		if !strings.HasSuffix(text, ">") && !strings.HasSuffix(text, "}") {
			return NoTypeID, fmt.Errorf("unbalanced generic arguments in %q", text)
		}
		name = strings.TrimSpace(text[:i])
	}
	lower := strings.ToLower(name)

	switch lower {
	case "object":
		return in.builtins.Object, nil
	case "self", "$this":
		return in.Intern(Type{Kind: KindSelf, Name: name}), nil
	case "static":
		return in.Intern(Type{Kind: KindStatic, Name: name}), nil
	case "parent":
		return in.Intern(Type{Kind: KindParent, Name: name}), nil
	}
	if _, ok := arrayNames[lower]; ok {
		return in.builtins.Array, nil
	}
	if _, ok := primitiveNames[lower]; ok {
		return in.Intern(MakePrimitive(lower)), nil
	}
	for _, tpl := range ctx.Templates {
		if tpl == name {
			return in.Intern(MakeTemplate(name)), nil
		}
	}
	if !isClassName(name) {
		return NoTypeID, fmt.Errorf("invalid class name %q", name)
	}
	return in.Class(ctx.Resolve(name)), nil
}

// Resolve turns a written class name into an FQSEN using the namespace and
// imports of the context.
func (ctx ParseContext) Resolve(name string) string {
	if strings.HasPrefix(name, `\`) {
		return NormalizeFQSEN(name)
	}
	first, rest, _ := strings.Cut(name, `\`)
	if target, ok := ctx.Uses[FoldName(first)]; ok {
		if rest == "" {
			return NormalizeFQSEN(target)
		}
		return JoinFQSEN(target, rest)
	}
	return JoinFQSEN(ctx.Namespace, name)
}

func isClassName(name string) bool {
	if name == "" || name == `\` || strings.HasSuffix(name, `\`) || strings.Contains(name, `\\`) {
		return false
	}
	for i, r := range strings.TrimPrefix(name, `\`) {
		switch {
		case r == '_' || r == '\\' || r >= 0x80:
		case unicode.IsLetter(r):
		case unicode.IsDigit(r) && i > 0:
		default:
			return false
		}
	}
	return true
}

type unionPart struct {
	text   string
	offset int
}

func splitUnion(expr string) ([]unionPart, error) {
	var parts []unionPart
	depth := 0
	start := 0
	flush := func(end int) error {
		raw := expr[start:end]
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return fmt.Errorf("%q: %w", expr, ErrEmptyType)
		}
		lead := len(raw) - len(strings.TrimLeft(raw, " \t"))
		parts = append(parts, unionPart{text: trimmed, offset: start + lead})
		return nil
	}
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '<', '(', '{':
			depth++
		case '>', ')', '}':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced brackets in %q", expr)
			}
		case '|':
			if depth == 0 {
				if err := flush(i); err != nil {
					return nil, err
				}
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced brackets in %q", expr)
	}
	if err := flush(len(expr)); err != nil {
		return nil, err
	}
	return parts, nil
}

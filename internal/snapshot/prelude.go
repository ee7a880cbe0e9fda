package snapshot

// preludeClass is a built-in PHP class seeded before the document.
type preludeClass struct {
	name       string
	kind       string
	extends    string
	implements []string
}

// prelude lists PHP's built-in throwable hierarchy (core + SPL).
var prelude = []preludeClass{
	{name: `\Stringable`, kind: "interface"},
	{name: `\Throwable`, kind: "interface", implements: []string{`\Stringable`}},
	{name: `\Exception`, kind: "class", implements: []string{`\Throwable`}},
	{name: `\Error`, kind: "class", implements: []string{`\Throwable`}},

	{name: `\ErrorException`, kind: "class", extends: `\Exception`},
	{name: `\JsonException`, kind: "class", extends: `\Exception`},
	{name: `\LogicException`, kind: "class", extends: `\Exception`},
	{name: `\BadFunctionCallException`, kind: "class", extends: `\LogicException`},
	{name: `\BadMethodCallException`, kind: "class", extends: `\BadFunctionCallException`},
	{name: `\DomainException`, kind: "class", extends: `\LogicException`},
	{name: `\InvalidArgumentException`, kind: "class", extends: `\LogicException`},
	{name: `\LengthException`, kind: "class", extends: `\LogicException`},
	{name: `\OutOfRangeException`, kind: "class", extends: `\LogicException`},
	{name: `\RuntimeException`, kind: "class", extends: `\Exception`},
	{name: `\OutOfBoundsException`, kind: "class", extends: `\RuntimeException`},
	{name: `\OverflowException`, kind: "class", extends: `\RuntimeException`},
	{name: `\RangeException`, kind: "class", extends: `\RuntimeException`},
	{name: `\UnderflowException`, kind: "class", extends: `\RuntimeException`},
	{name: `\UnexpectedValueException`, kind: "class", extends: `\RuntimeException`},

	{name: `\TypeError`, kind: "class", extends: `\Error`},
	{name: `\ArgumentCountError`, kind: "class", extends: `\TypeError`},
	{name: `\ValueError`, kind: "class", extends: `\Error`},
	{name: `\ArithmeticError`, kind: "class", extends: `\Error`},
	{name: `\DivisionByZeroError`, kind: "class", extends: `\ArithmeticError`},
	{name: `\AssertionError`, kind: "class", extends: `\Error`},
	{name: `\CompileError`, kind: "class", extends: `\Error`},
	{name: `\ParseError`, kind: "class", extends: `\CompileError`},
	{name: `\UnhandledMatchError`, kind: "class", extends: `\Error`},
}

// PreludeEntries returns the built-in classes as document entries.
func PreludeEntries() []ClassEntry {
	out := make([]ClassEntry, 0, len(prelude))
	for _, p := range prelude {
		out = append(out, ClassEntry{
			Name:       p.name,
			Kind:       p.kind,
			Extends:    p.extends,
			Implements: append([]string(nil), p.implements...),
		})
	}
	return out
}

// Package snapshot loads a declarative description of a PHP codebase
// (classes, aliases, functions and their extracted @throws lists) into a
// codebase.Index.
package snapshot

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document is the decoded snapshot file. The same shape is used for TOML,
// YAML and the msgpack cache.
type Document struct {
	Version   int             `toml:"version" yaml:"version" msgpack:"version"`
	Classes   []ClassEntry    `toml:"class" yaml:"classes" msgpack:"classes"`
	Aliases   []AliasEntry    `toml:"alias" yaml:"aliases" msgpack:"aliases"`
	Functions []FunctionEntry `toml:"function" yaml:"functions" msgpack:"functions"`
}

type ClassEntry struct {
	Name       string            `toml:"name" yaml:"name" msgpack:"name"`
	Kind       string            `toml:"kind" yaml:"kind" msgpack:"kind"`
	Extends    string            `toml:"extends" yaml:"extends" msgpack:"extends"`
	Implements []string          `toml:"implements" yaml:"implements" msgpack:"implements"`
	Traits     []string          `toml:"uses" yaml:"uses" msgpack:"uses"`
	Templates  []string          `toml:"templates" yaml:"templates" msgpack:"templates"`
	Imports    map[string]string `toml:"imports" yaml:"imports" msgpack:"imports"`
	File       string            `toml:"file" yaml:"file" msgpack:"file"`
	Line       int               `toml:"line" yaml:"line" msgpack:"line"`
}

type AliasEntry struct {
	Name   string `toml:"name" yaml:"name" msgpack:"name"`
	Target string `toml:"target" yaml:"target" msgpack:"target"`
}

type FunctionEntry struct {
	Name        string            `toml:"name" yaml:"name" msgpack:"name"`
	Class       string            `toml:"class" yaml:"class" msgpack:"class"`
	Namespace   string            `toml:"namespace" yaml:"namespace" msgpack:"namespace"`
	Static      bool              `toml:"static" yaml:"static" msgpack:"static"`
	Synthesized bool              `toml:"synthesized" yaml:"synthesized" msgpack:"synthesized"`
	Abstract    bool              `toml:"abstract" yaml:"abstract" msgpack:"abstract"`
	Templates   []string          `toml:"templates" yaml:"templates" msgpack:"templates"`
	Imports     map[string]string `toml:"imports" yaml:"imports" msgpack:"imports"`
	Overrides   []string          `toml:"overrides" yaml:"overrides" msgpack:"overrides"`
	File        string            `toml:"file" yaml:"file" msgpack:"file"`
	Line        int               `toml:"line" yaml:"line" msgpack:"line"`
	Throws      []ThrowsEntry     `toml:"throws" yaml:"throws" msgpack:"throws"`
}

// ThrowsEntry is one @throws annotation: either a bare type expression or a
// table carrying the position of the written type.
type ThrowsEntry struct {
	Type string `toml:"type" yaml:"type" msgpack:"type"`
	Line int    `toml:"line" yaml:"line" msgpack:"line"`
	Col  int    `toml:"col" yaml:"col" msgpack:"col"`
}

// UnmarshalTOML accepts a string or a {type, line, col} table.
func (e *ThrowsEntry) UnmarshalTOML(v any) error {
	switch val := v.(type) {
	case string:
		*e = ThrowsEntry{Type: val}
		return nil
	case map[string]any:
		var out ThrowsEntry
		for k, raw := range val {
			switch k {
			case "type":
				s, ok := raw.(string)
				if !ok {
					return fmt.Errorf("throws.type: expected string, got %T", raw)
				}
				out.Type = s
			case "line", "col":
				n, ok := raw.(int64)
				if !ok {
					return fmt.Errorf("throws.%s: expected integer, got %T", k, raw)
				}
				if k == "line" {
					out.Line = int(n)
				} else {
					out.Col = int(n)
				}
			default:
				return fmt.Errorf("throws: unknown key %q", k)
			}
		}
		if out.Type == "" {
			return fmt.Errorf("throws: missing type")
		}
		*e = out
		return nil
	default:
		return fmt.Errorf("throws: expected string or table, got %T", v)
	}
}

// UnmarshalYAML accepts a scalar or a {type, line, col} mapping.
func (e *ThrowsEntry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*e = ThrowsEntry{Type: node.Value}
		return nil
	case yaml.MappingNode:
		type plain ThrowsEntry
		var out plain
		if err := node.Decode(&out); err != nil {
			return err
		}
		if out.Type == "" {
			return fmt.Errorf("line %d: throws: missing type", node.Line)
		}
		*e = ThrowsEntry(out)
		return nil
	default:
		return fmt.Errorf("line %d: throws: expected string or mapping", node.Line)
	}
}

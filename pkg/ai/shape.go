package ai

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the JSON value kind a shape node accepts.
type Kind int

const (
	KindString Kind = iota + 1
	KindNumber
	KindInteger
	KindBool
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindInteger:
		return "integer"
	case KindBool:
		return "boolean"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "unknown"
}

// Node declares the expected shape of one JSON value. Object fields are
// checked in declaration order so the first failure is deterministic.
type Node struct {
	Kind     Kind
	Fields   []Field
	Items    *Node
	MinItems int
	Enum     []string
	Min      *float64
	Max      *float64
}

// Field is a named member of an object node.
type Field struct {
	Name     string
	Optional bool
	Node     Node
}

type violation struct {
	path   string
	reason string
}

func (n Node) check(value any, path string) *violation {
	switch n.Kind {
	case KindString:
		s, ok := value.(string)
		if !ok {
			return &violation{path, "expected string, got " + kindOf(value)}
		}
		if len(n.Enum) > 0 && !containsString(n.Enum, s) {
			return &violation{path, fmt.Sprintf("%q is not one of [%s]", s, strings.Join(n.Enum, ", "))}
		}
	case KindNumber, KindInteger:
		f, ok := value.(float64)
		if !ok {
			return &violation{path, "expected " + n.Kind.String() + ", got " + kindOf(value)}
		}
		if n.Kind == KindInteger && f != math.Trunc(f) {
			return &violation{path, "expected integer, got fractional number"}
		}
		if n.Min != nil && f < *n.Min {
			return &violation{path, fmt.Sprintf("must be >= %s", formatFloat(*n.Min))}
		}
		if n.Max != nil && f > *n.Max {
			return &violation{path, fmt.Sprintf("must be <= %s", formatFloat(*n.Max))}
		}
	case KindBool:
		if _, ok := value.(bool); !ok {
			return &violation{path, "expected boolean, got " + kindOf(value)}
		}
	case KindArray:
		items, ok := value.([]any)
		if !ok {
			return &violation{path, "expected array, got " + kindOf(value)}
		}
		if len(items) < n.MinItems {
			return &violation{path, fmt.Sprintf("expected at least %d items, got %d", n.MinItems, len(items))}
		}
		if n.Items != nil {
			for i, item := range items {
				if v := n.Items.check(item, path+"["+strconv.Itoa(i)+"]"); v != nil {
					return v
				}
			}
		}
	case KindObject:
		members, ok := value.(map[string]any)
		if !ok {
			return &violation{path, "expected object, got " + kindOf(value)}
		}
		for _, field := range n.Fields {
			fieldPath := joinPath(path, field.Name)
			member, present := members[field.Name]
			if !present || member == nil {
				if field.Optional {
					continue
				}
				return &violation{fieldPath, "missing required field"}
			}
			if v := field.Node.check(member, fieldPath); v != nil {
				return v
			}
		}
	}
	return nil
}

// describe renders a compact JSON-like skeleton of the node for prompts.
func (n Node) describe() string {
	switch n.Kind {
	case KindString:
		if len(n.Enum) > 0 {
			quoted := make([]string, len(n.Enum))
			for i, value := range n.Enum {
				quoted[i] = strconv.Quote(value)
			}
			return strings.Join(quoted, "|")
		}
		return "string"
	case KindNumber, KindInteger:
		bounds := ""
		switch {
		case n.Min != nil && n.Max != nil:
			bounds = fmt.Sprintf(" %s..%s", formatFloat(*n.Min), formatFloat(*n.Max))
		case n.Min != nil:
			bounds = " >=" + formatFloat(*n.Min)
		}
		return n.Kind.String() + bounds
	case KindBool:
		return "boolean"
	case KindArray:
		if n.Items == nil {
			return "[]"
		}
		return "[" + n.Items.describe() + ", ...]"
	case KindObject:
		parts := make([]string, 0, len(n.Fields))
		for _, field := range n.Fields {
			name := strconv.Quote(field.Name)
			if field.Optional {
				name += "?"
			}
			parts = append(parts, name+": "+field.Node.describe())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return "null"
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func kindOf(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", value)
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func bound(f float64) *float64 { return &f }

func str() Node { return Node{Kind: KindString} }

func oneOf(values ...string) Node { return Node{Kind: KindString, Enum: values} }

func number() Node { return Node{Kind: KindNumber} }

func numberIn(lo, hi float64) Node { return Node{Kind: KindNumber, Min: bound(lo), Max: bound(hi)} }

func numberAtLeast(lo float64) Node { return Node{Kind: KindNumber, Min: bound(lo)} }

func integerIn(lo, hi float64) Node { return Node{Kind: KindInteger, Min: bound(lo), Max: bound(hi)} }

func integerAtLeast(lo float64) Node { return Node{Kind: KindInteger, Min: bound(lo)} }

func stringList() Node { return arrayOf(str(), 0) }

func arrayOf(item Node, minItems int) Node {
	return Node{Kind: KindArray, Items: &item, MinItems: minItems}
}

func object(fields ...Field) Node { return Node{Kind: KindObject, Fields: fields} }

func required(name string, node Node) Field { return Field{Name: name, Node: node} }

func optional(name string, node Node) Field { return Field{Name: name, Optional: true, Node: node} }

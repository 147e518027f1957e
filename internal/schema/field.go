package schema

import (
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Kind is the shape of a single schema field.
type Kind int

const (
	KindAny Kind = iota
	KindString
	KindNumber
	KindInt
	KindBool
	KindList
	KindMap
	KindObject
)

var kindNames = map[Kind]string{
	KindAny:    "any",
	KindString: "string",
	KindNumber: "number",
	KindInt:    "int",
	KindBool:   "bool",
	KindList:   "list",
	KindMap:    "map",
	KindObject: "object",
}

// String returns the type keyword of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// Field is one node of a configuration schema tree.
type Field struct {
	Kind Kind

	// Elem is the element schema of a list or map field.
	Elem *Field

	// Fields holds the attributes of an object field, keyed by name.
	Fields map[string]*Field

	Description string

	// Default is used when the caller does not supply a value. A non-nil
	// default makes the field optional.
	Default *cty.Value

	// Optional fields may be omitted; they resolve to their default, or to a
	// typed null when no default exists.
	Optional bool
}

// Any accepts every value unchanged.
func Any() *Field { return &Field{Kind: KindAny} }

// String accepts string values.
func String() *Field { return &Field{Kind: KindString} }

// Number accepts any number.
func Number() *Field { return &Field{Kind: KindNumber} }

// Int accepts whole numbers.
func Int() *Field { return &Field{Kind: KindInt} }

// Bool accepts true or false.
func Bool() *Field { return &Field{Kind: KindBool} }

// List accepts a sequence whose elements all satisfy elem.
func List(elem *Field) *Field { return &Field{Kind: KindList, Elem: elem} }

// Map accepts string-keyed collections whose values all satisfy elem.
func Map(elem *Field) *Field { return &Field{Kind: KindMap, Elem: elem} }

// Object accepts a structure with exactly the given attributes.
func Object(fields map[string]*Field) *Field {
	if fields == nil {
		fields = map[string]*Field{}
	}
	return &Field{Kind: KindObject, Fields: fields}
}

// WithDefault returns a copy of the field that falls back to v.
func (f *Field) WithDefault(v cty.Value) *Field {
	cp := *f
	cp.Default = &v
	return &cp
}

// AsOptional returns a copy of the field that may be omitted.
func (f *Field) AsOptional() *Field {
	cp := *f
	cp.Optional = true
	return &cp
}

// Describe returns a copy of the field with the given description.
func (f *Field) Describe(description string) *Field {
	cp := *f
	cp.Description = description
	return &cp
}

// Required reports whether the caller must supply a value for the field.
func (f *Field) Required() bool {
	return !f.Optional && f.Default == nil
}

// FieldNames returns the attribute names of an object field in sorted order.
func (f *Field) FieldNames() []string {
	names := make([]string, 0, len(f.Fields))
	for name := range f.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Type returns the cty type of values produced by validating against f.
func (f *Field) Type() cty.Type {
	if f == nil {
		return cty.DynamicPseudoType
	}
	switch f.Kind {
	case KindString:
		return cty.String
	case KindNumber, KindInt:
		return cty.Number
	case KindBool:
		return cty.Bool
	case KindList:
		return cty.List(f.Elem.Type())
	case KindMap:
		return cty.Map(f.Elem.Type())
	case KindObject:
		// Validated objects always carry every declared attribute, so the
		// value type has no optional markers.
		attrs := make(map[string]cty.Type, len(f.Fields))
		for name, child := range f.Fields {
			attrs[name] = child.Type()
		}
		return cty.Object(attrs)
	default:
		return cty.DynamicPseudoType
	}
}

// String renders the field as a type expression, e.g. `object({a=string})`.
func (f *Field) String() string {
	if f == nil {
		return "nothing"
	}
	switch f.Kind {
	case KindList, KindMap:
		return f.Kind.String() + "(" + f.Elem.String() + ")"
	case KindObject:
		var sb strings.Builder
		sb.WriteString("object({")
		for i, name := range f.FieldNames() {
			if i > 0 {
				sb.WriteRune(',')
			}
			sb.WriteString(name)
			sb.WriteRune('=')
			sb.WriteString(f.Fields[name].String())
		}
		sb.WriteString("})")
		return sb.String()
	default:
		return f.Kind.String()
	}
}

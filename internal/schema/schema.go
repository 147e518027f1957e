package schema

import "github.com/zclconf/go-cty/cty"

// Schema is the configuration contract of a unit: an optional root field plus
// a human readable description. The zero Schema is empty and accepts no
// configuration.
type Schema struct {
	root        *Field
	description string
}

// New wraps a root field into a Schema.
func New(root *Field) Schema {
	return Schema{root: root}
}

// Empty returns the schema of a unit that takes no configuration.
func Empty() Schema {
	return Schema{}
}

// Root returns the root field, or nil for an empty schema.
func (s Schema) Root() *Field { return s.root }

// IsEmpty reports whether the schema accepts no configuration.
func (s Schema) IsEmpty() bool { return s.root == nil }

// Description returns the schema description.
func (s Schema) Description() string { return s.description }

// WithDescription returns a copy of the schema carrying the description.
func (s Schema) WithDescription(description string) Schema {
	s.description = description
	return s
}

// Type returns the cty type of validated values.
func (s Schema) Type() cty.Type {
	if s.root == nil {
		return cty.EmptyObject
	}
	return s.root.Type()
}

// String renders the schema as a type expression.
func (s Schema) String() string {
	if s.root == nil {
		return "nothing"
	}
	return s.root.String()
}

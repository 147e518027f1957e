package unit

import (
	"github.com/specialistvlad/gridbind/internal/binding"
	"github.com/specialistvlad/gridbind/internal/schema"
)

// Kind identifies the family of a unit.
type Kind = binding.Kind

const (
	KindOp       Kind = "op"
	KindResource Kind = "resource"
	KindGraph    Kind = "graph"
	KindExecutor Kind = "executor"
	KindLogger   Kind = "logger"
)

// Unit is the common surface of every unit kind.
type Unit interface {
	binding.Configurable
	Description() string
}

// def holds the identity and contract shared by every kind.
type def struct {
	name        string
	description string
	schema      schema.Schema
	layer       *binding.Layer
}

func (d *def) Name() string                { return d.name }
func (d *def) Description() string         { return d.description }
func (d *def) ConfigSchema() schema.Schema { return d.schema }
func (d *def) Binding() *binding.Layer     { return d.layer }

func (d def) with(c binding.Contract) def {
	d.name = c.Name
	d.schema = c.Schema
	d.layer = c.Layer
	if desc := c.Schema.Description(); desc != "" {
		d.description = desc
	}
	return d
}

// Option customizes a unit at construction time.
type Option func(*def)

// WithDescription documents the unit.
func WithDescription(description string) Option {
	return func(d *def) { d.description = description }
}

// WithSchema declares the configuration schema of the unit.
func WithSchema(s schema.Schema) Option {
	return func(d *def) { d.schema = s }
}

func newDef(name string, opts []Option) def {
	d := def{name: name}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

var (
	_ Unit = (*Op)(nil)
	_ Unit = (*Resource)(nil)
	_ Unit = (*Graph)(nil)
	_ Unit = (*Executor)(nil)
	_ Unit = (*Logger)(nil)
)

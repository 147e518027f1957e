package binding

import (
	"github.com/specialistvlad/gridbind/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// Kind is an opaque tag naming the family of a configurable unit. Binding
// never dispatches on it; it only shows up in logs and errors.
type Kind string

// Configurable is the capability every bindable unit provides.
type Configurable interface {
	// Name is the identity of the unit inside its enclosing namespace.
	Name() string

	Kind() Kind

	// ConfigSchema is the configuration contract callers must satisfy.
	ConfigSchema() schema.Schema

	// Binding returns the layer that produced this unit, or nil for a
	// hand-authored unit.
	Binding() *Layer

	// WithConfigSchema returns a unit of the same kind and behavior carrying
	// the given contract.
	WithConfigSchema(c Contract) Configurable
}

// Contract is the public face a bound unit takes over from the unit it wraps.
type Contract struct {
	Name   string
	Schema schema.Schema
	Layer  *Layer
}

// Transform maps a validated outer configuration to the inner configuration
// of the wrapped unit. Transforms must be pure; they may be invoked once per
// resolution and from several goroutines at once.
type Transform func(outer cty.Value) (cty.Value, error)

// Layer is one binding step: the unit it wraps and how the wrapped unit's
// configuration is produced.
type Layer struct {
	inner Configurable

	// literal is the direct configuration as given by the caller; normalized
	// is the same value after schema validation filled in defaults.
	literal    cty.Value
	normalized cty.Value

	transform Transform
}

// Inner returns the wrapped unit.
func (l *Layer) Inner() Configurable { return l.inner }

// IsDirect reports whether the layer holds a literal configuration.
func (l *Layer) IsDirect() bool { return l.transform == nil }

// Literal returns the captured configuration of a direct layer, or cty.NilVal
// for a mapped one.
func (l *Layer) Literal() cty.Value { return l.literal }

// Chain lists u and every unit beneath it, outermost first.
func Chain(u Configurable) []Configurable {
	chain := []Configurable{u}
	for layer := u.Binding(); layer != nil; layer = layer.inner.Binding() {
		chain = append(chain, layer.inner)
	}
	return chain
}

// Base returns the hand-authored unit at the bottom of u's chain.
func Base(u Configurable) Configurable {
	chain := Chain(u)
	return chain[len(chain)-1]
}

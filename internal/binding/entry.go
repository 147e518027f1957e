package binding

import (
	"fmt"

	"github.com/specialistvlad/gridbind/internal/ctyconv"
	"github.com/specialistvlad/gridbind/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// Configured binds u with either a literal configuration or a transform.
// Literals may be cty values or plain Go values accepted by ctyconv.FromGo.
// Transforms are Transform values or plain
// func(cty.Value) (cty.Value, error) functions.
func Configured[U Configurable](u U, cfgOrFn any, opts ...Option) (U, error) {
	return finish(u, newRequest(cfgOrFn, opts))
}

// Binder is a partially applied decorator: the unit and its outer schema are
// known, the transform is not.
type Binder[U Configurable] struct {
	unit  U
	outer schema.Schema
	opts  []Option
}

// For starts a decorator-style binding of u with the given outer schema.
func For[U Configurable](u U, outer schema.Schema, opts ...Option) *Binder[U] {
	return &Binder[U]{unit: u, outer: outer, opts: opts}
}

// Func completes the binding with fn. Unless a name was given, the bound unit
// takes the name of fn.
func (b *Binder[U]) Func(fn Transform) (U, error) {
	req := &request{}
	req.setTransform(fn)
	b.apply(req)
	return finish(b.unit, req)
}

func (b *Binder[U]) apply(req *request) {
	for _, opt := range b.opts {
		opt(req)
	}
	outer := b.outer
	req.outer = &outer
}

// TypedFunc completes a decorator binding with a transform over Go types.
// The outer value is decoded into In with gocty, and Out is converted back
// with ctyconv.FromGo.
func TypedFunc[U Configurable, In, Out any](b *Binder[U], fn func(In) (Out, error)) (U, error) {
	req := &request{}
	if fn == nil {
		req.err = errNilTransform
		b.apply(req)
		return finish(b.unit, req)
	}
	req.identity = funcIdentity(fn)
	req.transform = func(outer cty.Value) (cty.Value, error) {
		var in In
		if err := ctyconv.Decode(outer, &in); err != nil {
			return cty.NilVal, fmt.Errorf("decoding outer configuration into %T: %w", in, err)
		}
		out, err := fn(in)
		if err != nil {
			return cty.NilVal, err
		}
		return ctyconv.FromGo(out)
	}
	b.apply(req)
	return finish(b.unit, req)
}

func finish[U Configurable](u U, req *request) (U, error) {
	var zero U
	bound, err := bind(u, req)
	if err != nil {
		return zero, err
	}
	out, ok := bound.(U)
	if !ok {
		return zero, fmt.Errorf("%s %q: WithConfigSchema returned %T, want %T", u.Kind(), u.Name(), bound, zero)
	}
	return out, nil
}

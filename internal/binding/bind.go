package binding

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/gridbind/internal/ctyconv"
	"github.com/specialistvlad/gridbind/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// request is the single description every entry point builds.
type request struct {
	name        string
	description string
	outer       *schema.Schema

	literal   cty.Value
	transform Transform
	// identity is the declared name of the transform function, if any.
	identity string

	// err holds a literal that could not be converted to a cty value. It is
	// reported after identity resolution.
	err error
}

// Option adjusts a binding request.
type Option func(*request)

// WithName sets the name of the bound unit. It is used verbatim.
func WithName(name string) Option {
	return func(r *request) { r.name = name }
}

// WithSchema sets the outer schema of a mapped binding.
func WithSchema(s schema.Schema) Option {
	return func(r *request) { r.outer = &s }
}

// WithDescription describes the outer schema of the bound unit.
func WithDescription(description string) Option {
	return func(r *request) { r.description = description }
}

// newRequest turns a literal configuration or a transform into a request.
func newRequest(cfgOrFn any, opts []Option) *request {
	req := &request{}
	switch v := cfgOrFn.(type) {
	case Transform:
		req.setTransform(v)
	case func(cty.Value) (cty.Value, error):
		req.setTransform(v)
	case nil:
		req.literal = cty.NullVal(cty.DynamicPseudoType)
	default:
		val, err := ctyconv.FromGo(v)
		if err != nil {
			req.err = fmt.Errorf("converting configuration literal: %w", err)
		}
		req.literal = val
	}
	for _, opt := range opts {
		opt(req)
	}
	return req
}

var errNilTransform = errors.New("transform is nil")

func (r *request) setTransform(fn Transform) {
	if fn == nil {
		r.err = errNilTransform
		return
	}
	r.transform = fn
	r.identity = funcIdentity(fn)
}

// bind is the one constructor behind every entry point. Identity comes first
// so an unnamed literal fails before any schema work.
func bind(u Configurable, req *request) (Configurable, error) {
	name := req.name
	if name == "" {
		name = req.identity
	}
	if name == "" {
		return nil, &MissingIdentityError{Kind: u.Kind(), Unit: u.Name()}
	}

	if req.err != nil {
		return nil, &BindError{Kind: u.Kind(), Unit: name, Err: req.err}
	}

	layer := &Layer{inner: u}
	outer := schema.Empty()

	if req.transform == nil {
		if req.outer != nil && !req.outer.IsEmpty() {
			return nil, &BindError{Kind: u.Kind(), Unit: name, Err: fmt.Errorf("an outer schema requires a transform, got a literal configuration")}
		}
		normalized, err := schema.Validate(u.ConfigSchema(), req.literal)
		if err != nil {
			return nil, &BindError{Kind: u.Kind(), Unit: name, Err: err}
		}
		layer.literal = req.literal
		layer.normalized = normalized
	} else {
		if req.outer != nil {
			if err := schema.Check(*req.outer); err != nil {
				return nil, &BindError{Kind: u.Kind(), Unit: name, Err: err}
			}
			outer = *req.outer
		}
		layer.transform = req.transform
	}

	if req.description != "" {
		outer = outer.WithDescription(req.description)
	}

	return u.WithConfigSchema(Contract{Name: name, Schema: outer, Layer: layer}), nil
}

package unit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/specialistvlad/gridbind/internal/binding"
	"github.com/zclconf/go-cty/cty"
)

// OpContext is everything an op sees when it runs.
type OpContext struct {
	// RunID identifies the job execution.
	RunID string
	// Node is the ID of the op inside its job, e.g. "ingest.fetch".
	Node string
	// Config is the resolved configuration of the op.
	Config cty.Value
	// Inputs holds the outputs of the op's dependencies, keyed by their
	// alias.
	Inputs map[string]cty.Value
	// Resources holds the resource instances the op uses, keyed by the
	// name the op asked for them under.
	Resources map[string]any
	Logger    *slog.Logger
}

// Resource returns the resource instance registered under key.
func (oc *OpContext) Resource(key string) (any, error) {
	inst, ok := oc.Resources[key]
	if !ok {
		return nil, fmt.Errorf("op %s: no resource bound under %q", oc.Node, key)
	}
	return inst, nil
}

// ResourceAs returns the resource registered under key as a T.
func ResourceAs[T any](oc *OpContext, key string) (T, error) {
	var zero T
	inst, err := oc.Resource(key)
	if err != nil {
		return zero, err
	}
	typed, ok := inst.(T)
	if !ok {
		return zero, fmt.Errorf("op %s: resource %q is a %T, want %T", oc.Node, key, inst, zero)
	}
	return typed, nil
}

// OpFunc is the execution behavior of an op. The returned value is the op's
// output, made available to its dependents.
type OpFunc func(ctx context.Context, oc *OpContext) (cty.Value, error)

// Op is a single unit of computation.
type Op struct {
	def
	fn OpFunc
}

// NewOp declares an op.
func NewOp(name string, fn OpFunc, opts ...Option) *Op {
	return &Op{def: newDef(name, opts), fn: fn}
}

func (o *Op) Kind() Kind { return KindOp }

// Invoke runs the op. An op without behavior produces a null output.
func (o *Op) Invoke(ctx context.Context, oc *OpContext) (cty.Value, error) {
	if o.fn == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	return o.fn(ctx, oc)
}

func (o *Op) WithConfigSchema(c binding.Contract) binding.Configurable {
	cp := *o
	cp.def = o.def.with(c)
	return &cp
}

// Configured binds the op to a literal configuration or a transform.
func (o *Op) Configured(cfgOrFn any, opts ...binding.Option) (*Op, error) {
	return binding.Configured(o, cfgOrFn, opts...)
}

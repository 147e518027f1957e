package unit

import (
	"context"

	"github.com/specialistvlad/gridbind/internal/binding"
	"github.com/specialistvlad/gridbind/internal/dag"
	"github.com/zclconf/go-cty/cty"
)

// ExecutorFunc builds the runner that will schedule a job's nodes.
type ExecutorFunc func(ctx context.Context, cfg cty.Value) (dag.Runner, error)

// Executor decides how the nodes of a job are run.
type Executor struct {
	def
	build ExecutorFunc
}

// NewExecutor declares an executor.
func NewExecutor(name string, build ExecutorFunc, opts ...Option) *Executor {
	return &Executor{def: newDef(name, opts), build: build}
}

func (e *Executor) Kind() Kind { return KindExecutor }

// Runner builds a runner from the resolved configuration. An executor
// without behavior runs nodes one at a time.
func (e *Executor) Runner(ctx context.Context, cfg cty.Value) (dag.Runner, error) {
	if e.build == nil {
		return dag.NewPool(1), nil
	}
	return e.build(ctx, cfg)
}

func (e *Executor) WithConfigSchema(c binding.Contract) binding.Configurable {
	cp := *e
	cp.def = e.def.with(c)
	return &cp
}

// Configured binds the executor to a literal configuration or a transform.
func (e *Executor) Configured(cfgOrFn any, opts ...binding.Option) (*Executor, error) {
	return binding.Configured(e, cfgOrFn, opts...)
}

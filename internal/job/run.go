package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/specialistvlad/gridbind/internal/ctxlog"
	"github.com/specialistvlad/gridbind/internal/dag"
	"github.com/specialistvlad/gridbind/internal/runconfig"
	"github.com/specialistvlad/gridbind/internal/unit"
	"github.com/zclconf/go-cty/cty"
	"golang.org/x/sync/errgroup"
)

// RunOption adjusts a single run.
type RunOption func(*runOptions)

type runOptions struct {
	runID string
}

// WithRunID fixes the run ID instead of generating one.
func WithRunID(id string) RunOption {
	return func(o *runOptions) { o.runID = id }
}

// Result holds the outputs of a run.
type Result struct {
	RunID string

	outputs map[string]cty.Value
	top     map[string]scopeEntry
}

// Output returns the output of a top-level node. For a graph it is the output
// of the graph's output member.
func (r *Result) Output(alias string) (cty.Value, bool) {
	e, ok := r.top[alias]
	if !ok || e.output == "" {
		return cty.NilVal, false
	}
	return r.NodeOutput(e.output)
}

// NodeOutput returns the output of an op by its flattened ID.
func (r *Result) NodeOutput(id string) (cty.Value, bool) {
	v, ok := r.outputs[id]
	return v, ok
}

// Nodes returns the IDs of the ops that produced an output, sorted.
func (r *Result) Nodes() []string {
	ids := make([]string, 0, len(r.outputs))
	for id := range r.outputs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// runState is shared by the tasks of one run.
type runState struct {
	mu        sync.Mutex
	outputs   map[string]cty.Value
	instances map[string]any
	created   []string
}

func (s *runState) setOutput(id string, v cty.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs[id] = v
}

func (s *runState) output(id string) cty.Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.outputs[id]; ok {
		return v
	}
	return cty.NullVal(cty.DynamicPseudoType)
}

func (s *runState) addInstance(name string, inst any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances[name] = inst
	s.created = append(s.created, name)
}

func (s *runState) instance(name string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.instances[name]
	return inst, ok
}

// Run executes the job once with the given run configuration; rc may be nil.
//
// Every op and resource resolves its own configuration inside its task, so
// each physical run invokes the transforms of its bound units afresh.
// Configuration problems that can be detected without executing anything are
// reported before the first task starts. Resources are destroyed in reverse
// creation order after all tasks finished, even when the run failed.
func (j *Job) Run(ctx context.Context, rc *runconfig.Config, opts ...RunOption) (*Result, error) {
	if rc == nil {
		rc = runconfig.New()
	}
	o := runOptions{runID: uuid.NewString()}
	for _, opt := range opts {
		opt(&o)
	}

	if err := j.checkUnknownKeys(rc); err != nil {
		return nil, fmt.Errorf("job %q: %w", j.name, err)
	}

	handlers, runner, err := j.prepare(ctx, rc)
	if err != nil {
		return nil, fmt.Errorf("job %q: %w", j.name, err)
	}

	logger := ctxlog.FromContext(ctx)
	if len(handlers) > 0 {
		logger = slog.New(newFanout(handlers))
	}
	logger = logger.With("job", j.name, "run_id", o.runID)
	ctx = ctxlog.WithLogger(ctx, logger)

	p := newPlan(rc)
	if err := j.mapGraphs(ctx, p); err != nil {
		return nil, fmt.Errorf("job %q: %w", j.name, err)
	}
	if err := j.validateOuter(p); err != nil {
		return nil, fmt.Errorf("job %q: %w", j.name, err)
	}

	st := &runState{outputs: map[string]cty.Value{}, instances: map[string]any{}}
	tasks := make(map[string]dag.Task, len(j.ops)+len(j.resources))
	for id, n := range j.ops {
		tasks[id] = j.opTask(o.runID, n, p, st)
	}
	for name, r := range j.resources {
		tasks[resourceNodeID(name)] = j.resourceTask(o.runID, name, r, rc, st)
	}

	logger.Info("🚀 Starting job run...", "ops", len(j.ops), "resources", len(j.resources))
	runErr := runner.Run(ctx, j.graph, tasks)
	destroyErr := j.destroy(context.WithoutCancel(ctx), st)
	if runErr != nil {
		logger.Error("💥 Job run failed.", "error", runErr)
	} else {
		logger.Info("🏁 Job run finished.")
	}

	res := &Result{RunID: o.runID, outputs: st.outputs, top: j.top}
	if err := errors.Join(runErr, destroyErr); err != nil {
		return res, fmt.Errorf("job %q: %w", j.name, err)
	}
	return res, nil
}

// prepare builds the log handlers and the runner of a run concurrently.
func (j *Job) prepare(ctx context.Context, rc *runconfig.Config) ([]slog.Handler, dag.Runner, error) {
	g, gctx := errgroup.WithContext(ctx)

	handlers := make([]slog.Handler, len(j.loggers))
	for i, l := range j.loggers {
		g.Go(func() error {
			cfg, err := resolveConfig(gctx, l, rc.Lookup(runconfig.SectionLoggers, l.Name()))
			if err != nil {
				return fmt.Errorf("logger %s: %w", l.Name(), err)
			}
			h, err := l.Handler(gctx, cfg)
			if err != nil {
				return fmt.Errorf("logger %s: %w", l.Name(), err)
			}
			handlers[i] = h
			return nil
		})
	}

	var runner dag.Runner
	g.Go(func() error {
		exec := j.executor
		if exec == nil {
			exec = InProcess()
		}
		raw := cty.NilVal
		if rc.HasExecution() {
			raw = rc.Execution
		}
		cfg, err := resolveConfig(gctx, exec, raw)
		if err != nil {
			return fmt.Errorf("executor %s: %w", exec.Name(), err)
		}
		runner, err = exec.Runner(gctx, cfg)
		if err != nil {
			return fmt.Errorf("executor %s: %w", exec.Name(), err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	built := handlers[:0]
	for _, h := range handlers {
		if h != nil {
			built = append(built, h)
		}
	}
	return built, runner, nil
}

func (j *Job) opTask(runID string, n *opNode, p *plan, st *runState) dag.Task {
	return func(ctx context.Context) error {
		logger := ctxlog.FromContext(ctx).With("op", n.id)
		ctx = ctxlog.WithLogger(ctx, logger)

		cfg, err := resolveConfig(ctx, n.op, p.opRaw(n))
		if err != nil {
			return fmt.Errorf("op %s: %w", n.id, err)
		}

		inputs := make(map[string]cty.Value, len(n.inputs))
		for name, src := range n.inputs {
			inputs[name] = st.output(src)
		}
		resources := make(map[string]any, len(n.uses))
		for key, name := range n.uses {
			inst, ok := st.instance(name)
			if !ok {
				return fmt.Errorf("op %s: resource %q is not available", n.id, name)
			}
			resources[key] = inst
		}

		logger.Info("▶️ Starting op")
		out, err := n.op.Invoke(ctx, &unit.OpContext{
			RunID:     runID,
			Node:      n.id,
			Config:    cfg,
			Inputs:    inputs,
			Resources: resources,
			Logger:    logger,
		})
		if err != nil {
			return fmt.Errorf("op %s: %w", n.id, err)
		}
		if out.Type() == cty.NilType {
			out = cty.NullVal(cty.DynamicPseudoType)
		}
		st.setOutput(n.id, out)
		logger.Info("✅ Finished op")
		return nil
	}
}

func (j *Job) resourceTask(runID, name string, r *unit.Resource, rc *runconfig.Config, st *runState) dag.Task {
	return func(ctx context.Context) error {
		logger := ctxlog.FromContext(ctx).With("resource", name)
		ctx = ctxlog.WithLogger(ctx, logger)

		cfg, err := resolveConfig(ctx, r, rc.Lookup(runconfig.SectionResources, name))
		if err != nil {
			return fmt.Errorf("resource %s: %w", name, err)
		}

		logger.Info("▶️ Creating resource")
		inst, err := r.Create(ctx, &unit.ResourceContext{
			RunID:  runID,
			Node:   resourceNodeID(name),
			Config: cfg,
			Logger: logger,
		})
		if err != nil {
			return fmt.Errorf("resource %s: %w", name, err)
		}
		st.addInstance(name, inst)
		logger.Info("✅ Resource created")
		return nil
	}
}

// destroy releases the created resources in reverse creation order.
func (j *Job) destroy(ctx context.Context, st *runState) error {
	st.mu.Lock()
	created := append([]string(nil), st.created...)
	st.mu.Unlock()

	logger := ctxlog.FromContext(ctx)
	var errs []error
	for i := len(created) - 1; i >= 0; i-- {
		name := created[i]
		inst, _ := st.instance(name)
		logger.Info("🔥 Destroying resource", "resource", name)
		if err := j.resources[name].Destroy(ctx, inst); err != nil {
			errs = append(errs, fmt.Errorf("destroying resource %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

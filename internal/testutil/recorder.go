package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/specialistvlad/gridbind/internal/unit"
	"github.com/zclconf/go-cty/cty"
)

// Call is one recorded op invocation.
type Call struct {
	Node   string
	Config cty.Value
	Inputs map[string]cty.Value
	Start  time.Time
	End    time.Time
}

// Recorder records the invocations of the ops it creates. It is safe for
// concurrent use.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
	order []string
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Op returns an op named name that records each invocation, sleeps for
// sleep and then returns fn's result. A nil fn echoes the configuration.
func (r *Recorder) Op(name string, sleep time.Duration, fn unit.OpFunc, opts ...unit.Option) *unit.Op {
	return unit.NewOp(name, func(ctx context.Context, oc *unit.OpContext) (cty.Value, error) {
		start := time.Now()
		if sleep > 0 {
			select {
			case <-time.After(sleep):
			case <-ctx.Done():
				return cty.NilVal, ctx.Err()
			}
		}
		out := oc.Config
		var err error
		if fn != nil {
			out, err = fn(ctx, oc)
		}
		r.add(Call{Node: oc.Node, Config: oc.Config, Inputs: oc.Inputs, Start: start, End: time.Now()})
		return out, err
	}, opts...)
}

func (r *Recorder) add(c Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	r.order = append(r.order, c.Node)
}

// Calls returns every invocation in completion order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Order returns the node IDs in completion order.
func (r *Recorder) Order() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// Call returns the invocation of node.
func (r *Recorder) Call(node string) (Call, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.calls {
		if c.Node == node {
			return c, true
		}
	}
	return Call{}, false
}

// Nodes returns the sorted IDs of the invoked nodes.
func (r *Recorder) Nodes() []string {
	ids := r.Order()
	sort.Strings(ids)
	return ids
}

// Lifecycle records resource creation and destruction events such as
// "create:db" and "destroy:db".
type Lifecycle struct {
	mu     sync.Mutex
	events []string
}

// Resource returns a resource that records its lifecycle and uses its
// configuration as the instance.
func (l *Lifecycle) Resource(name string, opts ...unit.Option) *unit.Resource {
	return unit.NewResource(name,
		func(_ context.Context, rc *unit.ResourceContext) (any, error) {
			l.add("create:" + name)
			return rc.Config, nil
		},
		func(_ context.Context, _ any) error {
			l.add("destroy:" + name)
			return nil
		},
		opts...,
	)
}

func (l *Lifecycle) add(e string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

// Events returns the recorded events in order.
func (l *Lifecycle) Events() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

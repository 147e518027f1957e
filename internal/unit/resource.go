package unit

import (
	"context"
	"io"
	"log/slog"

	"github.com/specialistvlad/gridbind/internal/binding"
	"github.com/zclconf/go-cty/cty"
)

// ResourceContext is what a resource sees while it is being created.
type ResourceContext struct {
	RunID  string
	Node   string
	Config cty.Value
	Logger *slog.Logger
}

// CreateFunc builds a resource instance from its resolved configuration.
type CreateFunc func(ctx context.Context, rc *ResourceContext) (any, error)

// DestroyFunc releases a resource instance.
type DestroyFunc func(ctx context.Context, instance any) error

// Resource is a long-lived dependency, such as a client session, shared by
// the ops of a run.
type Resource struct {
	def
	create  CreateFunc
	destroy DestroyFunc
}

// NewResource declares a resource. destroy may be nil.
func NewResource(name string, create CreateFunc, destroy DestroyFunc, opts ...Option) *Resource {
	return &Resource{def: newDef(name, opts), create: create, destroy: destroy}
}

func (r *Resource) Kind() Kind { return KindResource }

// Create builds an instance. A resource without behavior yields its
// configuration as the instance.
func (r *Resource) Create(ctx context.Context, rc *ResourceContext) (any, error) {
	if r.create == nil {
		return rc.Config, nil
	}
	return r.create(ctx, rc)
}

// Destroy releases an instance. Without a destroy function, instances that
// implement io.Closer are closed.
func (r *Resource) Destroy(ctx context.Context, instance any) error {
	if r.destroy != nil {
		return r.destroy(ctx, instance)
	}
	if c, ok := instance.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (r *Resource) WithConfigSchema(c binding.Contract) binding.Configurable {
	cp := *r
	cp.def = r.def.with(c)
	return &cp
}

// Configured binds the resource to a literal configuration or a transform.
func (r *Resource) Configured(cfgOrFn any, opts ...binding.Option) (*Resource, error) {
	return binding.Configured(r, cfgOrFn, opts...)
}

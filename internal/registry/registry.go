package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/specialistvlad/gridbind/internal/schema"
	"github.com/specialistvlad/gridbind/internal/unit"
)

// Module is the interface that all modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the units registered for a single application instance.
type Registry struct {
	mu        sync.RWMutex
	units     map[unit.Kind]map[string]unit.Unit
	manifests map[string]manifest
}

type manifest struct {
	path   string
	schema schema.Schema
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		units:     make(map[unit.Kind]map[string]unit.Unit),
		manifests: make(map[string]manifest),
	}
}

// RegisterModules calls Register on every module in order.
func (r *Registry) RegisterModules(modules ...Module) {
	for _, m := range modules {
		m.Register(r)
	}
}

// Register adds a unit. Registering two units of the same kind under one
// name is a programming error and panics.
func (r *Registry) Register(u unit.Unit) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byName, ok := r.units[u.Kind()]
	if !ok {
		byName = make(map[string]unit.Unit)
		r.units[u.Kind()] = byName
	}
	if _, exists := byName[u.Name()]; exists {
		panic(fmt.Sprintf("%s with name '%s' already registered", u.Kind(), u.Name()))
	}
	slog.Debug("Registering unit.", "kind", u.Kind(), "name", u.Name())
	byName[u.Name()] = u
}

// Lookup returns the unit of the given kind and name.
func (r *Registry) Lookup(kind unit.Kind, name string) (unit.Unit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.units[kind][name]
	return u, ok
}

// Names returns the sorted names of every unit of kind.
func (r *Registry) Names(kind unit.Kind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.units[kind]))
	for name := range r.units[kind] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Op returns the registered op named name.
func (r *Registry) Op(name string) (*unit.Op, error) { return lookupAs[*unit.Op](r, unit.KindOp, name) }

// Resource returns the registered resource named name.
func (r *Registry) Resource(name string) (*unit.Resource, error) {
	return lookupAs[*unit.Resource](r, unit.KindResource, name)
}

// Graph returns the registered graph named name.
func (r *Registry) Graph(name string) (*unit.Graph, error) {
	return lookupAs[*unit.Graph](r, unit.KindGraph, name)
}

// Executor returns the registered executor named name.
func (r *Registry) Executor(name string) (*unit.Executor, error) {
	return lookupAs[*unit.Executor](r, unit.KindExecutor, name)
}

// Logger returns the registered logger named name.
func (r *Registry) Logger(name string) (*unit.Logger, error) {
	return lookupAs[*unit.Logger](r, unit.KindLogger, name)
}

func lookupAs[T unit.Unit](r *Registry, kind unit.Kind, name string) (T, error) {
	var zero T
	u, ok := r.Lookup(kind, name)
	if !ok {
		return zero, fmt.Errorf("no %s named %q is registered", kind, name)
	}
	typed, ok := u.(T)
	if !ok {
		return zero, fmt.Errorf("%s %q is a %T, want %T", kind, name, u, zero)
	}
	return typed, nil
}

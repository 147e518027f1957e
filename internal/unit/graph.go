package unit

import (
	"github.com/specialistvlad/gridbind/internal/binding"
	"github.com/zclconf/go-cty/cty"
)

// Member is one node of a graph.
type Member struct {
	// Alias names the member inside the graph.
	Alias string
	// Unit is an *Op or a nested *Graph.
	Unit Unit
	// After lists aliases of sibling members that must finish first.
	After []string
	// Uses maps resource keys seen by the member to resource names of the
	// enclosing job.
	Uses map[string]string
}

// MapFunc derives the raw configuration of each member from the resolved
// configuration of the graph. Members missing from the result receive no
// configuration.
type MapFunc func(cfg cty.Value) (map[string]cty.Value, error)

// GraphSpec describes the topology of a graph.
type GraphSpec struct {
	Members []Member
	// Output is the alias whose output becomes the graph's output.
	Output string
	// Mapping, when set, makes the graph configurable as a whole.
	Mapping MapFunc
}

// Graph is a reusable sub-graph of ops.
type Graph struct {
	def
	spec GraphSpec
}

// NewGraph declares a graph. The members slice is copied.
func NewGraph(name string, spec GraphSpec, opts ...Option) *Graph {
	spec.Members = append([]Member(nil), spec.Members...)
	return &Graph{def: newDef(name, opts), spec: spec}
}

func (g *Graph) Kind() Kind { return KindGraph }

// Members returns the members of the graph in declaration order.
func (g *Graph) Members() []Member {
	return append([]Member(nil), g.spec.Members...)
}

// Output returns the alias of the member providing the graph's output.
func (g *Graph) Output() string { return g.spec.Output }

// MapConfig applies the graph's mapping to its resolved configuration. A
// graph without mapping returns nil.
func (g *Graph) MapConfig(cfg cty.Value) (map[string]cty.Value, error) {
	if g.spec.Mapping == nil {
		return nil, nil
	}
	return g.spec.Mapping(cfg)
}

// HasMapping reports whether member configuration is derived from the
// graph's own configuration.
func (g *Graph) HasMapping() bool { return g.spec.Mapping != nil }

func (g *Graph) WithConfigSchema(c binding.Contract) binding.Configurable {
	cp := *g
	cp.def = g.def.with(c)
	return &cp
}

// Configured binds the graph to a literal configuration or a transform.
func (g *Graph) Configured(cfgOrFn any, opts ...binding.Option) (*Graph, error) {
	return binding.Configured(g, cfgOrFn, opts...)
}

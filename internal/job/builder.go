package job

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/gridbind/internal/dag"
	"github.com/specialistvlad/gridbind/internal/namespace"
	"github.com/specialistvlad/gridbind/internal/unit"
)

// memberSpec is an op or graph waiting to be placed into a scope.
type memberSpec struct {
	alias string
	unit  unit.Unit
	after []string
	uses  map[string]string
}

// Builder collects the units of a job.
type Builder struct {
	name      string
	members   []memberSpec
	resources []*unit.Resource
	loggers   []*unit.Logger
	executor  *unit.Executor
	errs      []error
}

// NewBuilder starts a job with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// Op adds an op to the job. It is placed under its own name unless As is
// given.
func (b *Builder) Op(op *unit.Op, opts ...NodeOption) *Builder {
	if op == nil {
		return b.nilUnit(unit.KindOp)
	}
	return b.add(op, opts)
}

// Graph adds a graph to the job; its members become `alias.member` nodes.
func (b *Builder) Graph(g *unit.Graph, opts ...NodeOption) *Builder {
	if g == nil {
		return b.nilUnit(unit.KindGraph)
	}
	return b.add(g, opts)
}

// nilUnit records a nil unit, usually left behind by a failed Configured.
func (b *Builder) nilUnit(kind unit.Kind) *Builder {
	b.errs = append(b.errs, fmt.Errorf("job %q: nil %s unit", b.name, kind))
	return b
}

func (b *Builder) add(u unit.Unit, opts []NodeOption) *Builder {
	m := memberSpec{alias: u.Name(), unit: u}
	for _, opt := range opts {
		opt(&m)
	}
	b.members = append(b.members, m)
	return b
}

// Resource adds a resource that ops can reference with Uses.
func (b *Builder) Resource(r *unit.Resource) *Builder {
	if r == nil {
		return b.nilUnit(unit.KindResource)
	}
	b.resources = append(b.resources, r)
	return b
}

// Logger adds a logger. Records of a run are written to every logger.
func (b *Builder) Logger(l *unit.Logger) *Builder {
	if l == nil {
		return b.nilUnit(unit.KindLogger)
	}
	b.loggers = append(b.loggers, l)
	return b
}

// Executor sets the executor. Jobs without one use InProcess.
func (b *Builder) Executor(e *unit.Executor) *Builder {
	if e == nil {
		return b.nilUnit(unit.KindExecutor)
	}
	if b.executor != nil {
		b.errs = append(b.errs, fmt.Errorf("job %q: executor already set to %q", b.name, b.executor.Name()))
		return b
	}
	b.executor = e
	return b
}

// Build validates the collected units and returns the job. Name collisions
// are returned as *namespace.NameCollisionError without modification.
func (b *Builder) Build() (*Job, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	j := &Job{
		name:      b.name,
		graph:     dag.New(),
		ops:       map[string]*opNode{},
		graphs:    map[string]*graphNode{},
		resources: map[string]*unit.Resource{},
		loggers:   append([]*unit.Logger(nil), b.loggers...),
		executor:  b.executor,
	}

	resourceNS := namespace.New(fmt.Sprintf("job %q resources", b.name))
	for _, r := range b.resources {
		if err := resourceNS.Claim(r.Name(), string(r.Kind())); err != nil {
			return nil, err
		}
		j.resources[r.Name()] = r
		j.resourceOrder = append(j.resourceOrder, r.Name())
		j.graph.AddNode(resourceNodeID(r.Name()))
	}

	loggerNS := namespace.New(fmt.Sprintf("job %q loggers", b.name))
	for _, l := range b.loggers {
		if err := loggerNS.Claim(l.Name(), string(l.Kind())); err != nil {
			return nil, err
		}
	}

	top, err := j.addScope(namespace.New(fmt.Sprintf("job %q", b.name)), "", nil, b.members)
	if err != nil {
		return nil, err
	}
	j.top = top

	ids := make([]string, 0, len(j.ops))
	for id := range j.ops {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		n := j.ops[id]
		keys := make([]string, 0, len(n.uses))
		for key := range n.uses {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			res := n.uses[key]
			if _, ok := j.resources[res]; !ok {
				return nil, fmt.Errorf("job %q: op %s uses unknown resource %q as %q", b.name, id, res, key)
			}
			if err := j.graph.AddEdge(resourceNodeID(res), id); err != nil {
				return nil, err
			}
		}
	}

	if err := j.graph.DetectCycles(); err != nil {
		return nil, fmt.Errorf("job %q: %w", b.name, err)
	}
	return j, nil
}

// addScope places sibling members under prefix and wires their
// dependencies. It returns the scope entries keyed by alias.
func (j *Job) addScope(ns *namespace.Namespace, prefix string, parent *graphNode, members []memberSpec) (map[string]scopeEntry, error) {
	entries := make(map[string]scopeEntry, len(members))

	for _, m := range members {
		if m.alias == "" {
			return nil, fmt.Errorf("%s: member without a name", scopeName(prefix))
		}
		if strings.Contains(m.alias, ".") {
			return nil, fmt.Errorf("%s: member name %q must not contain '.'", scopeName(prefix), m.alias)
		}
		if isNilUnit(m.unit) {
			return nil, fmt.Errorf("%s: member %q has no unit", scopeName(prefix), m.alias)
		}
		if err := ns.Claim(m.alias, string(m.unit.Kind())); err != nil {
			return nil, err
		}
		id := joinID(prefix, m.alias)

		switch u := m.unit.(type) {
		case *unit.Op:
			uses := make(map[string]string, len(m.uses))
			for k, v := range m.uses {
				uses[k] = v
			}
			j.ops[id] = &opNode{id: id, alias: m.alias, op: u, parent: parent, inputs: map[string]string{}, uses: uses}
			j.graph.AddNode(id)
			entries[m.alias] = scopeEntry{ops: []string{id}, output: id}

		case *unit.Graph:
			gn := &graphNode{id: id, alias: m.alias, graph: u, parent: parent}
			j.graphs[id] = gn
			j.graphOrder = append(j.graphOrder, id)

			inner, err := j.addScope(namespace.New(fmt.Sprintf("graph %q", id)), id, gn, graphMembers(u))
			if err != nil {
				return nil, err
			}

			var entry scopeEntry
			for _, member := range u.Members() {
				entry.ops = append(entry.ops, inner[member.Alias].ops...)
			}
			if out := u.Output(); out != "" {
				e, ok := inner[out]
				if !ok {
					return nil, fmt.Errorf("graph %s: output %q is not a member", id, out)
				}
				entry.output = e.output
			}
			// Resources handed to the graph reach every member op that did
			// not ask for something else under the same key.
			for _, opID := range entry.ops {
				for key, res := range m.uses {
					if _, set := j.ops[opID].uses[key]; !set {
						j.ops[opID].uses[key] = res
					}
				}
			}
			entries[m.alias] = entry

		default:
			return nil, fmt.Errorf("%s: %s units cannot be graph members", id, m.unit.Kind())
		}
	}

	for _, m := range members {
		self := entries[m.alias]
		for _, dep := range m.after {
			if dep == m.alias {
				return nil, fmt.Errorf("%s cannot depend on itself", joinID(prefix, m.alias))
			}
			target, ok := entries[dep]
			if !ok {
				return nil, fmt.Errorf("%s depends on unknown node %q", joinID(prefix, m.alias), dep)
			}
			for _, opID := range self.ops {
				for _, depID := range target.ops {
					if err := j.graph.AddEdge(depID, opID); err != nil {
						return nil, err
					}
				}
				if target.output != "" {
					j.ops[opID].inputs[dep] = target.output
				}
			}
		}
	}

	return entries, nil
}

func graphMembers(g *unit.Graph) []memberSpec {
	members := g.Members()
	specs := make([]memberSpec, 0, len(members))
	for _, m := range members {
		specs = append(specs, memberSpec{alias: m.Alias, unit: m.Unit, after: m.After, uses: m.Uses})
	}
	return specs
}

// isNilUnit also reports typed nil pointers stored in the interface.
func isNilUnit(u unit.Unit) bool {
	switch v := u.(type) {
	case nil:
		return true
	case *unit.Op:
		return v == nil
	case *unit.Graph:
		return v == nil
	}
	return false
}

func joinID(prefix, alias string) string {
	if prefix == "" {
		return alias
	}
	return prefix + "." + alias
}

func scopeName(prefix string) string {
	if prefix == "" {
		return "job"
	}
	return "graph " + prefix
}

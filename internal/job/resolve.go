package job

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/specialistvlad/gridbind/internal/binding"
	"github.com/specialistvlad/gridbind/internal/ctxlog"
	"github.com/specialistvlad/gridbind/internal/runconfig"
	"github.com/specialistvlad/gridbind/internal/schema"
	"github.com/specialistvlad/gridbind/internal/unit"
	"github.com/zclconf/go-cty/cty"
)

// resolveConfig resolves the raw configuration of u and normalizes the
// result against the schema of its base unit, so behavior always sees
// defaults filled in.
func resolveConfig(ctx context.Context, u unit.Unit, raw cty.Value) (cty.Value, error) {
	cfg, err := binding.Resolve(ctx, u, raw)
	if err != nil {
		return cty.NilVal, err
	}
	if u.Binding() == nil {
		return cfg, nil
	}
	return schema.Validate(binding.Base(u).ConfigSchema(), cfg)
}

// plan holds the raw configuration of one run.
type plan struct {
	rc *runconfig.Config
	// mapped holds member configurations derived by graph mappings, keyed by
	// graph ID and member alias.
	mapped map[string]map[string]cty.Value
}

func newPlan(rc *runconfig.Config) *plan {
	return &plan{rc: rc, mapped: map[string]map[string]cty.Value{}}
}

// rawFor returns the raw configuration of a member. Members of a mapped
// graph take it from the mapping; members nested deeper under a mapped graph
// get none; everything else reads the run configuration by node ID.
func (p *plan) rawFor(parent *graphNode, alias string, section runconfig.Section, id string) cty.Value {
	if parent != nil && parent.graph.HasMapping() {
		if v, ok := p.mapped[parent.id][alias]; ok {
			return v
		}
		return cty.NilVal
	}
	if controlled(parent) {
		return cty.NilVal
	}
	return p.rc.Lookup(section, id)
}

func (p *plan) opRaw(n *opNode) cty.Value {
	return p.rawFor(n.parent, n.alias, runconfig.SectionOps, n.id)
}

func (p *plan) graphRaw(g *graphNode) cty.Value {
	return p.rawFor(g.parent, g.alias, runconfig.SectionGraphs, g.id)
}

// controlled reports whether g or one of its ancestors derives member
// configuration from a mapping.
func controlled(g *graphNode) bool {
	for ; g != nil; g = g.parent {
		if g.graph.HasMapping() {
			return true
		}
	}
	return false
}

// checkUnknownKeys rejects run configuration entries that no node of the
// job reads.
func (j *Job) checkUnknownKeys(rc *runconfig.Config) error {
	var errs []error
	unknown := func(section runconfig.Section, name, reason string) {
		errs = append(errs, fmt.Errorf("run configuration: %s entry %q %s", section, name, reason))
	}

	for _, name := range rc.Names(runconfig.SectionOps) {
		n, ok := j.ops[name]
		switch {
		case !ok:
			unknown(runconfig.SectionOps, name, "does not match any op of the job")
		case controlled(n.parent):
			unknown(runconfig.SectionOps, name, "is configured by its graph")
		}
	}
	for _, name := range rc.Names(runconfig.SectionGraphs) {
		g, ok := j.graphs[name]
		switch {
		case !ok:
			unknown(runconfig.SectionGraphs, name, "does not match any graph of the job")
		case controlled(g.parent):
			unknown(runconfig.SectionGraphs, name, "is configured by its parent graph")
		}
	}
	for _, name := range rc.Names(runconfig.SectionResources) {
		if _, ok := j.resources[name]; !ok {
			unknown(runconfig.SectionResources, name, "does not match any resource of the job")
		}
	}
	loggers := make(map[string]bool, len(j.loggers))
	for _, l := range j.loggers {
		loggers[l.Name()] = true
	}
	for _, name := range rc.Names(runconfig.SectionLoggers) {
		if !loggers[name] {
			unknown(runconfig.SectionLoggers, name, "does not match any logger of the job")
		}
	}
	return errors.Join(errs...)
}

// mapGraphs resolves the configuration of every graph, parents first, and
// applies the mappings of those that have one.
func (j *Job) mapGraphs(ctx context.Context, p *plan) error {
	for _, id := range j.graphOrder {
		g := j.graphs[id]
		cfg, err := resolveConfig(ctx, g.graph, p.graphRaw(g))
		if err != nil {
			return fmt.Errorf("graph %s: %w", id, err)
		}
		if !g.graph.HasMapping() {
			continue
		}

		ctxlog.FromContext(ctx).Debug("Mapping graph configuration", "graph", id)
		members, err := g.graph.MapConfig(cfg)
		if err != nil {
			return fmt.Errorf("graph %s: config mapping failed: %w", id, err)
		}
		aliases := make(map[string]bool)
		for _, m := range g.graph.Members() {
			aliases[m.Alias] = true
		}
		names := make([]string, 0, len(members))
		for name := range members {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if !aliases[name] {
				return fmt.Errorf("graph %s: config mapping returned unknown member %q", id, name)
			}
		}
		p.mapped[id] = members
	}
	return nil
}

// validateOuter checks the raw configuration of every op and resource
// against its outer schema, so bad input fails before anything executes.
func (j *Job) validateOuter(p *plan) error {
	var errs []error
	for _, id := range j.Ops() {
		n := j.ops[id]
		if _, err := schema.Validate(n.op.ConfigSchema(), p.opRaw(n)); err != nil {
			errs = append(errs, &binding.ResolutionError{Kind: n.op.Kind(), Unit: id, Phase: binding.PhaseOuter, Err: err})
		}
	}
	for _, name := range j.resourceOrder {
		r := j.resources[name]
		if _, err := schema.Validate(r.ConfigSchema(), p.rc.Lookup(runconfig.SectionResources, name)); err != nil {
			errs = append(errs, &binding.ResolutionError{Kind: r.Kind(), Unit: name, Phase: binding.PhaseOuter, Err: err})
		}
	}
	return errors.Join(errs...)
}

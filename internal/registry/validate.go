package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/gridbind/internal/ctxlog"
	"github.com/specialistvlad/gridbind/internal/schema"
	"github.com/specialistvlad/gridbind/internal/unit"
	"github.com/zclconf/go-cty/cty"
)

var kinds = []unit.Kind{unit.KindOp, unit.KindResource, unit.KindGraph, unit.KindExecutor, unit.KindLogger}

// Validate checks every registered schema for well-formedness and performs a
// strict parity check between the loaded manifests and the Go units.
func (r *Registry) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs []string
	described := make(map[string]bool)
	for _, kind := range kinds {
		names := make([]string, 0, len(r.units[kind]))
		for name := range r.units[kind] {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			u := r.units[kind][name]
			m, ok := r.manifests[name]
			if ok {
				described[name] = true
			}
			if err := schema.Check(u.ConfigSchema()); err != nil {
				errs = append(errs, fmt.Sprintf("%s '%s': %v", kind, name, indent(err)))
				continue
			}
			if !ok {
				continue
			}

			want, got := m.schema.Type(), u.ConfigSchema().Type()
			if want.Equals(cty.DynamicPseudoType) {
				logger.Warn("Manifest declares 'type = any', which disables static type checking. Consider using a specific type.", "kind", kind, "unit", name)
				continue
			}
			if !want.Equals(got) {
				errs = append(errs, fmt.Sprintf("%s '%s': type mismatch. Manifest %s requires '%s' but the unit declares '%s'",
					kind, name, m.path, m.schema, u.ConfigSchema()))
			}
		}
	}

	manifestNames := make([]string, 0, len(r.manifests))
	for name := range r.manifests {
		manifestNames = append(manifestNames, name)
	}
	sort.Strings(manifestNames)
	for _, name := range manifestNames {
		if !described[name] {
			errs = append(errs, fmt.Sprintf("manifest %s describes '%s', which is not registered", r.manifests[name].path, name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func indent(err error) string {
	return strings.ReplaceAll(err.Error(), "\n", "; ")
}

package binding

import (
	"context"

	"github.com/specialistvlad/gridbind/internal/ctxlog"
	"github.com/specialistvlad/gridbind/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// Resolve produces the configuration the base unit of u runs with, given the
// raw outer value supplied for u.
//
// raw is validated against u's own schema first. Each layer then derives the
// value for the unit beneath it: a direct layer substitutes its literal, a
// mapped layer invokes its transform and validates the output against the
// inner schema. A failing transform stops resolution before inner
// validation. A direct literal reaching the base unit is returned verbatim.
//
// Resolve keeps no state between calls and is safe for concurrent use.
func Resolve(ctx context.Context, u Configurable, raw cty.Value) (cty.Value, error) {
	logger := ctxlog.ForUnit(ctx, string(u.Kind()), u.Name())

	logger.Debug("Validating outer configuration")
	val, err := schema.Validate(u.ConfigSchema(), raw)
	if err != nil {
		return cty.NilVal, &ResolutionError{Kind: u.Kind(), Unit: u.Name(), Phase: PhaseOuter, Err: err}
	}

	cur := u
	for layer := cur.Binding(); layer != nil; layer = cur.Binding() {
		inner := layer.inner

		if layer.IsDirect() {
			if inner.Binding() == nil {
				val = layer.literal
			} else {
				val = layer.normalized
			}
			cur = inner
			continue
		}

		logger.Debug("Invoking config transform", "layer", cur.Name())
		out, err := layer.transform(val)
		if err != nil {
			logger.Debug("Config transform failed", "layer", cur.Name(), "error", err)
			return cty.NilVal, &TransformError{Kind: cur.Kind(), Unit: cur.Name(), Err: err}
		}

		logger.Debug("Validating inner configuration", "layer", cur.Name(), "inner", inner.Name())
		val, err = schema.Validate(inner.ConfigSchema(), out)
		if err != nil {
			return cty.NilVal, &ResolutionError{Kind: cur.Kind(), Unit: cur.Name(), Phase: PhaseInner, Err: err}
		}
		cur = inner
	}
	return val, nil
}

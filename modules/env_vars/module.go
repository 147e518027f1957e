// Package env_vars provides an op that exposes the process environment.
package env_vars

import (
	"context"
	"os"
	"strings"

	"github.com/specialistvlad/gridbind/internal/ctyconv"
	"github.com/specialistvlad/gridbind/internal/registry"
	"github.com/specialistvlad/gridbind/internal/schema"
	"github.com/specialistvlad/gridbind/internal/unit"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the env_vars op.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Op())
}

// Config selects the variables to expose.
type Config struct {
	Prefix      string `cty:"prefix"`
	StripPrefix bool   `cty:"strip_prefix"`
}

// Output defines the data structure returned by the op.
type Output struct {
	All map[string]string `cty:"all"`
}

var outputType = cty.Object(map[string]cty.Type{"all": cty.Map(cty.String)})

// Op returns the env_vars op.
func Op() *unit.Op {
	s := schema.New(schema.Object(map[string]*schema.Field{
		"prefix":       schema.String().WithDefault(cty.StringVal("")).Describe("Only variables starting with prefix are returned."),
		"strip_prefix": schema.Bool().WithDefault(cty.False),
	}))
	return unit.NewOp("env_vars", onRun, unit.WithSchema(s))
}

func onRun(_ context.Context, oc *unit.OpContext) (cty.Value, error) {
	var cfg Config
	if err := ctyconv.Decode(oc.Config, &cfg); err != nil {
		return cty.NilVal, err
	}

	envMap := make(map[string]string)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) != 2 || !strings.HasPrefix(pair[0], cfg.Prefix) {
			continue
		}
		key := pair[0]
		if cfg.StripPrefix {
			key = strings.TrimPrefix(key, cfg.Prefix)
		}
		envMap[key] = pair[1]
	}

	return ctyconv.Encode(Output{All: envMap}, outputType)
}

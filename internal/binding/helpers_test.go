package binding

import (
	"math"

	"github.com/specialistvlad/gridbind/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// testUnit is a minimal Configurable used to exercise binding without any
// concrete unit kind.
type testUnit struct {
	name   string
	kind   Kind
	schema schema.Schema
	layer  *Layer
}

func newTestUnit(name string, s schema.Schema) *testUnit {
	return &testUnit{name: name, kind: "op", schema: s}
}

func (u *testUnit) Name() string                { return u.name }
func (u *testUnit) Kind() Kind                  { return u.kind }
func (u *testUnit) ConfigSchema() schema.Schema { return u.schema }
func (u *testUnit) Binding() *Layer             { return u.layer }

func (u *testUnit) WithConfigSchema(c Contract) Configurable {
	cp := *u
	cp.name = c.Name
	cp.schema = c.Schema
	cp.layer = c.Layer
	return &cp
}

func s3SessionUnit() *testUnit {
	return newTestUnit("s3_session", schema.New(schema.Object(map[string]*schema.Field{
		"region":               schema.String(),
		"use_unsigned_session": schema.Bool(),
	})))
}

func exampleUnit() *testUnit {
	return newTestUnit("example", schema.New(schema.Object(map[string]*schema.Field{
		"iterations": schema.Int(),
		"word":       schema.String().WithDefault(cty.StringVal("hello")),
	})))
}

func exampleConfig(outer cty.Value) (cty.Value, error) {
	return cty.ObjectVal(map[string]cty.Value{
		"iterations": outer,
		"word":       cty.StringVal("wheaties"),
	}), nil
}

type iterationsIn struct {
	N int `cty:"n"`
}

func doubleIterations(in iterationsIn) (map[string]any, error) {
	return map[string]any{"iterations": in.N * 2, "word": "twice"}, nil
}

func unboundedIterations(in iterationsIn) (map[string]any, error) {
	return map[string]any{"iterations": math.Inf(in.N)}, nil
}

type prefixer struct{ prefix string }

func (p *prefixer) regionFor(outer cty.Value) (cty.Value, error) {
	return cty.ObjectVal(map[string]cty.Value{
		"region":               cty.StringVal(p.prefix + outer.AsString()),
		"use_unsigned_session": cty.False,
	}), nil
}

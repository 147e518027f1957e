package unit

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/specialistvlad/gridbind/internal/binding"
	"github.com/specialistvlad/gridbind/internal/dag"
	"github.com/specialistvlad/gridbind/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

var regionSchema = schema.New(schema.Object(map[string]*schema.Field{
	"region": schema.String(),
}))

func echoConfig(ctx context.Context, oc *OpContext) (cty.Value, error) {
	return oc.Config, nil
}

func TestConfiguredKeepsKindAndBehavior(t *testing.T) {
	ctx := context.Background()
	literal := map[string]any{"region": "eu-west-1"}

	t.Run("op", func(t *testing.T) {
		op := NewOp("echo", echoConfig, WithSchema(regionSchema), WithDescription("Echoes its config"))
		bound, err := op.Configured(literal, binding.WithName("eu_echo"))
		require.NoError(t, err)

		assert.Equal(t, KindOp, bound.Kind())
		assert.Equal(t, "eu_echo", bound.Name())
		assert.Equal(t, "Echoes its config", bound.Description())
		assert.True(t, bound.ConfigSchema().IsEmpty())

		cfg, err := binding.Resolve(ctx, bound, cty.NilVal)
		require.NoError(t, err)
		out, err := bound.Invoke(ctx, &OpContext{Config: cfg})
		require.NoError(t, err)
		assert.Equal(t, "eu-west-1", out.GetAttr("region").AsString())

		assert.Equal(t, "echo", op.Name(), "the original op is unchanged")
		assert.Nil(t, op.Binding())
	})

	t.Run("resource", func(t *testing.T) {
		res := NewResource("session", nil, nil, WithSchema(regionSchema))
		bound, err := res.Configured(literal, binding.WithName("eu_session"))
		require.NoError(t, err)
		assert.Equal(t, KindResource, bound.Kind())

		inst, err := bound.Create(ctx, &ResourceContext{Config: cty.StringVal("x")})
		require.NoError(t, err)
		assert.Equal(t, cty.StringVal("x"), inst)
	})

	t.Run("graph", func(t *testing.T) {
		g := NewGraph("pipeline", GraphSpec{
			Members: []Member{{Alias: "echo", Unit: NewOp("echo", echoConfig)}},
			Output:  "echo",
		}, WithSchema(regionSchema))
		bound, err := g.Configured(literal, binding.WithName("eu_pipeline"))
		require.NoError(t, err)
		assert.Equal(t, KindGraph, bound.Kind())
		assert.Equal(t, "echo", bound.Output())
		require.Len(t, bound.Members(), 1)
	})

	t.Run("executor", func(t *testing.T) {
		exec := NewExecutor("serial", func(ctx context.Context, cfg cty.Value) (dag.Runner, error) {
			return dag.NewPool(2), nil
		}, WithSchema(regionSchema))
		bound, err := exec.Configured(literal, binding.WithName("eu_serial"))
		require.NoError(t, err)
		assert.Equal(t, KindExecutor, bound.Kind())

		runner, err := bound.Runner(ctx, cty.NilVal)
		require.NoError(t, err)
		assert.Equal(t, 2, runner.(*dag.Pool).Workers())
	})

	t.Run("logger", func(t *testing.T) {
		logger := NewLogger("discard", func(ctx context.Context, cfg cty.Value) (slog.Handler, error) {
			return slog.DiscardHandler, nil
		}, WithSchema(regionSchema))
		bound, err := logger.Configured(literal, binding.WithName("eu_discard"))
		require.NoError(t, err)
		assert.Equal(t, KindLogger, bound.Kind())

		h, err := bound.Handler(ctx, cty.NilVal)
		require.NoError(t, err)
		assert.NotNil(t, h)
	})
}

func TestMappedDescriptionOverridesUnitDescription(t *testing.T) {
	op := NewOp("echo", echoConfig, WithSchema(regionSchema), WithDescription("original"))
	bound, err := binding.For(op, schema.New(schema.String()), binding.WithName("by_region"), binding.WithDescription("Region only")).
		Func(func(outer cty.Value) (cty.Value, error) {
			return cty.ObjectVal(map[string]cty.Value{"region": outer}), nil
		})
	require.NoError(t, err)
	assert.Equal(t, "Region only", bound.Description())
	assert.Equal(t, "Region only", bound.ConfigSchema().Description())
}

func TestDefaults(t *testing.T) {
	ctx := context.Background()

	out, err := NewOp("noop", nil).Invoke(ctx, &OpContext{})
	require.NoError(t, err)
	assert.True(t, out.IsNull())

	runner, err := NewExecutor("default", nil).Runner(ctx, cty.NilVal)
	require.NoError(t, err)
	assert.Equal(t, 1, runner.(*dag.Pool).Workers())

	h, err := NewLogger("inherit", nil).Handler(ctx, cty.NilVal)
	require.NoError(t, err)
	assert.Nil(t, h)
}

type closer struct{ closed bool }

func (c *closer) Close() error {
	c.closed = true
	return nil
}

func TestResourceDestroy(t *testing.T) {
	ctx := context.Background()

	c := &closer{}
	require.NoError(t, NewResource("r", nil, nil).Destroy(ctx, c))
	assert.True(t, c.closed)

	errClose := errors.New("close failed")
	res := NewResource("r", nil, func(ctx context.Context, instance any) error { return errClose })
	assert.ErrorIs(t, res.Destroy(ctx, c), errClose)
}

func TestOpContextResources(t *testing.T) {
	oc := &OpContext{Node: "upload", Resources: map[string]any{"session": &closer{}}}

	inst, err := ResourceAs[*closer](oc, "session")
	require.NoError(t, err)
	assert.NotNil(t, inst)

	_, err = ResourceAs[string](oc, "session")
	assert.ErrorContains(t, err, `resource "session" is a *unit.closer, want string`)

	_, err = oc.Resource("missing")
	assert.ErrorContains(t, err, `op upload: no resource bound under "missing"`)
}

func TestGraphMapping(t *testing.T) {
	g := NewGraph("plain", GraphSpec{})
	assert.False(t, g.HasMapping())
	got, err := g.MapConfig(cty.NilVal)
	require.NoError(t, err)
	assert.Nil(t, got)

	members := []Member{{Alias: "a"}}
	mapped := NewGraph("mapped", GraphSpec{
		Members: members,
		Mapping: func(cfg cty.Value) (map[string]cty.Value, error) {
			return map[string]cty.Value{"a": cfg}, nil
		},
	})
	members[0].Alias = "changed"
	assert.Equal(t, "a", mapped.Members()[0].Alias)

	got, err = mapped.MapConfig(cty.True)
	require.NoError(t, err)
	assert.Equal(t, cty.True, got["a"])
}

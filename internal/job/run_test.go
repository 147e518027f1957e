package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/gridbind/internal/binding"
	"github.com/specialistvlad/gridbind/internal/runconfig"
	"github.com/specialistvlad/gridbind/internal/schema"
	"github.com/specialistvlad/gridbind/internal/testutil"
	"github.com/specialistvlad/gridbind/internal/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func exampleSchema() schema.Schema {
	return schema.New(schema.Object(map[string]*schema.Field{
		"iterations": schema.Int(),
		"word":       schema.String().WithDefault(cty.StringVal("hello")),
	}))
}

func requireAttr(t *testing.T, v cty.Value, name string, want cty.Value) {
	t.Helper()
	require.True(t, v.Type().IsObjectType() && v.Type().HasAttribute(name), "value %#v has no attribute %q", v, name)
	got := v.GetAttr(name)
	require.True(t, got.RawEquals(want), "attribute %q: want %#v, got %#v", name, want, got)
}

func TestRun_PassesOutputsAlongEdges(t *testing.T) {
	ctx, _ := testutil.CaptureLogs(t)
	rec := testutil.NewRecorder()

	produce := rec.Op("produce", 0, func(context.Context, *unit.OpContext) (cty.Value, error) {
		return cty.StringVal("payload"), nil
	})
	consume := rec.Op("consume", 0, func(_ context.Context, oc *unit.OpContext) (cty.Value, error) {
		return oc.Inputs["produce"], nil
	})

	j, err := NewBuilder("pipe").Op(produce).Op(consume, After("produce")).Build()
	require.NoError(t, err)

	res, err := j.Run(ctx, nil, WithRunID("run-1"))
	require.NoError(t, err)
	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, []string{"produce", "consume"}, rec.Order())

	out, ok := res.Output("consume")
	require.True(t, ok)
	assert.Equal(t, "payload", out.AsString())
	assert.Equal(t, []string{"consume", "produce"}, res.Nodes())
}

func TestRun_GeneratesRunID(t *testing.T) {
	j, err := NewBuilder("pipe").Op(noop("a")).Build()
	require.NoError(t, err)

	first, err := j.Run(context.Background(), nil)
	require.NoError(t, err)
	second, err := j.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.NotEmpty(t, first.RunID)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestRun_DirectBindingIsNormalizedForBehavior(t *testing.T) {
	rec := testutil.NewRecorder()
	base := rec.Op("example", 0, nil, unit.WithSchema(exampleSchema()))

	bound, err := base.Configured(map[string]any{"iterations": 3}, binding.WithName("three"))
	require.NoError(t, err)

	j, err := NewBuilder("direct").Op(bound).Build()
	require.NoError(t, err)

	_, err = j.Run(context.Background(), nil)
	require.NoError(t, err)

	call, ok := rec.Call("three")
	require.True(t, ok)
	requireAttr(t, call.Config, "iterations", cty.NumberIntVal(3))
	requireAttr(t, call.Config, "word", cty.StringVal("hello"))
}

func TestRun_MappedBindingResolvesPerRun(t *testing.T) {
	rec := testutil.NewRecorder()
	base := rec.Op("example", 0, nil, unit.WithSchema(exampleSchema()))

	var calls atomic.Int32
	bound, err := binding.For(base, schema.New(schema.Int()), binding.WithName("wheaties")).
		Func(func(n cty.Value) (cty.Value, error) {
			calls.Add(1)
			return cty.ObjectVal(map[string]cty.Value{
				"iterations": n,
				"word":       cty.StringVal("wheaties"),
			}), nil
		})
	require.NoError(t, err)

	j, err := NewBuilder("mapped").Op(bound).Build()
	require.NoError(t, err)

	rc := runconfig.New()
	rc.Ops["wheaties"] = cty.NumberIntVal(6)

	for i := 1; i <= 2; i++ {
		_, err = j.Run(context.Background(), rc)
		require.NoError(t, err)
		assert.Equal(t, int32(i), calls.Load())
	}

	call, ok := rec.Call("wheaties")
	require.True(t, ok)
	requireAttr(t, call.Config, "iterations", cty.NumberIntVal(6))
	requireAttr(t, call.Config, "word", cty.StringVal("wheaties"))
}

func TestRun_OuterValidationFailsBeforeExecution(t *testing.T) {
	rec := testutil.NewRecorder()
	first := rec.Op("first", 0, nil)
	second := rec.Op("second", 0, nil, unit.WithSchema(exampleSchema()))

	j, err := NewBuilder("strict").Op(first).Op(second, After("first")).Build()
	require.NoError(t, err)

	rc := runconfig.New()
	rc.Ops["second"] = cty.ObjectVal(map[string]cty.Value{"iterations": cty.StringVal("many")})

	_, err = j.Run(context.Background(), rc)
	var resErr *binding.ResolutionError
	require.True(t, errors.As(err, &resErr), "got %v", err)
	assert.Equal(t, binding.PhaseOuter, resErr.Phase)
	assert.Equal(t, "second", resErr.Unit)

	var problems schema.ValidationErrors
	require.True(t, errors.As(err, &problems))
	assert.Equal(t, "iterations", problems[0].Field())

	assert.Empty(t, rec.Order(), "nothing may run when configuration is invalid")
}

func TestRun_UnknownRunConfigKeys(t *testing.T) {
	j, err := NewBuilder("etl").
		Graph(unit.NewGraph("mapped", unit.GraphSpec{
			Members: []unit.Member{{Alias: "x", Unit: noop("x")}},
			Mapping: func(cty.Value) (map[string]cty.Value, error) { return nil, nil },
		})).
		Op(noop("a")).
		Build()
	require.NoError(t, err)

	rc := runconfig.New()
	rc.Ops["nope"] = cty.EmptyObjectVal
	rc.Ops["mapped.x"] = cty.EmptyObjectVal
	rc.Resources["db"] = cty.EmptyObjectVal
	rc.Loggers["console"] = cty.EmptyObjectVal

	_, err = j.Run(context.Background(), rc)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `ops entry "nope" does not match any op of the job`)
	assert.Contains(t, msg, `ops entry "mapped.x" is configured by its graph`)
	assert.Contains(t, msg, `resources entry "db" does not match any resource of the job`)
	assert.Contains(t, msg, `loggers entry "console" does not match any logger of the job`)
}

func TestRun_FailingTransformStopsDependents(t *testing.T) {
	rec := testutil.NewRecorder()
	base := rec.Op("example", 0, nil, unit.WithSchema(exampleSchema()))

	boom := errors.New("boom")
	bound, err := binding.For(base, schema.Empty(), binding.WithName("broken")).
		Func(func(cty.Value) (cty.Value, error) { return cty.NilVal, boom })
	require.NoError(t, err)

	j, err := NewBuilder("etl").Op(bound).Op(rec.Op("after", 0, nil), After("broken")).Build()
	require.NoError(t, err)

	_, err = j.Run(context.Background(), nil)
	var transformErr *binding.TransformError
	require.True(t, errors.As(err, &transformErr), "got %v", err)
	assert.Equal(t, "broken", transformErr.Unit)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, rec.Order())
}

func TestRun_ResourceLifecycle(t *testing.T) {
	lc := &testutil.Lifecycle{}
	db := lc.Resource("db", unit.WithSchema(schema.New(schema.Object(map[string]*schema.Field{
		"dsn": schema.String(),
	}))))
	cache := lc.Resource("cache")

	var seen cty.Value
	use := unit.NewOp("use", func(_ context.Context, oc *unit.OpContext) (cty.Value, error) {
		inst, err := unit.ResourceAs[cty.Value](oc, "conn")
		if err != nil {
			return cty.NilVal, err
		}
		seen = inst
		return cty.NilVal, nil
	})

	j, err := NewBuilder("etl").
		Resource(db).
		Resource(cache).
		Op(use, Uses("conn", "db"), Uses("cache", "cache")).
		Build()
	require.NoError(t, err)

	rc := runconfig.New()
	rc.Resources["db"] = cty.ObjectVal(map[string]cty.Value{"dsn": cty.StringVal("postgres://")})

	res, err := j.Run(context.Background(), rc)
	require.NoError(t, err)
	requireAttr(t, seen, "dsn", cty.StringVal("postgres://"))

	out, ok := res.Output("use")
	require.True(t, ok)
	assert.True(t, out.IsNull())

	events := lc.Events()
	require.Len(t, events, 4)
	created := events[:2]
	destroyed := events[2:]
	assert.ElementsMatch(t, []string{"create:db", "create:cache"}, created)
	want := []string{"destroy:" + created[1][len("create:"):], "destroy:" + created[0][len("create:"):]}
	if diff := cmp.Diff(want, destroyed); diff != "" {
		t.Errorf("resources must be destroyed in reverse creation order (-want +got):\n%s", diff)
	}
}

func TestRun_DestroysResourcesOnFailure(t *testing.T) {
	lc := &testutil.Lifecycle{}
	failing := unit.NewOp("fail", func(context.Context, *unit.OpContext) (cty.Value, error) {
		return cty.NilVal, errors.New("op failed")
	})

	j, err := NewBuilder("etl").Resource(lc.Resource("db")).Op(failing, Uses("db", "db")).Build()
	require.NoError(t, err)

	_, err = j.Run(context.Background(), nil)
	require.ErrorContains(t, err, "op fail: op failed")
	assert.Equal(t, []string{"create:db", "destroy:db"}, lc.Events())
}

func TestRun_GraphMapping(t *testing.T) {
	rec := testutil.NewRecorder()
	urlSchema := schema.New(schema.Object(map[string]*schema.Field{"url": schema.String()}))

	g := unit.NewGraph("ingest", unit.GraphSpec{
		Members: []unit.Member{
			{Alias: "fetch", Unit: rec.Op("fetch", 0, nil, unit.WithSchema(urlSchema))},
			{Alias: "parse", Unit: rec.Op("parse", 0, nil), After: []string{"fetch"}},
		},
		Output: "parse",
		Mapping: func(cfg cty.Value) (map[string]cty.Value, error) {
			host := cfg.GetAttr("host").AsString()
			return map[string]cty.Value{
				"fetch": cty.ObjectVal(map[string]cty.Value{"url": cty.StringVal(fmt.Sprintf("https://%s/data", host))}),
			}, nil
		},
	}, unit.WithSchema(schema.New(schema.Object(map[string]*schema.Field{"host": schema.String()}))))

	j, err := NewBuilder("etl").Graph(g, As("eu")).Build()
	require.NoError(t, err)

	rc := runconfig.New()
	rc.Graphs["eu"] = cty.ObjectVal(map[string]cty.Value{"host": cty.StringVal("eu.example.com")})

	res, err := j.Run(context.Background(), rc)
	require.NoError(t, err)

	call, ok := rec.Call("eu.fetch")
	require.True(t, ok)
	requireAttr(t, call.Config, "url", cty.StringVal("https://eu.example.com/data"))

	_, ok = res.Output("eu")
	assert.True(t, ok, "a graph's output is the output of its output member")
}

func TestRun_GraphMappingRejectsUnknownMembers(t *testing.T) {
	g := unit.NewGraph("g", unit.GraphSpec{
		Members: []unit.Member{{Alias: "x", Unit: noop("x")}},
		Mapping: func(cty.Value) (map[string]cty.Value, error) {
			return map[string]cty.Value{"y": cty.EmptyObjectVal}, nil
		},
	})
	j, err := NewBuilder("etl").Graph(g).Build()
	require.NoError(t, err)

	_, err = j.Run(context.Background(), nil)
	require.ErrorContains(t, err, `config mapping returned unknown member "y"`)
}

func TestRun_ConfiguredLoggersReceiveRecords(t *testing.T) {
	buf := &testutil.SafeBuffer{}
	capture := unit.NewLogger("capture", func(context.Context, cty.Value) (slog.Handler, error) {
		return slog.NewTextHandler(buf, nil), nil
	})

	j, err := NewBuilder("logged").Logger(capture).Op(noop("a")).Build()
	require.NoError(t, err)

	_, err = j.Run(context.Background(), nil, WithRunID("fixed"))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Starting job run")
	assert.Contains(t, out, "run_id=fixed")
	assert.Contains(t, out, "job=logged")
	assert.Contains(t, out, "op=a")
}

func TestRun_ExecutorConfiguration(t *testing.T) {
	t.Run("execution entry configures the default executor", func(t *testing.T) {
		j, err := NewBuilder("etl").Op(noop("a")).Build()
		require.NoError(t, err)

		rc := runconfig.New()
		rc.Execution = cty.ObjectVal(map[string]cty.Value{"max_concurrent": cty.NumberIntVal(0)})

		_, err = j.Run(context.Background(), rc)
		require.ErrorContains(t, err, "max_concurrent must be at least 1, got 0")
	})

	t.Run("bound executor", func(t *testing.T) {
		exec, err := InProcess().Configured(map[string]any{"max_concurrent": 2}, binding.WithName("pair"))
		require.NoError(t, err)

		j, err := NewBuilder("etl").Executor(exec).Op(noop("a")).Build()
		require.NoError(t, err)
		assert.Equal(t, "pair", j.Executor().Name())

		_, err = j.Run(context.Background(), nil)
		require.NoError(t, err)
	})
}

package env_vars

import (
	"context"
	"testing"

	"github.com/specialistvlad/gridbind/internal/job"
	"github.com/specialistvlad/gridbind/internal/runconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestEnvVars(t *testing.T) {
	t.Setenv("GRIDBIND_TEST_REGION", "eu-west-1")
	t.Setenv("GRIDBIND_TEST_BUCKET", "reports")

	j, err := job.NewBuilder("env").Op(Op()).Build()
	require.NoError(t, err)

	rc := runconfig.New()
	rc.Ops["env_vars"] = cty.ObjectVal(map[string]cty.Value{
		"prefix":       cty.StringVal("GRIDBIND_TEST_"),
		"strip_prefix": cty.True,
	})

	res, err := j.Run(context.Background(), rc)
	require.NoError(t, err)

	out, ok := res.Output("env_vars")
	require.True(t, ok)

	var got Output
	require.NoError(t, decode(out, &got))
	assert.Equal(t, map[string]string{"REGION": "eu-west-1", "BUCKET": "reports"}, got.All)
}

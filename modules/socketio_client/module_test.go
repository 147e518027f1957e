package socketio_client

import (
	"context"
	"testing"

	"github.com/specialistvlad/gridbind/internal/job"
	"github.com/specialistvlad/gridbind/internal/runconfig"
	"github.com/specialistvlad/gridbind/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestClient_Schema(t *testing.T) {
	s := Client().ConfigSchema()
	require.NoError(t, schema.Check(s))

	v, err := schema.Validate(s, cty.ObjectVal(map[string]cty.Value{"url": cty.StringVal("ws://localhost:3000/socket.io/")}))
	require.NoError(t, err)
	assert.Equal(t, "/", v.GetAttr("namespace").AsString())
	assert.False(t, v.GetAttr("insecure_skip_verify").True())
	assert.Equal(t, "15s", v.GetAttr("connect_timeout").AsString())

	_, err = schema.Validate(s, cty.EmptyObjectVal)
	require.ErrorContains(t, err, "missing required field at url")
}

func TestClient_CreateFailures(t *testing.T) {
	testCases := []struct {
		name    string
		config  map[string]cty.Value
		wantErr string
	}{
		{
			name:    "invalid URL",
			config:  map[string]cty.Value{"url": cty.StringVal("not a url")},
			wantErr: `failed to parse URL "not a url"`,
		},
		{
			name:    "invalid timeout",
			config:  map[string]cty.Value{"url": cty.StringVal("http://127.0.0.1:1"), "connect_timeout": cty.StringVal("later")},
			wantErr: "invalid connect_timeout",
		},
		{
			name:    "unreachable server",
			config:  map[string]cty.Value{"url": cty.StringVal("http://127.0.0.1:1/socket.io/"), "connect_timeout": cty.StringVal("300ms")},
			wantErr: "socket.io connection",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			j, err := job.NewBuilder("chat").Resource(Client()).Build()
			require.NoError(t, err)

			rc := runconfig.New()
			rc.Resources["socketio_client"] = cty.ObjectVal(tc.config)

			_, err = j.Run(context.Background(), rc)
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

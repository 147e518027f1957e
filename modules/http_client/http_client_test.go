package http_client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/specialistvlad/gridbind/internal/binding"
	"github.com/specialistvlad/gridbind/internal/job"
	"github.com/specialistvlad/gridbind/internal/runconfig"
	"github.com/specialistvlad/gridbind/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestHTTPRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Method", r.Method)
		w.Header().Set("X-Token", r.Header.Get("X-Token"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(append([]byte("echo:"), body...))
	}))
	defer server.Close()

	post, err := Request().Configured(map[string]any{
		"url":     server.URL + "/items",
		"method":  "post",
		"headers": map[string]any{"X-Token": "secret"},
		"body":    "payload",
	}, binding.WithName("create_item"))
	require.NoError(t, err)

	j, err := job.NewBuilder("api").
		Resource(Client()).
		Op(post, job.Uses(ClientKey, "http_client")).
		Build()
	require.NoError(t, err)

	ctx, _ := testutil.CaptureLogs(t)
	res, err := j.Run(ctx, nil)
	require.NoError(t, err)

	out, ok := res.Output("create_item")
	require.True(t, ok)

	var got response
	require.NoError(t, decodeResponse(out, &got))
	assert.Equal(t, http.StatusCreated, got.StatusCode)
	assert.Equal(t, "echo:payload", got.Body)
	assert.Equal(t, "POST", got.Headers["x-method"])
	assert.Equal(t, "secret", got.Headers["x-token"])
}

func TestHTTPRequest_URLFromRunConfig(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, r.URL.Path)
	}))
	defer server.Close()

	fetch, err := binding.For(Request(), mustStringSchema()).Func(fetchPath)
	require.NoError(t, err)
	assert.Equal(t, "fetchPath", fetch.Name())

	j, err := job.NewBuilder("api").
		Resource(Client()).
		Op(fetch, job.Uses(ClientKey, "http_client")).
		Build()
	require.NoError(t, err)

	rc := runconfig.New()
	rc.Ops["fetchPath"] = cty.StringVal(server.URL + "/health")
	rc.Resources["http_client"] = cty.ObjectVal(map[string]cty.Value{"timeout": cty.StringVal("5s")})

	res, err := j.Run(context.Background(), rc)
	require.NoError(t, err)

	out, _ := res.Output("fetchPath")
	assert.Equal(t, "/health", out.GetAttr("body").AsString())
}

func TestHTTPRequest_Errors(t *testing.T) {
	t.Run("missing client", func(t *testing.T) {
		op, err := Request().Configured(map[string]any{"url": "http://127.0.0.1:1"}, binding.WithName("lonely"))
		require.NoError(t, err)
		j, err := job.NewBuilder("api").Op(op).Build()
		require.NoError(t, err)

		_, err = j.Run(context.Background(), nil)
		require.ErrorContains(t, err, "http client dependency was not injected")
	})

	t.Run("invalid timeout", func(t *testing.T) {
		j, err := job.NewBuilder("api").Resource(Client()).Build()
		require.NoError(t, err)

		rc := runconfig.New()
		rc.Resources["http_client"] = cty.ObjectVal(map[string]cty.Value{"timeout": cty.StringVal("soon")})

		_, err = j.Run(context.Background(), rc)
		require.ErrorContains(t, err, "invalid timeout")
	})
}

package s3

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/gridbind/internal/binding"
	"github.com/specialistvlad/gridbind/internal/job"
	"github.com/specialistvlad/gridbind/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestSessionManifest(t *testing.T) {
	s := Session().ConfigSchema()
	require.NoError(t, schema.Check(s))
	assert.Equal(t, "Client session for S3-compatible object storage.", s.Description())
	assert.Equal(t, []string{"endpoint", "region", "timeout", "use_unsigned_session"}, s.Root().FieldNames())
}

func TestSession_DirectBindingRoundTrip(t *testing.T) {
	literal := cty.ObjectVal(map[string]cty.Value{
		"region":               cty.StringVal("us-east-1"),
		"use_unsigned_session": cty.False,
	})
	sess, err := Session().Configured(literal, binding.WithName("us_east"))
	require.NoError(t, err)

	got, err := binding.Resolve(context.Background(), sess, cty.NilVal)
	require.NoError(t, err)
	assert.True(t, got.RawEquals(literal), "got %#v", got)
}

type recordedPut struct {
	path        string
	contentType string
	body        string
}

func uploadServer(t *testing.T) (*httptest.Server, func() []recordedPut) {
	t.Helper()
	var mu sync.Mutex
	var puts []recordedPut
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		puts = append(puts, recordedPut{path: r.URL.Path, contentType: r.Header.Get("Content-Type"), body: string(body)})
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server, func() []recordedPut {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedPut(nil), puts...)
	}
}

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestUpload(t *testing.T) {
	server, puts := uploadServer(t)
	source := writeSource(t, "report.json", `{"ok":true}`)

	testCases := []struct {
		name     string
		session  map[string]any
		url      string
		wantPath string
		wantErr  string
	}{
		{
			name:     "anonymous session with endpoint",
			session:  map[string]any{"region": "eu-west-1", "use_unsigned_session": true, "endpoint": server.URL + "/bucket/"},
			url:      "reports/report.json",
			wantPath: "/bucket/reports/report.json",
		},
		{
			name:     "signed session with pre-signed URL",
			session:  map[string]any{"region": "eu-west-1", "use_unsigned_session": false},
			url:      server.URL + "/bucket/signed.json?X-Amz-Signature=abc",
			wantPath: "/bucket/signed.json",
		},
		{
			name:    "signed session without signature",
			session: map[string]any{"region": "eu-west-1", "use_unsigned_session": false},
			url:     server.URL + "/bucket/plain.json",
			wantErr: "signed session requires a pre-signed upload URL",
		},
		{
			name:    "relative URL without endpoint",
			session: map[string]any{"region": "eu-west-1", "use_unsigned_session": true},
			url:     "plain.json",
			wantErr: "is relative and the session has no endpoint",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sess, err := Session().Configured(tc.session, binding.WithName("storage"))
			require.NoError(t, err)
			up, err := Upload().Configured(map[string]any{"source_path": source, "upload_url": tc.url}, binding.WithName("publish"))
			require.NoError(t, err)

			j, err := job.NewBuilder("publish").
				Resource(sess).
				Op(up, job.Uses(SessionKey, "storage")).
				Build()
			require.NoError(t, err)

			before := len(puts())
			res, err := j.Run(context.Background(), nil)
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				assert.Len(t, puts(), before)
				return
			}
			require.NoError(t, err)

			out, ok := res.Output("publish")
			require.True(t, ok)
			assert.True(t, out.GetAttr("success").True())

			all := puts()
			require.Len(t, all, before+1)
			last := all[len(all)-1]
			assert.Equal(t, tc.wantPath, last.path)
			assert.Equal(t, "application/json", last.contentType)
			assert.Equal(t, `{"ok":true}`, last.body)
		})
	}
}

package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "verbose", want: slog.LevelInfo, wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseLevel(tc.in)
			if tc.wantErr {
				require.EqualError(t, err, `unknown log level "verbose"`)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewHandler(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewHandler(slog.LevelWarn, "json", &buf)
	require.NoError(t, err)
	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))

	slog.New(h).Warn("careful", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"careful"`)

	_, err = NewHandler(slog.LevelInfo, "xml", &buf)
	require.EqualError(t, err, `unknown log format "xml"`)
}

package app

import (
	"io"
	"log/slog"

	"github.com/specialistvlad/gridbind/internal/ctxlog"
)

// newLogger creates and configures a new slog.Logger instance. It does not
// set the global logger, allowing for isolated logger instances. Unknown
// levels fall back to info and unknown formats to text.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	level, _ := ctxlog.ParseLevel(levelStr)
	if formatStr != "json" {
		formatStr = "text"
	}
	handler, _ := ctxlog.NewHandler(level, formatStr, outW)
	return slog.New(handler)
}

// Package console provides a logger that writes to standard error.
package console

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/specialistvlad/gridbind/internal/ctxlog"
	"github.com/specialistvlad/gridbind/internal/ctyconv"
	"github.com/specialistvlad/gridbind/internal/registry"
	"github.com/specialistvlad/gridbind/internal/schema"
	"github.com/specialistvlad/gridbind/internal/unit"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives log records; os.Stderr when nil.
	Out io.Writer
}

// Register registers the console logger.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Logger(m.Out))
}

// Config is the configuration of the console logger.
type Config struct {
	Level  string `cty:"level"`
	Format string `cty:"format"`
}

// Logger returns the console logger writing to w.
func Logger(w io.Writer) *unit.Logger {
	if w == nil {
		w = os.Stderr
	}
	s := schema.New(schema.Object(map[string]*schema.Field{
		"level":  schema.String().WithDefault(cty.StringVal("info")).Describe("debug, info, warn or error."),
		"format": schema.String().WithDefault(cty.StringVal("text")).Describe("text or json."),
	}))
	return unit.NewLogger("console", func(_ context.Context, cfg cty.Value) (slog.Handler, error) {
		var c Config
		if err := ctyconv.Decode(cfg, &c); err != nil {
			return nil, fmt.Errorf("decoding console config: %w", err)
		}
		level, err := ctxlog.ParseLevel(c.Level)
		if err != nil {
			return nil, err
		}
		return ctxlog.NewHandler(level, c.Format, w)
	}, unit.WithSchema(s))
}

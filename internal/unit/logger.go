package unit

import (
	"context"
	"log/slog"

	"github.com/specialistvlad/gridbind/internal/binding"
	"github.com/zclconf/go-cty/cty"
)

// LoggerFunc builds a log handler from a resolved configuration.
type LoggerFunc func(ctx context.Context, cfg cty.Value) (slog.Handler, error)

// Logger produces the handler a run writes its logs to.
type Logger struct {
	def
	build LoggerFunc
}

// NewLogger declares a logger.
func NewLogger(name string, build LoggerFunc, opts ...Option) *Logger {
	return &Logger{def: newDef(name, opts), build: build}
}

func (l *Logger) Kind() Kind { return KindLogger }

// Handler builds a handler from the resolved configuration. A logger without
// behavior keeps the handler of the context logger.
func (l *Logger) Handler(ctx context.Context, cfg cty.Value) (slog.Handler, error) {
	if l.build == nil {
		return nil, nil
	}
	return l.build(ctx, cfg)
}

func (l *Logger) WithConfigSchema(c binding.Contract) binding.Configurable {
	cp := *l
	cp.def = l.def.with(c)
	return &cp
}

// Configured binds the logger to a literal configuration or a transform.
func (l *Logger) Configured(cfgOrFn any, opts ...binding.Option) (*Logger, error) {
	return binding.Configured(l, cfgOrFn, opts...)
}

// Package socketio_request provides an op that emits a socket.io event and
// waits for the reply event.
package socketio_request

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/specialistvlad/gridbind/internal/ctyconv"
	"github.com/specialistvlad/gridbind/internal/registry"
	"github.com/specialistvlad/gridbind/internal/schema"
	"github.com/specialistvlad/gridbind/internal/unit"
	"github.com/zclconf/go-cty/cty"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// ClientKey is the resource key the op expects its socketio_client under.
const ClientKey = "client"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the socketio_request op.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Request())
}

// Config is the configuration of a socketio_request op.
type Config struct {
	OnEvent   string    `cty:"on_event"`
	EmitEvent string    `cty:"emit_event"`
	EmitData  cty.Value `cty:"emit_data"`
	Timeout   string    `cty:"timeout"`
}

type opResult struct {
	value cty.Value
	err   error
}

// Request returns the socketio_request op.
func Request() *unit.Op {
	s := schema.New(schema.Object(map[string]*schema.Field{
		"on_event":   schema.String().Describe("Event that carries the reply."),
		"emit_event": schema.String().Describe("Event to emit."),
		"emit_data":  schema.Any().AsOptional(),
		"timeout":    schema.String().WithDefault(cty.StringVal("10s")),
	}))
	return unit.NewOp("socketio_request", run, unit.WithSchema(s))
}

func run(ctx context.Context, oc *unit.OpContext) (cty.Value, error) {
	var cfg Config
	if err := ctyconv.Decode(oc.Config, &cfg); err != nil {
		return cty.NilVal, fmt.Errorf("decoding socketio_request config: %w", err)
	}
	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to parse timeout: %w", err)
	}
	data, err := ctyconv.ToGo(cfg.EmitData)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to convert emit_data: %w", err)
	}

	client, err := unit.ResourceAs[*socket.Socket](oc, ClientKey)
	if err != nil {
		return cty.NilVal, fmt.Errorf("socket.io client dependency was not injected: %w", err)
	}
	if !client.Connected() {
		return cty.NilVal, fmt.Errorf("injected socket.io client is not connected")
	}

	logger := oc.Logger.With("sid", client.Id())
	logger.Info("Executing request", "emitEvent", cfg.EmitEvent, "onEvent", cfg.OnEvent)

	done := make(chan opResult, 1)
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client.Once(types.EventName(cfg.OnEvent), func(args ...any) {
		logger.Debug("EVENT HANDLER: Success event received", "event", cfg.OnEvent)
		done <- reply(args)
	})

	if logger.Enabled(ctx, slog.LevelDebug) {
		jsonData, _ := json.Marshal(data)
		logger.Debug("Emitting event", "event", cfg.EmitEvent, "data", string(jsonData))
	}
	client.Emit(cfg.EmitEvent, data)

	select {
	case <-opCtx.Done():
		return cty.NilVal, fmt.Errorf("timed out after %v waiting for event '%s'", timeout, cfg.OnEvent)
	case res := <-done:
		if res.err != nil {
			return cty.NilVal, res.err
		}
		logger.Info("Successfully received response event", "event", cfg.OnEvent)
		return res.value, nil
	}
}

// reply converts the arguments of a reply event into the op's output.
func reply(args []any) opResult {
	response := cty.NullVal(cty.DynamicPseudoType)
	if len(args) > 0 {
		v, err := ctyconv.FromGo(args[0])
		if err != nil {
			return opResult{err: fmt.Errorf("failed to convert received data: %w", err)}
		}
		response = v
	}
	return opResult{value: cty.ObjectVal(map[string]cty.Value{"response_data": response})}
}

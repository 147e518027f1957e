// Package socketio_client provides a persistent socket.io client resource.
package socketio_client

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/gridbind/internal/ctyconv"
	"github.com/specialistvlad/gridbind/internal/registry"
	"github.com/specialistvlad/gridbind/internal/schema"
	"github.com/specialistvlad/gridbind/internal/unit"
	"github.com/zclconf/go-cty/cty"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the socketio_client resource.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Client())
}

// Config is the configuration of a socketio_client resource.
type Config struct {
	URL                string `cty:"url"`
	Namespace          string `cty:"namespace"`
	InsecureSkipVerify bool   `cty:"insecure_skip_verify"`
	ConnectTimeout     string `cty:"connect_timeout"`
}

// Client returns the socketio_client resource. Its instance is a connected
// *socket.Socket.
func Client() *unit.Resource {
	s := schema.New(schema.Object(map[string]*schema.Field{
		"url":                  schema.String().Describe("Server URL; its path selects the socket.io endpoint."),
		"namespace":            schema.String().WithDefault(cty.StringVal("/")),
		"insecure_skip_verify": schema.Bool().WithDefault(cty.False),
		"connect_timeout":      schema.String().WithDefault(cty.StringVal("15s")),
	}))
	return unit.NewResource("socketio_client", create, destroy,
		unit.WithSchema(s),
		unit.WithDescription("Persistent socket.io connection over WebSocket."),
	)
}

// create is the 'create' handler for the resource.
func create(ctx context.Context, rc *unit.ResourceContext) (any, error) {
	var cfg Config
	if err := ctyconv.Decode(rc.Config, &cfg); err != nil {
		return nil, fmt.Errorf("decoding socketio_client config: %w", err)
	}
	timeout, err := time.ParseDuration(cfg.ConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid connect_timeout: %w", err)
	}

	logger := rc.Logger.With("url", cfg.URL)
	logger.Info("Creating new client instance...")

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil || parsedURL.Host == "" {
		return nil, fmt.Errorf("failed to parse URL %q", cfg.URL)
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "sid", io.Id())
		select {
		case connectChan <- nil:
		default:
		}
	})

	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		logger.Debug("EVENT HANDLER: 'connect_error' event fired", "error", err)
		select {
		case connectChan <- err:
		default:
		}
	})

	logger.Debug("Initiating connection...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return io, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %v waiting for socket.io connection", timeout)
	}
}

// destroy is the 'destroy' handler.
func destroy(ctx context.Context, instance any) error {
	client, ok := instance.(*socket.Socket)
	if !ok {
		return fmt.Errorf("socketio_client: unexpected instance %T", instance)
	}
	client.Disconnect()
	return nil
}

package http_client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/specialistvlad/gridbind/internal/ctyconv"
	"github.com/specialistvlad/gridbind/internal/schema"
	"github.com/specialistvlad/gridbind/internal/unit"
	"github.com/zclconf/go-cty/cty"
)

// ClientConfig is the configuration of an http_client resource.
type ClientConfig struct {
	Timeout string `cty:"timeout"`
}

// Client returns the http_client resource. Its instance is a *http.Client
// shared by every op that uses it.
func Client() *unit.Resource {
	s := schema.New(schema.Object(map[string]*schema.Field{
		"timeout": schema.String().
			WithDefault(cty.StringVal("30s")).
			Describe("Overall request timeout, as a Go duration."),
	}))
	return unit.NewResource("http_client", createClient, destroyClient,
		unit.WithSchema(s),
		unit.WithDescription("Shared HTTP client with connection pooling."),
	)
}

// createClient is the 'create' handler for the resource. It returns a live
// *http.Client object that will be shared across ops.
func createClient(_ context.Context, rc *unit.ResourceContext) (any, error) {
	var cfg ClientConfig
	if err := ctyconv.Decode(rc.Config, &cfg); err != nil {
		return nil, fmt.Errorf("decoding http_client config: %w", err)
	}
	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout: %w", err)
	}

	rc.Logger.Debug("Creating HTTP client", "timeout", timeout)
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}, nil
}

// destroyClient is the 'destroy' handler for the resource. For an
// http.Client, we just need to gracefully close any idle connections.
func destroyClient(_ context.Context, instance any) error {
	client, ok := instance.(*http.Client)
	if !ok {
		return fmt.Errorf("http_client: unexpected instance %T", instance)
	}
	client.CloseIdleConnections()
	return nil
}

package http_client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/specialistvlad/gridbind/internal/ctyconv"
	"github.com/specialistvlad/gridbind/internal/schema"
	"github.com/specialistvlad/gridbind/internal/unit"
	"github.com/zclconf/go-cty/cty"
)

// ClientKey is the resource key the http_request op expects its client under.
const ClientKey = "client"

// RequestConfig is the configuration of an http_request op.
type RequestConfig struct {
	URL     string             `cty:"url"`
	Method  string             `cty:"method"`
	Headers *map[string]string `cty:"headers"`
	Body    *string            `cty:"body"`
}

var responseType = cty.Object(map[string]cty.Type{
	"status_code": cty.Number,
	"body":        cty.String,
	"headers":     cty.Map(cty.String),
})

type response struct {
	StatusCode int               `cty:"status_code"`
	Body       string            `cty:"body"`
	Headers    map[string]string `cty:"headers"`
}

// Request returns the http_request op. It needs an http_client resource
// under ClientKey.
func Request() *unit.Op {
	s := schema.New(schema.Object(map[string]*schema.Field{
		"url":     schema.String().Describe("Request URL."),
		"method":  schema.String().WithDefault(cty.StringVal(http.MethodGet)),
		"headers": schema.Map(schema.String()).AsOptional(),
		"body":    schema.String().AsOptional(),
	}))
	return unit.NewOp("http_request", doRequest,
		unit.WithSchema(s),
		unit.WithDescription("Performs a single HTTP request and returns the response."),
	)
}

func doRequest(ctx context.Context, oc *unit.OpContext) (cty.Value, error) {
	var cfg RequestConfig
	if err := ctyconv.Decode(oc.Config, &cfg); err != nil {
		return cty.NilVal, fmt.Errorf("decoding http_request config: %w", err)
	}
	client, err := unit.ResourceAs[*http.Client](oc, ClientKey)
	if err != nil {
		return cty.NilVal, fmt.Errorf("http client dependency was not injected: %w", err)
	}

	var body io.Reader
	if cfg.Body != nil {
		body = strings.NewReader(*cfg.Body)
	}
	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(cfg.Method), cfg.URL, body)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to create request: %w", err)
	}
	if cfg.Headers != nil {
		for k, v := range *cfg.Headers {
			req.Header.Set(k, v)
		}
	}

	oc.Logger.Info("Making HTTP request", "method", req.Method, "url", cfg.URL)
	resp, err := client.Do(req)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	oc.Logger.Info("Received HTTP response", "status", resp.Status)

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to read response body: %w", err)
	}

	headers := make(map[string]string, len(resp.Header))
	for name := range resp.Header {
		headers[strings.ToLower(name)] = resp.Header.Get(name)
	}

	return ctyconv.Encode(response{
		StatusCode: resp.StatusCode,
		Body:       string(bodyBytes),
		Headers:    headers,
	}, responseType)
}

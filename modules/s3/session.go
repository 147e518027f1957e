package s3

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/specialistvlad/gridbind/internal/ctyconv"
	"github.com/specialistvlad/gridbind/internal/unit"
)

// SessionConfig is the configuration of an s3_session resource.
type SessionConfig struct {
	Region             string  `cty:"region"`
	UseUnsignedSession bool    `cty:"use_unsigned_session"`
	Endpoint           *string `cty:"endpoint"`
	Timeout            string  `cty:"timeout"`
}

// S3Session is the instance of an s3_session resource.
type S3Session struct {
	Region   string
	Unsigned bool
	// Endpoint is nil when upload URLs must be absolute.
	Endpoint *url.URL
	Client   *http.Client
}

// Close releases idle connections of the session's client.
func (s *S3Session) Close() error {
	s.Client.CloseIdleConnections()
	return nil
}

// resolve turns an upload URL into an absolute one and checks that the
// session is allowed to use it.
func (s *S3Session) resolve(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid upload URL: %w", err)
	}
	if !u.IsAbs() {
		if s.Endpoint == nil {
			return nil, fmt.Errorf("upload URL %q is relative and the session has no endpoint", raw)
		}
		u = s.Endpoint.ResolveReference(u)
	}
	if !s.Unsigned && u.Query().Get("X-Amz-Signature") == "" {
		return nil, fmt.Errorf("signed session requires a pre-signed upload URL")
	}
	return u, nil
}

// Session returns the s3_session resource.
func Session() *unit.Resource {
	return unit.NewResource("s3_session", createSession, nil, unit.WithSchema(sessionSchema))
}

func createSession(_ context.Context, rc *unit.ResourceContext) (any, error) {
	var cfg SessionConfig
	if err := ctyconv.Decode(rc.Config, &cfg); err != nil {
		return nil, fmt.Errorf("decoding s3_session config: %w", err)
	}
	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout: %w", err)
	}

	sess := &S3Session{
		Region:   cfg.Region,
		Unsigned: cfg.UseUnsignedSession,
		Client:   &http.Client{Timeout: timeout},
	}
	if cfg.Endpoint != nil {
		endpoint, err := url.Parse(*cfg.Endpoint)
		if err != nil || !endpoint.IsAbs() {
			return nil, fmt.Errorf("endpoint must be an absolute URL, got %q", *cfg.Endpoint)
		}
		sess.Endpoint = endpoint
	}

	rc.Logger.Debug("S3 session created", "region", sess.Region, "unsigned", sess.Unsigned)
	return sess, nil
}

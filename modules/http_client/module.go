// Package http_client provides a stateful, shareable HTTP client resource and
// a stateless op for making individual HTTP requests.
package http_client

import "github.com/specialistvlad/gridbind/internal/registry"

// Module implements the registry.Module interface. It's the main entrypoint
// for the http_client module, responsible for registering all of its
// components with the application's registry.
type Module struct{}

// Register registers the http_client resource and the http_request op.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Client())
	r.Register(Request())
}

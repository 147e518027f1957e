// Package s3 provides an S3 session resource and an op that uploads files to
// S3-compatible storage through pre-signed or anonymous URLs.
package s3

import (
	_ "embed"
	"fmt"

	"github.com/specialistvlad/gridbind/internal/registry"
	"github.com/specialistvlad/gridbind/internal/schema"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the s3_session resource and the s3_upload op.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Session())
	r.Register(Upload())
}

//go:embed s3_session.hcl
var sessionManifest []byte

var sessionSchema = mustManifest(sessionManifest, "s3_session.hcl")

func mustManifest(src []byte, filename string) schema.Schema {
	s, diags := schema.ParseHCL(src, filename)
	if diags.HasErrors() {
		panic(fmt.Sprintf("s3: invalid embedded manifest: %s", diags.Error()))
	}
	return s
}

package http_client

import (
	"github.com/specialistvlad/gridbind/internal/ctyconv"
	"github.com/specialistvlad/gridbind/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

func mustStringSchema() schema.Schema { return schema.New(schema.String()) }

// fetchPath requests a URL with the default method.
func fetchPath(url cty.Value) (cty.Value, error) {
	return cty.ObjectVal(map[string]cty.Value{"url": url}), nil
}

func decodeResponse(v cty.Value, out *response) error {
	return ctyconv.Decode(v, out)
}

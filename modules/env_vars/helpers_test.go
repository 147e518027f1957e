package env_vars

import (
	"github.com/specialistvlad/gridbind/internal/ctyconv"
	"github.com/zclconf/go-cty/cty"
)

func decode(v cty.Value, out *Output) error { return ctyconv.Decode(v, out) }

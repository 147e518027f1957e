// Package print provides an op that writes a value to standard output.
package print

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/gridbind/internal/ctyconv"
	"github.com/specialistvlad/gridbind/internal/registry"
	"github.com/specialistvlad/gridbind/internal/schema"
	"github.com/specialistvlad/gridbind/internal/unit"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives the printed values; os.Stdout when nil.
	Out io.Writer
}

// Register registers the print op.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Op(m.Out))
}

// Op returns the print op writing to w. Without an explicit value it prints
// the outputs of its dependencies. Its output is the printed value.
func Op(w io.Writer) *unit.Op {
	if w == nil {
		w = os.Stdout
	}
	s := schema.New(schema.Object(map[string]*schema.Field{
		"label": schema.String().WithDefault(cty.StringVal("")),
		"value": schema.Any().AsOptional(),
	}))
	return unit.NewOp("print", func(_ context.Context, oc *unit.OpContext) (cty.Value, error) {
		oc.Logger.Info("Printing input")

		value := oc.Config.GetAttr("value")
		if value.IsNull() {
			if len(oc.Inputs) == 0 {
				fmt.Fprintln(w, "      (null)")
				return value, nil
			}
			value = cty.ObjectVal(oc.Inputs)
		}

		out, err := ctyconv.ToJSON(value)
		if err != nil {
			return cty.NilVal, fmt.Errorf("print: %w", err)
		}
		if label := oc.Config.GetAttr("label").AsString(); label != "" {
			fmt.Fprintf(w, "      %s = %s\n", label, out)
		} else {
			fmt.Fprintf(w, "      %s\n", out)
		}
		return value, nil
	}, unit.WithSchema(s))
}

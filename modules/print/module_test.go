package print

import (
	"bytes"
	"context"
	"testing"

	"github.com/specialistvlad/gridbind/internal/binding"
	"github.com/specialistvlad/gridbind/internal/job"
	"github.com/specialistvlad/gridbind/internal/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestPrint(t *testing.T) {
	testCases := []struct {
		name   string
		config map[string]any
		inputs bool
		want   string
	}{
		{
			name:   "labelled value",
			config: map[string]any{"label": "region", "value": "eu-west-1"},
			want:   "      region = \"eu-west-1\"\n",
		},
		{
			name: "nothing to print",
			want: "      (null)\n",
		},
		{
			name:   "dependency outputs",
			inputs: true,
			want:   "      {\"source\":{\"n\":3}}\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			op, err := Op(&buf).Configured(tc.config, binding.WithName("show"))
			require.NoError(t, err)

			b := job.NewBuilder("print")
			if tc.inputs {
				source := unit.NewOp("source", func(context.Context, *unit.OpContext) (cty.Value, error) {
					return cty.ObjectVal(map[string]cty.Value{"n": cty.NumberIntVal(3)}), nil
				})
				b.Op(source).Op(op, job.After("source"))
			} else {
				b.Op(op)
			}
			j, err := b.Build()
			require.NoError(t, err)

			_, err = j.Run(context.Background(), nil)
			require.NoError(t, err)
			assert.Equal(t, tc.want, buf.String())
		})
	}
}

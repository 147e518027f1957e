package runconfig

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "op", LabelNames: []string{"name"}},
		{Type: "graph", LabelNames: []string{"name"}},
		{Type: "resource", LabelNames: []string{"name"}},
		{Type: "logger", LabelNames: []string{"name"}},
		{Type: "execution"},
	},
}

var entrySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "config"},
	},
}

var blockSections = map[string]Section{
	"op":       SectionOps,
	"graph":    SectionGraphs,
	"resource": SectionResources,
	"logger":   SectionLoggers,
}

// ParseHCL parses an HCL run configuration. Expressions may reference
// environment variables as `env.NAME`.
func ParseHCL(src []byte, filename string) (*Config, hcl.Diagnostics) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diags
	}

	content, contentDiags := file.Body.Content(fileSchema)
	diags = append(diags, contentDiags...)
	if contentDiags.HasErrors() {
		return nil, diags
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": environment()},
	}

	cfg := New()
	var execution *hcl.Block
	for _, block := range content.Blocks {
		if block.Type == "execution" {
			if execution != nil {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  `Duplicate "execution" block`,
					Detail:   `Only one "execution" block is allowed.`,
					Subject:  &block.DefRange,
				})
				continue
			}
			execution = block
			val, valDiags := entryValue(block, evalCtx)
			diags = append(diags, valDiags...)
			cfg.Execution = val
			continue
		}

		entries := cfg.section(blockSections[block.Type])
		name := block.Labels[0]
		if _, exists := entries[name]; exists {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  fmt.Sprintf("Duplicate %s block", block.Type),
				Detail:   fmt.Sprintf("A %s named '%s' has already been configured in this file.", block.Type, name),
				Subject:  &block.DefRange,
			})
			continue
		}
		val, valDiags := entryValue(block, evalCtx)
		diags = append(diags, valDiags...)
		entries[name] = val
	}

	if diags.HasErrors() {
		return nil, diags
	}
	return cfg, diags
}

// entryValue evaluates the `config` attribute of a block. A block without
// one configures an absent value.
func entryValue(block *hcl.Block, evalCtx *hcl.EvalContext) (cty.Value, hcl.Diagnostics) {
	content, diags := block.Body.Content(entrySchema)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	attr, ok := content.Attributes["config"]
	if !ok {
		return cty.NullVal(cty.DynamicPseudoType), diags
	}
	val, valDiags := attr.Expr.Value(evalCtx)
	diags = append(diags, valDiags...)
	return val, diags
}

func environment() cty.Value {
	vars := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vars[name] = cty.StringVal(value)
	}
	return cty.ObjectVal(vars)
}

// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file parses schema manifests: HCL documents that declare the
// configuration contract of a unit outside of Go code.
//
//	description = "S3 client session"
//
//	field "region" {
//	  type    = string
//	  default = "eu-west-1"
//	}
//
//	field "retry" {
//	  field "attempts" {
//	    type    = int
//	    default = 3
//	  }
//	}
//
// A manifest either declares a root `type` expression or a set of `field`
// blocks, never both. A manifest with neither describes an empty schema.
package schema

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

var manifestSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "description"},
		{Name: "type"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "field", LabelNames: []string{"name"}},
	},
}

// fieldBodySchema is the HCL schema for the body of a `field` block.
var fieldBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		// `type` is required for leaf fields, but we check for its existence
		// manually to provide a better error message.
		{Name: "type"},
		{Name: "description"},
		{Name: "default"},
		{Name: "optional"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "field", LabelNames: []string{"name"}},
	},
}

// ParseHCL parses a schema manifest from source bytes.
func ParseHCL(src []byte, filename string) (Schema, hcl.Diagnostics) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return Schema{}, diags
	}
	return decodeManifest(file.Body)
}

// LoadFile parses the schema manifest at path.
func LoadFile(path string) (Schema, hcl.Diagnostics) {
	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return Schema{}, diags
	}
	return decodeManifest(file.Body)
}

func decodeManifest(body hcl.Body) (Schema, hcl.Diagnostics) {
	content, diags := body.Content(manifestSchema)
	if diags.HasErrors() {
		return Schema{}, diags
	}

	var description string
	if attr, ok := content.Attributes["description"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &description)...)
	}

	typeAttr, hasType := content.Attributes["type"]
	fieldBlocks := content.Blocks.OfType("field")

	var root *Field
	switch {
	case hasType && len(fieldBlocks) > 0:
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Conflicting schema declaration",
			Detail:   "A manifest declares either a root 'type' or 'field' blocks, not both.",
			Subject:  typeAttr.Range.Ptr(),
		})
	case hasType:
		f, err := typeExprToField(typeAttr.Expr)
		if err != nil {
			diags = append(diags, invalidType(typeAttr, err))
			break
		}
		root = f
	case len(fieldBlocks) > 0:
		fields, fieldDiags := decodeFields(fieldBlocks)
		diags = append(diags, fieldDiags...)
		root = Object(fields)
	}

	if diags.HasErrors() {
		return Schema{}, diags
	}
	return Schema{root: root, description: description}, diags
}

// decodeFields decodes sibling `field` blocks into object attributes.
func decodeFields(blocks hcl.Blocks) (map[string]*Field, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	fields := make(map[string]*Field, len(blocks))

	for _, block := range blocks {
		// The schema guarantees us one label.
		name := block.Labels[0]
		if _, exists := fields[name]; exists {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate field definition",
				Detail:   fmt.Sprintf("A field named '%s' has already been defined.", name),
				Subject:  &block.DefRange,
			})
			continue
		}
		f, fieldDiags := decodeField(name, block)
		diags = append(diags, fieldDiags...)
		if f != nil {
			fields[name] = f
		}
	}
	return fields, diags
}

func decodeField(name string, block *hcl.Block) (*Field, hcl.Diagnostics) {
	content, diags := block.Body.Content(fieldBodySchema)
	if diags.HasErrors() {
		return nil, diags
	}

	typeAttr, hasType := content.Attributes["type"]
	nested := content.Blocks.OfType("field")

	var f *Field
	switch {
	case hasType && len(nested) > 0:
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Conflicting field declaration",
			Detail:   fmt.Sprintf("Field '%s' declares both a 'type' and nested 'field' blocks.", name),
			Subject:  &block.DefRange,
		})
		return nil, diags
	case hasType:
		parsed, err := typeExprToField(typeAttr.Expr)
		if err != nil {
			diags = append(diags, invalidType(typeAttr, err))
			return nil, diags
		}
		f = parsed
	case len(nested) > 0:
		fields, fieldDiags := decodeFields(nested)
		diags = append(diags, fieldDiags...)
		if fieldDiags.HasErrors() {
			return nil, diags
		}
		f = Object(fields)
	default:
		missingItemRange := block.Body.MissingItemRange()
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing 'type' attribute",
			Detail:   "The 'type' attribute is required for fields without nested field blocks.",
			Subject:  &missingItemRange,
		})
		return nil, diags
	}

	if attr, ok := content.Attributes["description"]; ok {
		var description string
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &description)...)
		f = f.Describe(description)
	}

	if attr, ok := content.Attributes["optional"]; ok {
		var optional bool
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &optional)...)
		if optional {
			f = f.AsOptional()
		}
	}

	if attr, ok := content.Attributes["default"]; ok {
		// A nil eval context is used because defaults must be literal values.
		val, valDiags := attr.Expr.Value(nil)
		diags = append(diags, valDiags...)
		if valDiags.HasErrors() {
			return nil, diags
		}
		normalized, err := Validate(New(f), val)
		if err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid default value type",
				Detail:   fmt.Sprintf("The default value for '%s' is not compatible with its type, '%s': %s.", name, f, err),
				Subject:  attr.Expr.Range().Ptr(),
			})
			return nil, diags
		}
		f = f.WithDefault(normalized)
	}

	return f, diags
}

func invalidType(attr *hcl.Attribute, err error) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Invalid type expression",
		Detail:   err.Error(),
		Subject:  attr.Expr.Range().Ptr(),
	}
}

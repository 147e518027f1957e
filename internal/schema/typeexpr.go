// This file parses type expressions such as `string`, `list(int)` or
// `object({region = string, retries = optional(int, 3)})` into schema fields.

package schema

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// ParseType parses a type expression into a Field.
func ParseType(src string) (*Field, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "<type>", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diags
	}
	return typeExprToField(expr)
}

// MustParseType is like ParseType but panics on error. It is meant for
// package-level schema declarations.
func MustParseType(src string) *Field {
	f, err := ParseType(src)
	if err != nil {
		panic(fmt.Sprintf("schema: invalid type expression %q: %v", src, err))
	}
	return f
}

// typeExprToField converts an HCL type expression into its Field equivalent.
func typeExprToField(expr hcl.Expression) (*Field, error) {
	if expr == nil {
		return Any(), nil
	}

	switch v := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		switch v.Name {
		case "object":
			return objectTypeExpr(v)
		case "optional":
			return optionalTypeExpr(v)
		case "list", "map":
			if len(v.Args) != 1 {
				return nil, fmt.Errorf("the %s() type constructor requires exactly one argument, got %d", v.Name, len(v.Args))
			}
			elem, err := typeExprToField(v.Args[0])
			if err != nil {
				return nil, err
			}
			if elem.Optional || elem.Default != nil {
				return nil, fmt.Errorf("optional() may only wrap object attributes, not %s elements", v.Name)
			}
			if v.Name == "list" {
				return List(elem), nil
			}
			return Map(elem), nil
		default:
			return nil, fmt.Errorf("unknown type constructor function %q", v.Name)
		}

	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return nil, fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		switch name := v.Traversal.RootName(); name {
		case "string":
			return String(), nil
		case "number":
			return Number(), nil
		case "int":
			return Int(), nil
		case "bool":
			return Bool(), nil
		case "any":
			return Any(), nil
		default:
			return nil, fmt.Errorf("unknown primitive type %q", name)
		}

	default:
		return nil, fmt.Errorf("unsupported expression for type definition: %T", v)
	}
}

func objectTypeExpr(call *hclsyntax.FunctionCallExpr) (*Field, error) {
	if len(call.Args) != 1 {
		return nil, fmt.Errorf("the object() type constructor requires exactly one argument (the object definition), got %d", len(call.Args))
	}
	objExpr, ok := call.Args[0].(*hclsyntax.ObjectConsExpr)
	if !ok {
		return nil, fmt.Errorf("the argument to object() must be an object literal like { key = type, ... }, got %T", call.Args[0])
	}

	fields := make(map[string]*Field, len(objExpr.Items))
	for _, item := range objExpr.Items {
		key := objectKey(item.KeyExpr)
		if key == "" {
			return nil, fmt.Errorf("invalid key in object type definition: keys must be simple identifiers or quoted strings, not complex expressions")
		}
		if _, dup := fields[key]; dup {
			return nil, fmt.Errorf("duplicate attribute %q in object type definition", key)
		}
		child, err := typeExprToField(item.ValueExpr)
		if err != nil {
			return nil, fmt.Errorf("in object attribute '%s': %w", key, err)
		}
		fields[key] = child
	}
	return Object(fields), nil
}

func optionalTypeExpr(call *hclsyntax.FunctionCallExpr) (*Field, error) {
	if len(call.Args) < 1 || len(call.Args) > 2 {
		return nil, fmt.Errorf("optional() takes a type and an optional default, got %d arguments", len(call.Args))
	}
	inner, err := typeExprToField(call.Args[0])
	if err != nil {
		return nil, err
	}
	if len(call.Args) == 1 {
		return inner.AsOptional(), nil
	}

	def, diags := call.Args[1].Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("optional() default must be a literal: %w", diags)
	}
	normalized, err := Validate(New(inner), def)
	if err != nil {
		return nil, fmt.Errorf("optional() default does not match %s: %w", inner, err)
	}
	return inner.WithDefault(normalized), nil
}

// objectKey extracts an attribute name from an object type key. Keys are
// wrapped in ObjectConsKeyExpr and are either bare identifiers or quoted
// literals.
func objectKey(expr hclsyntax.Expression) string {
	keyExpr, ok := expr.(*hclsyntax.ObjectConsKeyExpr)
	if !ok {
		return ""
	}
	switch kexpr := keyExpr.Wrapped.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		if len(kexpr.Traversal) == 1 {
			return kexpr.Traversal.RootName()
		}
	case *hclsyntax.TemplateExpr:
		if len(kexpr.Parts) == 1 {
			if lit, isLit := kexpr.Parts[0].(*hclsyntax.LiteralValueExpr); isLit && lit.Val.Type().Equals(cty.String) {
				return lit.Val.AsString()
			}
		}
	}
	return ""
}

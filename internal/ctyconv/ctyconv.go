// Package ctyconv converts configuration values between cty, plain Go values,
// JSON and literal HCL expressions.
package ctyconv

import (
	"fmt"
	"math"
	"math/big"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// FromGo converts a native Go value into a cty.Value. cty values pass through
// unchanged, nil becomes a dynamic null, and structs must carry `cty` tags.
func FromGo(data any) (cty.Value, error) {
	if data == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	switch v := data.(type) {
	case cty.Value:
		return v, nil
	case string:
		return cty.StringVal(v), nil
	case bool:
		return cty.BoolVal(v), nil
	case int:
		return cty.NumberIntVal(int64(v)), nil
	case int32:
		return cty.NumberIntVal(int64(v)), nil
	case int64:
		return cty.NumberIntVal(v), nil
	case uint:
		return cty.NumberUIntVal(uint64(v)), nil
	case uint64:
		return cty.NumberUIntVal(v), nil
	case float32:
		return floatVal(float64(v))
	case float64:
		return floatVal(v)
	case map[string]any:
		attrs := make(map[string]cty.Value, len(v))
		for key, val := range v {
			ctyVal, err := FromGo(val)
			if err != nil {
				return cty.NilVal, fmt.Errorf("in attribute %q: %w", key, err)
			}
			attrs[key] = ctyVal
		}
		return cty.ObjectVal(attrs), nil
	case []any:
		elems := make([]cty.Value, 0, len(v))
		for i, val := range v {
			ctyVal, err := FromGo(val)
			if err != nil {
				return cty.NilVal, fmt.Errorf("in element %d: %w", i, err)
			}
			elems = append(elems, ctyVal)
		}
		return cty.TupleVal(elems), nil
	default:
		ty, err := gocty.ImpliedType(v)
		if err != nil {
			return cty.NilVal, fmt.Errorf("unsupported type for conversion to cty.Value: %T: %w", v, err)
		}
		return toCty(v, ty)
	}
}

// floatVal rejects NaN, which cty cannot represent, and infinities, which
// configuration values never carry.
func floatVal(f float64) (cty.Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return cty.NilVal, fmt.Errorf("%v cannot be used as a number", f)
	}
	return cty.NumberFloatVal(f), nil
}

// ToGo converts a cty.Value into plain Go values: strings, bools, int64 for
// whole numbers, float64 otherwise, []any and map[string]any.
func ToGo(val cty.Value) (any, error) {
	if val.Type() == cty.NilType || val.IsNull() {
		return nil, nil
	}
	if !val.IsKnown() {
		return nil, fmt.Errorf("cannot convert an unknown value")
	}
	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty == cty.Number:
		bf := val.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		f, _ := bf.Float64()
		return f, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			goVal, err := ToGo(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = goVal
		}
		return out, nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			goVal, err := ToGo(v)
			if err != nil {
				return nil, err
			}
			out = append(out, goVal)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported cty.Type for conversion: %s", ty.FriendlyName())
	}
}

// Decode copies val into the Go value pointed to by out using `cty` struct
// tags.
func Decode(val cty.Value, out any) error {
	return gocty.FromCtyValue(val, out)
}

// Encode converts a Go value into a cty.Value of the given type.
func Encode(v any, ty cty.Type) (cty.Value, error) {
	return toCty(v, ty)
}

// toCty wraps gocty.ToCtyValue, which panics on NaN floats.
func toCty(v any, ty cty.Type) (val cty.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			val, err = cty.NilVal, fmt.Errorf("converting %T: %v", v, r)
		}
	}()
	return gocty.ToCtyValue(v, ty)
}

// ParseLiteral evaluates a literal HCL expression such as
// `{ region = "eu-west-1", retries = 3 }`. Variables and function calls are
// not available.
func ParseLiteral(src string) (cty.Value, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "<literal>", hcl.InitialPos)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	return val, nil
}

// FromJSON decodes a JSON document into a cty.Value with its implied type.
func FromJSON(data []byte) (cty.Value, error) {
	ty, err := ctyjson.ImpliedType(data)
	if err != nil {
		return cty.NilVal, err
	}
	return ctyjson.Unmarshal(data, ty)
}

// ToJSON encodes val using its own type.
func ToJSON(val cty.Value) ([]byte, error) {
	return ctyjson.Marshal(val, val.Type())
}

package schema

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Validate checks v against s and returns the normalized value: defaults are
// filled in, omitted optional fields become typed nulls and collections are
// rebuilt with their declared element shape.
//
// The checks run in order: required fields, defaults, types, unknown fields.
// Every problem is reported; the returned error is a ValidationErrors whose
// entries are *ValidationError.
func Validate(s Schema, v cty.Value) (cty.Value, error) {
	var errs ValidationErrors
	var out cty.Value
	if s.root == nil {
		out = validateEmpty(v, &errs)
	} else {
		out = walk(nil, s.root, v, &errs)
	}
	if len(errs) > 0 {
		return cty.NilVal, errs
	}
	return out, nil
}

// isAbsent reports whether v carries no configuration at all.
func isAbsent(v cty.Value) bool {
	return v.Type() == cty.NilType || v.IsNull()
}

func validateEmpty(v cty.Value, errs *ValidationErrors) cty.Value {
	if isAbsent(v) {
		return cty.EmptyObjectVal
	}
	ty := v.Type()
	if (ty.IsObjectType() || ty.IsMapType()) && v.IsKnown() {
		if v.LengthInt() == 0 {
			return cty.EmptyObjectVal
		}
		for it := v.ElementIterator(); it.Next(); {
			k, _ := it.Element()
			*errs = append(*errs, &ValidationError{
				Path:     cty.GetAttrPath(k.AsString()),
				Summary:  "unknown field",
				Expected: "no configuration",
				Actual:   "field " + k.AsString(),
			})
		}
		return cty.EmptyObjectVal
	}
	*errs = append(*errs, &ValidationError{
		Summary:  "unexpected configuration",
		Expected: "no configuration",
		Actual:   describe(v),
	})
	return cty.EmptyObjectVal
}

func walk(path cty.Path, f *Field, v cty.Value, errs *ValidationErrors) cty.Value {
	if isAbsent(v) {
		return absent(path, f, errs)
	}
	if !v.IsWhollyKnown() {
		*errs = append(*errs, &ValidationError{
			Path:     path,
			Summary:  "value is not known",
			Expected: f.String(),
			Actual:   "unknown value",
		})
		return cty.UnknownVal(f.Type())
	}

	ty := v.Type()
	switch f.Kind {
	case KindAny:
		return v
	case KindString:
		return expectPrimitive(path, f, v, cty.String, errs)
	case KindBool:
		return expectPrimitive(path, f, v, cty.Bool, errs)
	case KindNumber:
		return expectPrimitive(path, f, v, cty.Number, errs)
	case KindInt:
		out := expectPrimitive(path, f, v, cty.Number, errs)
		if ty.Equals(cty.Number) && !v.AsBigFloat().IsInt() {
			*errs = append(*errs, &ValidationError{
				Path:     path,
				Summary:  "wrong type",
				Expected: "int",
				Actual:   "number " + v.AsBigFloat().Text('g', -1),
			})
		}
		return out
	case KindList:
		if !ty.IsListType() && !ty.IsTupleType() && !ty.IsSetType() {
			return mismatch(path, f, v, errs)
		}
		elems := make([]cty.Value, 0, v.LengthInt())
		i := int64(0)
		for it := v.ElementIterator(); it.Next(); i++ {
			_, elem := it.Element()
			elems = append(elems, walk(indexPath(path, cty.NumberIntVal(i)), f.Elem, elem, errs))
		}
		return listOf(elems, f.Elem.Type())
	case KindMap:
		if !ty.IsMapType() && !ty.IsObjectType() {
			return mismatch(path, f, v, errs)
		}
		elems := make(map[string]cty.Value, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			k, elem := it.Element()
			elems[k.AsString()] = walk(indexPath(path, k), f.Elem, elem, errs)
		}
		return mapOf(elems, f.Elem.Type())
	case KindObject:
		if !ty.IsObjectType() && !ty.IsMapType() {
			return mismatch(path, f, v, errs)
		}
		return walkObject(path, f, v, errs)
	default:
		*errs = append(*errs, &ValidationError{
			Path:     path,
			Summary:  "invalid schema",
			Expected: "a declared field kind",
			Actual:   f.Kind.String(),
		})
		return cty.DynamicVal
	}
}

func walkObject(path cty.Path, f *Field, v cty.Value, errs *ValidationErrors) cty.Value {
	given := map[string]cty.Value{}
	if v.LengthInt() > 0 {
		given = v.AsValueMap()
	}

	names := f.FieldNames()
	for it := v.ElementIterator(); it.Next(); {
		k, _ := it.Element()
		name := k.AsString()
		if _, declared := f.Fields[name]; declared {
			continue
		}
		expected := "no fields"
		if len(names) > 0 {
			expected = "one of " + strings.Join(names, ", ")
		}
		*errs = append(*errs, &ValidationError{
			Path:     attrPath(path, name),
			Summary:  "unknown field",
			Expected: expected,
			Actual:   "field " + name,
		})
	}

	out := make(map[string]cty.Value, len(names))
	for _, name := range names {
		child, ok := given[name]
		if !ok {
			child = cty.NilVal
		}
		out[name] = walk(attrPath(path, name), f.Fields[name], child, errs)
	}
	return cty.ObjectVal(out)
}

func absent(path cty.Path, f *Field, errs *ValidationErrors) cty.Value {
	if f.Default != nil {
		return *f.Default
	}
	if f.Optional {
		return cty.NullVal(f.Type())
	}
	if f.Kind == KindObject {
		// An omitted object is read as an empty one, so only its required
		// attributes are reported.
		return walkObject(path, f, cty.EmptyObjectVal, errs)
	}
	*errs = append(*errs, &ValidationError{
		Path:     path,
		Summary:  "missing required field",
		Expected: f.String(),
		Actual:   "nothing",
	})
	return cty.NullVal(f.Type())
}

func expectPrimitive(path cty.Path, f *Field, v cty.Value, want cty.Type, errs *ValidationErrors) cty.Value {
	if !v.Type().Equals(want) {
		return mismatch(path, f, v, errs)
	}
	return v
}

func mismatch(path cty.Path, f *Field, v cty.Value, errs *ValidationErrors) cty.Value {
	*errs = append(*errs, &ValidationError{
		Path:     path,
		Summary:  "wrong type",
		Expected: f.String(),
		Actual:   describe(v),
	})
	return cty.NullVal(f.Type())
}

// describe renders the shape of a value for error messages.
func describe(v cty.Value) string {
	ty := v.Type()
	switch {
	case ty == cty.NilType:
		return "nothing"
	case ty.IsObjectType():
		names := make([]string, 0, len(ty.AttributeTypes()))
		for it := v.ElementIterator(); it.Next(); {
			k, _ := it.Element()
			names = append(names, k.AsString())
		}
		return fmt.Sprintf("object with fields [%s]", strings.Join(names, ", "))
	default:
		return ty.FriendlyName()
	}
}

func listOf(elems []cty.Value, elemType cty.Type) cty.Value {
	if len(elems) == 0 {
		return cty.ListValEmpty(elemType)
	}
	first := elems[0].Type()
	for _, elem := range elems[1:] {
		if !elem.Type().Equals(first) {
			return cty.TupleVal(elems)
		}
	}
	return cty.ListVal(elems)
}

func mapOf(elems map[string]cty.Value, elemType cty.Type) cty.Value {
	if len(elems) == 0 {
		return cty.MapValEmpty(elemType)
	}
	var first cty.Type
	for _, elem := range elems {
		if first == cty.NilType {
			first = elem.Type()
			continue
		}
		if !elem.Type().Equals(first) {
			return cty.ObjectVal(elems)
		}
	}
	return cty.MapVal(elems)
}

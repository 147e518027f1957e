package schema

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// Check reports whether s is a well-formed schema declaration. Every problem
// is returned, joined, as *DefinitionError values.
func Check(s Schema) error {
	if s.root == nil {
		return nil
	}
	var errs []error
	checkField("", s.root, &errs)
	return errors.Join(errs...)
}

func checkField(path string, f *Field, errs *[]error) {
	fail := func(format string, args ...any) {
		*errs = append(*errs, &DefinitionError{Path: path, Reason: fmt.Sprintf(format, args...)})
	}
	if f == nil {
		fail("field has no declaration")
		return
	}

	switch f.Kind {
	case KindAny, KindString, KindNumber, KindInt, KindBool:
	case KindList, KindMap:
		if f.Elem == nil {
			fail("%s requires an element type", f.Kind)
			break
		}
		checkField(path+"[*]", f.Elem, errs)
	case KindObject:
		if f.Fields == nil {
			fail("object has no attribute table")
			break
		}
		for _, name := range f.FieldNames() {
			child := joinPath(path, name)
			if !hclsyntax.ValidIdentifier(name) {
				*errs = append(*errs, &DefinitionError{Path: child, Reason: "attribute name is not a valid identifier"})
			}
			checkField(child, f.Fields[name], errs)
		}
	default:
		fail("unknown field kind %d", int(f.Kind))
		return
	}

	if f.Default == nil {
		return
	}
	def := *f.Default
	if isAbsent(def) {
		fail("default must not be null")
		return
	}
	bare := *f
	bare.Default = nil
	bare.Optional = false
	if _, err := Validate(New(&bare), def); err != nil {
		fail("default does not conform to %s: %v", bare.String(), err)
	}
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

package schema

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// ValidationError reports that a configuration value does not satisfy a
// schema at a particular field path.
type ValidationError struct {
	Path     cty.Path
	Summary  string
	Expected string
	Actual   string
}

// Field returns the dotted path of the offending field.
func (e *ValidationError) Field() string {
	return FormatPath(e.Path)
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s at %s: expected %s, got %s", e.Summary, e.Field(), e.Expected, e.Actual)
}

// ValidationErrors collects every problem found while validating one value.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (errs ValidationErrors) Error() string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = err.Error()
	}
	return fmt.Sprintf("%d configuration problems:\n- %s", len(errs), strings.Join(lines, "\n- "))
}

// Unwrap exposes the individual problems to errors.Is and errors.As.
func (errs ValidationErrors) Unwrap() []error {
	out := make([]error, len(errs))
	for i, err := range errs {
		out[i] = err
	}
	return out
}

// DefinitionError reports a malformed schema declaration.
type DefinitionError struct {
	Path   string
	Reason string
}

// Error implements the error interface.
func (e *DefinitionError) Error() string {
	if e.Path == "" {
		return "invalid schema: " + e.Reason
	}
	return fmt.Sprintf("invalid schema at %s: %s", e.Path, e.Reason)
}

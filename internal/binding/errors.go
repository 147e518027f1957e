package binding

import "fmt"

// MissingIdentityError is returned when a bound unit has no name: neither an
// explicit one nor a named transform function.
type MissingIdentityError struct {
	Kind Kind
	// Unit is the name of the unit being bound.
	Unit string
}

func (e *MissingIdentityError) Error() string {
	return fmt.Sprintf("cannot bind %s %q: a bound unit needs an explicit name or a named transform function", e.Kind, e.Unit)
}

// BindError reports a malformed binding detected at assembly time. Err is a
// schema.ValidationErrors for a literal that does not satisfy the inner
// schema, or a schema definition error for a malformed outer schema.
type BindError struct {
	Kind Kind
	// Unit is the name the bound unit would have had.
	Unit string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("binding %s %q: %v", e.Kind, e.Unit, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// Phase names the resolution step that failed.
type Phase string

const (
	PhaseOuter Phase = "outer"
	PhaseInner Phase = "inner"
)

// ResolutionError reports a configuration value that failed validation while
// a unit was being resolved for execution.
type ResolutionError struct {
	Kind  Kind
	Unit  string
	Phase Phase
	Err   error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving %s configuration of %s %q: %v", e.Phase, e.Kind, e.Unit, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// TransformError wraps an error returned by a caller-supplied transform with
// the identity of the bound unit being resolved.
type TransformError struct {
	Kind Kind
	Unit string
	Err  error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("config transform of %s %q failed: %v", e.Kind, e.Unit, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

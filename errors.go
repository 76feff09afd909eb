package easyacumatica

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidSchema indicates a malformed or inconsistent raw schema document.
	ErrInvalidSchema = errors.New("easyacumatica: invalid schema")
	// ErrUnresolvedReference indicates dangling entity references found after synthesis.
	ErrUnresolvedReference = errors.New("easyacumatica: unresolved reference")
	// ErrEmission indicates the stub emitter cannot represent a reference.
	ErrEmission = errors.New("easyacumatica: emission failed")
	// ErrInvalidFilter indicates a malformed filter expression.
	ErrInvalidFilter = errors.New("easyacumatica: invalid filter expression")
)

// SchemaError represents a malformed or inconsistent schema document.
type SchemaError struct {
	Entity  string // Entity name (if known)
	Field   string // Field name (if applicable)
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("easyacumatica: schema error")
	if e.Entity != "" {
		b.WriteString(" on entity ")
		b.WriteString(e.Entity)
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for SchemaError.
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// NewSchemaError creates a new SchemaError.
func NewSchemaError(entity, field, message string, cause error) *SchemaError {
	return &SchemaError{
		Entity:  entity,
		Field:   field,
		Message: message,
		Cause:   cause,
	}
}

// DanglingRef identifies a single field whose reference target is missing
// from the schema snapshot.
type DanglingRef struct {
	Entity string // Entity holding the field.
	Field  string // Field whose type could not be resolved.
	Ref    string // The missing target name.
}

// String returns the "Entity.Field -> Ref" form used in error messages.
func (r DanglingRef) String() string {
	return fmt.Sprintf("%s.%s -> %s", r.Entity, r.Field, r.Ref)
}

// UnresolvedReferenceError aggregates every dangling reference found in one
// synthesis pass, so a caller can fix all schema inconsistencies in a single
// iteration instead of one round trip per reference.
type UnresolvedReferenceError struct {
	Refs []DanglingRef
}

// Error implements the error interface.
func (e *UnresolvedReferenceError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "easyacumatica: %d unresolved reference(s)", len(e.Refs))
	for _, r := range e.Refs {
		b.WriteString("\n\t")
		b.WriteString(r.String())
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for UnresolvedReferenceError.
func (e *UnresolvedReferenceError) Is(target error) bool {
	return target == ErrUnresolvedReference
}

// NewUnresolvedReferenceError creates a new UnresolvedReferenceError from the
// collected dangling references.
func NewUnresolvedReferenceError(refs []DanglingRef) *UnresolvedReferenceError {
	return &UnresolvedReferenceError{Refs: refs}
}

// EmissionError represents a reference the stub emitter cannot match against
// the schema snapshot it was handed.
type EmissionError struct {
	Entity  string
	Field   string
	Ref     string
	Message string
}

// Error implements the error interface.
func (e *EmissionError) Error() string {
	var b strings.Builder
	b.WriteString("easyacumatica: emission error")
	if e.Entity != "" {
		b.WriteString(" on entity ")
		b.WriteString(e.Entity)
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Ref != "" {
		fmt.Fprintf(&b, " (ref: %s)", e.Ref)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for EmissionError.
func (e *EmissionError) Is(target error) bool {
	return target == ErrEmission
}

// NewEmissionError creates a new EmissionError.
func NewEmissionError(entity, field, ref, message string) *EmissionError {
	return &EmissionError{
		Entity:  entity,
		Field:   field,
		Ref:     ref,
		Message: message,
	}
}

// InvalidFieldError represents a filter expression built on an empty or
// blank field name.
type InvalidFieldError struct {
	Expr string // The surrounding expression text, for context.
}

// Error implements the error interface.
func (e *InvalidFieldError) Error() string {
	if e.Expr != "" {
		return fmt.Sprintf("easyacumatica: invalid filter field in %q: field name is empty", e.Expr)
	}
	return "easyacumatica: invalid filter field: field name is empty"
}

// Is reports whether the target matches the sentinel error for InvalidFieldError.
func (e *InvalidFieldError) Is(target error) bool {
	return target == ErrInvalidFilter
}

// NewInvalidFieldError creates a new InvalidFieldError.
func NewInvalidFieldError(expr string) *InvalidFieldError {
	return &InvalidFieldError{Expr: expr}
}

// UnsupportedLiteralError represents a filter literal whose scalar domain has
// no defined OData encoding.
type UnsupportedLiteralError struct {
	Value any
}

// Error implements the error interface.
func (e *UnsupportedLiteralError) Error() string {
	return fmt.Sprintf("easyacumatica: unsupported filter literal of type %T (value: %v)", e.Value, e.Value)
}

// Is reports whether the target matches the sentinel error for UnsupportedLiteralError.
func (e *UnsupportedLiteralError) Is(target error) bool {
	return target == ErrInvalidFilter
}

// NewUnsupportedLiteralError creates a new UnsupportedLiteralError.
func NewUnsupportedLiteralError(value any) *UnsupportedLiteralError {
	return &UnsupportedLiteralError{Value: value}
}

// IsSchemaError reports whether the error is a SchemaError.
func IsSchemaError(err error) bool {
	var schemaErr *SchemaError
	return errors.As(err, &schemaErr)
}

// IsUnresolvedReferenceError reports whether the error is an UnresolvedReferenceError.
func IsUnresolvedReferenceError(err error) bool {
	var refErr *UnresolvedReferenceError
	return errors.As(err, &refErr)
}

// IsEmissionError reports whether the error is an EmissionError.
func IsEmissionError(err error) bool {
	var emitErr *EmissionError
	return errors.As(err, &emitErr)
}

// IsInvalidFieldError reports whether the error is an InvalidFieldError.
func IsInvalidFieldError(err error) bool {
	var fieldErr *InvalidFieldError
	return errors.As(err, &fieldErr)
}

// IsUnsupportedLiteralError reports whether the error is an UnsupportedLiteralError.
func IsUnsupportedLiteralError(err error) bool {
	var litErr *UnsupportedLiteralError
	return errors.As(err, &litErr)
}

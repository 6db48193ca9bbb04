// Package domain defines the catalog entities, error taxonomy, and ports
// of the metastore.
package domain

import "fmt"

// NotFoundError indicates zero rows matched a lookup.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// AmbiguousError indicates more than one row matched a lookup that must be
// unique. It signals backing-store corruption; callers never pick a row.
type AmbiguousError struct {
	Message string
}

func (e *AmbiguousError) Error() string { return e.Message }

// ConflictError indicates a uniqueness violation on create.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// InvalidTypeError indicates a data-type descriptor that could not be parsed.
type InvalidTypeError struct {
	Message string
}

func (e *InvalidTypeError) Error() string { return e.Message }

// InvalidColumnRoleError indicates a fiber or time key that does not name a
// column of its table, or a stored column role outside the known set.
type InvalidColumnRoleError struct {
	Message string
}

func (e *InvalidColumnRoleError) Error() string { return e.Message }

// UnsupportedFunctionError indicates a partition-function name that is not
// registered.
type UnsupportedFunctionError struct {
	Message string
}

func (e *UnsupportedFunctionError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// CorruptedCatalogError indicates the bootstrap found a partial backing
// table set. It is fatal: process initialization must abort, not retry.
type CorruptedCatalogError struct {
	Message string
}

func (e *CorruptedCatalogError) Error() string { return e.Message }

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrAmbiguous creates an AmbiguousError with a formatted message.
func ErrAmbiguous(format string, args ...interface{}) *AmbiguousError {
	return &AmbiguousError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrInvalidType creates an InvalidTypeError with a formatted message.
func ErrInvalidType(format string, args ...interface{}) *InvalidTypeError {
	return &InvalidTypeError{Message: fmt.Sprintf(format, args...)}
}

// ErrInvalidColumnRole creates an InvalidColumnRoleError with a formatted message.
func ErrInvalidColumnRole(format string, args ...interface{}) *InvalidColumnRoleError {
	return &InvalidColumnRoleError{Message: fmt.Sprintf(format, args...)}
}

// ErrUnsupportedFunction creates an UnsupportedFunctionError with a formatted message.
func ErrUnsupportedFunction(format string, args ...interface{}) *UnsupportedFunctionError {
	return &UnsupportedFunctionError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrCorruptedCatalog creates a CorruptedCatalogError with a formatted message.
func ErrCorruptedCatalog(format string, args ...interface{}) *CorruptedCatalogError {
	return &CorruptedCatalogError{Message: fmt.Sprintf(format, args...)}
}

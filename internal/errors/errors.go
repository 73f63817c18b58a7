package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Bromo error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"  // 404
	ErrUnknownWorkout ErrorCode = "UNKNOWN_WORKOUT" // 404
	ErrNoCandidates   ErrorCode = "NO_CANDIDATES"   // 422
	ErrCatalogInvalid ErrorCode = "CATALOG_INVALID" // 422
	ErrCancelled      ErrorCode = "CANCELLED"       // 499
	ErrRemoteFailure  ErrorCode = "REMOTE_FAILURE"  // 502
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// BromoError represents a structured error with code, status, and details.
type BromoError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *BromoError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *BromoError {
	return &BromoError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error. kind names what was looked up ("log entry", "slot").
func NewNotFound(kind, identifier string) *BromoError {
	return &BromoError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing import or catalog file.
func NewFileNotFound(path string) *BromoError {
	return &BromoError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewUnknownWorkout creates a 404 error for a template name absent from the catalog.
func NewUnknownWorkout(name string) *BromoError {
	return &BromoError{
		Code:    ErrUnknownWorkout,
		Status:  404,
		Message: fmt.Sprintf("%q is not a known workout", name),
		Details: map[string]any{"workout": name},
	}
}

// NewNoCandidates creates a 422 error when no lift matches a category and direction,
// even with every exclusion ignored.
func NewNoCandidates(category, directionAndGroup string) *BromoError {
	return &BromoError{
		Code:    ErrNoCandidates,
		Status:  422,
		Message: fmt.Sprintf("no lifts for category %q and direction %q", category, directionAndGroup),
		Details: map[string]any{"category": category, "direction_and_group": directionAndGroup},
	}
}

// NewCatalogInvalid creates a 422 error for malformed catalog data.
func NewCatalogInvalid(source, msg string) *BromoError {
	return &BromoError{
		Code:    ErrCatalogInvalid,
		Status:  422,
		Message: fmt.Sprintf("%s: %s", source, msg),
		Details: map[string]any{"source": source},
	}
}

// NewCancelled creates a 499 error when the caller's context ends mid-operation.
func NewCancelled(op string) *BromoError {
	return &BromoError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
	}
}

// NewRemoteFailure creates a 502 error for a failed call to the remote generator.
func NewRemoteFailure(err error) *BromoError {
	msg := "remote generator failed"
	if err != nil {
		msg = fmt.Sprintf("remote generator failed: %v", err)
	}
	return &BromoError{
		Code:    ErrRemoteFailure,
		Status:  502,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *BromoError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &BromoError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if err, or anything it wraps, is a BromoError with the given code.
func Is(err error, code ErrorCode) bool {
	var bErr *BromoError
	if stderrors.As(err, &bErr) {
		return bErr.Code == code
	}
	return false
}

// As returns the BromoError carried by err, if any.
func As(err error) (*BromoError, bool) {
	var bErr *BromoError
	ok := stderrors.As(err, &bErr)
	return bErr, ok
}

package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents an intention error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrConflict       ErrorCode = "CONFLICT"        // 409
	ErrNoMatch        ErrorCode = "NO_MATCH"        // 422
	ErrCancelled      ErrorCode = "CANCELLED"       // 499
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// IntentError represents a structured error with code, status, and details.
type IntentError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	cause   error
}

// Error implements the error interface.
func (e *IntentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *IntentError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *IntentError {
	return &IntentError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewPathOutsideWorkspace creates a 400 error for source paths that escape the workspace root.
func NewPathOutsideWorkspace(path, root string) *IntentError {
	return &IntentError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: fmt.Sprintf("path %q is outside the workspace %q", path, root),
		Details: map[string]any{"path": path, "workspace": root},
	}
}

// NewUnknownOverride creates a 400 error when an override id is not in the file's history.
func NewUnknownOverride(path string, ids []string) *IntentError {
	return &IntentError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: fmt.Sprintf("overrides reference intents not recorded for %s: %v", path, ids),
		Details: map[string]any{"path": path, "unknown_ids": ids},
	}
}

// NewFileNotFound creates a 404 error for a source file that does not exist.
func NewFileNotFound(path string) *IntentError {
	return &IntentError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewConflict creates a 409 error when a change is blocked by conflicting intents.
func NewConflict(msg string, conflictingIDs []string) *IntentError {
	return &IntentError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
		Details: map[string]any{"conflicting_intent_ids": conflictingIDs},
	}
}

// NewNoMatch creates a 422 error when an edit's old text is not present in the file.
func NewNoMatch(path string) *IntentError {
	return &IntentError{
		Code:    ErrNoMatch,
		Status:  422,
		Message: fmt.Sprintf("the specified text was not found in %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewCancelled creates an error for operations stopped by context cancellation.
func NewCancelled(op string) *IntentError {
	return &IntentError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
	}
}

// NewInternal creates a 500 error for I/O and other unexpected failures.
// The underlying message is kept so callers can report it.
func NewInternal(err error) *IntentError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &IntentError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// Is checks if an error is an IntentError with the given code.
func Is(err error, code ErrorCode) bool {
	var iErr *IntentError
	if stderrors.As(err, &iErr) {
		return iErr.Code == code
	}
	return false
}

// As extracts an IntentError from err, wrapping anything else as INTERNAL.
func As(err error) *IntentError {
	var iErr *IntentError
	if stderrors.As(err, &iErr) {
		return iErr
	}
	return NewInternal(err)
}

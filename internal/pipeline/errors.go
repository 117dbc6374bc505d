package pipeline

import (
	"strings"

	"envit5d/pkg/types"
)

// validationError carries per-field problems for 422 mapping.
type validationError struct{ fields []types.FieldError }

func (e validationError) Error() string {
	parts := make([]string, len(e.fields))
	for i, f := range e.fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ErrValidation constructs a validationError from field problems.
func ErrValidation(fields ...types.FieldError) error { return validationError{fields: fields} }

// IsValidation reports whether err is a request validation failure (return 422).
func IsValidation(err error) bool {
	_, ok := err.(validationError)
	return ok
}

// ValidationDetails returns the per-field problems carried by a validation
// error, or nil when err is not one.
func ValidationDetails(err error) []types.FieldError {
	if v, ok := err.(validationError); ok {
		return v.fields
	}
	return nil
}

// notReadyError signals the backend is not loaded (return 503).
type notReadyError struct{ msg string }

func (e notReadyError) Error() string { return e.msg }

// ErrNotReady constructs a notReadyError.
func ErrNotReady(msg string) error { return notReadyError{msg: msg} }

// IsNotReady reports whether err indicates a missing/unloaded backend.
func IsNotReady(err error) bool {
	_, ok := err.(notReadyError)
	return ok
}

// tooBusyError signals queue timeout/overflow for 429 mapping.
type tooBusyError struct{}

func (tooBusyError) Error() string { return "translator too busy" }

// ErrTooBusy constructs a tooBusyError.
func ErrTooBusy() error { return tooBusyError{} }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	_, ok := err.(tooBusyError)
	return ok
}

// timeoutError signals the per-request generation deadline expired (return 504).
type timeoutError struct{}

func (timeoutError) Error() string { return "translation timed out" }

// ErrTimeout constructs a timeoutError.
func ErrTimeout() error { return timeoutError{} }

// IsTimeout reports whether err indicates the generation deadline expired.
func IsTimeout(err error) bool {
	_, ok := err.(timeoutError)
	return ok
}

// inferenceError wraps a backend failure so the HTTP layer can return a
// generic 500 while logs keep the cause.
type inferenceError struct{ err error }

func (e inferenceError) Error() string { return "inference failed: " + e.err.Error() }
func (e inferenceError) Unwrap() error { return e.err }

// ErrInference wraps err as a backend inference failure.
func ErrInference(err error) error { return inferenceError{err: err} }

// IsInference reports whether err is a wrapped backend failure.
func IsInference(err error) bool {
	_, ok := err.(inferenceError)
	return ok
}

package change

import (
	"errors"
	"fmt"
)

// NormalizeError reports a malformed input shape at the normalization
// boundary. Malformed inputs never reach the changeset algebra.
type NormalizeError struct {
	// Field is the field key whose value was malformed.
	Field string

	// Message describes the problem.
	Message string
}

func (e *NormalizeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("normalize field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("normalize: %s", e.Message)
}

// IsNormalizeError reports whether err is a NormalizeError, unwrapping
// as needed.
func IsNormalizeError(err error) bool {
	var ne *NormalizeError
	return errors.As(err, &ne)
}

// InverseError reports that inversion could not reconstruct a prior
// value. Inversion fails rather than substituting a guessed default.
type InverseError struct {
	// Field is the field key being inverted.
	Field string

	// Message describes the missing state.
	Message string

	// Err is an underlying provider error, if any.
	Err error
}

func (e *InverseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("inverse field %q: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("inverse field %q: %s", e.Field, e.Message)
}

func (e *InverseError) Unwrap() error {
	return e.Err
}

// IsInverseError reports whether err is an InverseError, unwrapping as
// needed.
func IsInverseError(err error) bool {
	var ie *InverseError
	return errors.As(err, &ie)
}

// ApplyError reports that a changeset could not be applied to a
// fieldset, e.g. a list mutation on a non-array value.
type ApplyError struct {
	Field   string
	Message string
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply field %q: %s", e.Field, e.Message)
}

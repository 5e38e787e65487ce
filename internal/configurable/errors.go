package configurable

import (
	"errors"
	"fmt"

	"github.com/nerrad567/gray-logic-onoff/internal/hardware"
)

// Domain errors for the configurable package.
var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("configurable: validation failed")

	// ErrMissingField is matched by every *MissingFieldError.
	ErrMissingField = errors.New("configurable: missing field")

	// ErrUnknownClass is returned when no descriptor is registered for a class.
	ErrUnknownClass = errors.New("configurable: unknown device class")

	// ErrDuplicateClass is returned when two factories produce the same class.
	ErrDuplicateClass = errors.New("configurable: duplicate device class")

	// ErrInvalidDescriptor is returned when a descriptor declares unusable fields.
	ErrInvalidDescriptor = errors.New("configurable: invalid descriptor")
)

// ValidationError reports a field whose raw value is missing or malformed.
// The operator fixes these by correcting the input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configurable: field %q: %s", e.Field, e.Reason)
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// MissingFieldError reports that a mandatory inherited field is absent from a
// stored instance. It indicates a corrupted or incompatible configuration.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("configurable: mandatory field %q is missing", e.Field)
}

// Is matches ErrMissingField.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// Kind classifies an error for callers that surface it to operators.
type Kind string

// Kind constants.
const (
	KindNone               Kind = ""
	KindValidation         Kind = "validation_error"
	KindMissingField       Kind = "missing_field"
	KindPortNotFound       Kind = "port_not_found"
	KindCapabilityMismatch Kind = "port_capability_mismatch"
	KindUnknownClass       Kind = "unknown_class"
	KindOther              Kind = "internal_error"
)

// ErrorKind returns the Kind of a build or validation failure.
func ErrorKind(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrMissingField):
		return KindMissingField
	case errors.Is(err, hardware.ErrPortNotFound):
		return KindPortNotFound
	case errors.Is(err, hardware.ErrPortCapabilityMismatch):
		return KindCapabilityMismatch
	case errors.Is(err, ErrUnknownClass):
		return KindUnknownClass
	default:
		return KindOther
	}
}

package instance

import (
	"errors"
	"fmt"
)

// Domain errors for the instance package.
var (
	// ErrInstanceNotFound is returned when an instance ID does not exist.
	ErrInstanceNotFound = errors.New("instance: not found")

	// ErrInstanceExists is returned when creating an instance whose ID is taken.
	ErrInstanceExists = errors.New("instance: already exists")

	// ErrInvalidInstance is returned for malformed instance records.
	ErrInvalidInstance = errors.New("instance: invalid")

	// ErrNotActive is matched by every *ActivationError.
	ErrNotActive = errors.New("instance: saved but not active")
)

// ActivationError reports that a stored instance could not be built into a
// live unit. Err is the build failure and is reachable with errors.Is/As.
type ActivationError struct {
	InstanceID string
	Err        error
}

func (e *ActivationError) Error() string {
	return fmt.Sprintf("instance %s saved but not active: %v", e.InstanceID, e.Err)
}

// Unwrap returns the build failure.
func (e *ActivationError) Unwrap() error {
	return e.Err
}

// Is matches ErrNotActive.
func (e *ActivationError) Is(target error) bool {
	return target == ErrNotActive
}

package hardware

import (
	"errors"
	"fmt"
)

// Domain errors for the hardware package.
//
// Resolution failures are returned as typed errors carrying the requested
// identifier; they also match these sentinels via errors.Is:
//
//	if errors.Is(err, hardware.ErrPortNotFound) {
//	    // ask the operator to reconcile hardware availability
//	}
var (
	// ErrPortNotFound is returned when no port is registered under an identifier.
	ErrPortNotFound = errors.New("hardware: port not found")

	// ErrPortCapabilityMismatch is returned when a port lacks the requested capability.
	ErrPortCapabilityMismatch = errors.New("hardware: port capability mismatch")

	// ErrPortExists is returned when registering a port identifier twice.
	ErrPortExists = errors.New("hardware: port already registered")

	// ErrInvalidPort is returned when a port definition is malformed.
	ErrInvalidPort = errors.New("hardware: invalid port")

	// ErrUnknownDriver is returned when a port configuration names an unsupported driver.
	ErrUnknownDriver = errors.New("hardware: unknown driver")

	// ErrNoReading is returned by Read while a port has not yet observed its level.
	ErrNoReading = errors.New("hardware: no reading yet")
)

// PortNotFoundError reports that no hardware exposes the requested port.
type PortNotFoundError struct {
	Capability Capability
	PortID     string
}

func (e *PortNotFoundError) Error() string {
	return fmt.Sprintf("hardware: no %s port with id %q", e.Capability, e.PortID)
}

// Is matches ErrPortNotFound.
func (e *PortNotFoundError) Is(target error) bool {
	return target == ErrPortNotFound
}

// PortCapabilityMismatchError reports that a port exists but cannot serve
// the requested capability.
type PortCapabilityMismatchError struct {
	Capability Capability
	PortID     string
	Available  []Capability
}

func (e *PortCapabilityMismatchError) Error() string {
	return fmt.Sprintf("hardware: port %q does not support %s (has %v)", e.PortID, e.Capability, e.Available)
}

// Is matches ErrPortCapabilityMismatch.
func (e *PortCapabilityMismatchError) Is(target error) bool {
	return target == ErrPortCapabilityMismatch
}

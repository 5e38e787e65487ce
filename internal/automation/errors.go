package automation

import "errors"

// Domain errors for the automation package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, automation.ErrAutomationOnly) {
//	    // reject manual control from UI surfaces
//	}
var (
	// ErrInvalidState is returned when a state definition is malformed.
	ErrInvalidState = errors.New("automation: invalid state")

	// ErrDuplicateState is returned when two states in a catalog share a name.
	ErrDuplicateState = errors.New("automation: duplicate state name")

	// ErrDuplicateSignal is returned when two controllable states drive the same level.
	ErrDuplicateSignal = errors.New("automation: duplicate state signal")

	// ErrEmptyCatalog is returned when building a catalog without states.
	ErrEmptyCatalog = errors.New("automation: empty state catalog")

	// ErrUnknownState is returned when commanding a state the catalog does not contain.
	ErrUnknownState = errors.New("automation: unknown state")

	// ErrReadOnlyState is returned when commanding a read-only state.
	ErrReadOnlyState = errors.New("automation: state is read-only")

	// ErrAutomationOnly is returned when a manual command targets an automation-only unit.
	ErrAutomationOnly = errors.New("automation: unit accepts automation commands only")

	// ErrPortWrite is returned when driving the port fails.
	ErrPortWrite = errors.New("automation: port write failed")

	// ErrPortRead is returned when reading the port back fails.
	ErrPortRead = errors.New("automation: port read failed")

	// ErrInvalidUnit is returned when a unit is constructed without a catalog or port.
	ErrInvalidUnit = errors.New("automation: invalid unit")

	// ErrUnitNotFound is returned when no live unit exists for an instance ID.
	ErrUnitNotFound = errors.New("automation: unit not found")
)

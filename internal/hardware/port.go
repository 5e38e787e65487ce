package hardware

import "context"

// Capability is a named hardware function a port exposes.
type Capability string

// Capability constants.
const (
	// CapRelayOutput accepts a boolean signal and switches a relay contact.
	CapRelayOutput Capability = "relay_output"

	// CapDigitalOutput accepts a boolean signal on a logic-level output.
	CapDigitalOutput Capability = "digital_output"

	// CapDigitalInput reports a boolean level and cannot be driven.
	CapDigitalInput Capability = "digital_input"
)

// AllCapabilities returns all valid capability values.
func AllCapabilities() []Capability {
	return []Capability{CapRelayOutput, CapDigitalOutput, CapDigitalInput}
}

// IsValidCapability reports whether c is a recognised capability.
func IsValidCapability(c Capability) bool {
	for _, v := range AllCapabilities() {
		if v == c {
			return true
		}
	}
	return false
}

// Port is a physical channel registered with the Pool.
type Port interface {
	// ID returns the logical identifier operators use in configuration.
	ID() string

	// Capabilities returns the functions this port supports.
	Capabilities() []Capability
}

// OutputPort is a port that can be driven with a boolean signal.
type OutputPort interface {
	Port

	// Write drives the given level onto the port.
	Write(ctx context.Context, level bool) error

	// Read returns the last level observed on the port.
	Read(ctx context.Context) (bool, error)
}

// PortFinder resolves an output port by capability and identifier.
//
// Implementations return *PortNotFoundError when nothing is registered
// under portID and *PortCapabilityMismatchError when the port exists but
// does not support capability.
type PortFinder interface {
	SearchForOutputPort(capability Capability, portID string) (OutputPort, error)
}

// PortInfo is a serialisable snapshot of a registered port.
type PortInfo struct {
	ID           string       `json:"id"`
	Driver       string       `json:"driver"`
	Capabilities []Capability `json:"capabilities"`
	Output       bool         `json:"output"`
}

// hasCapability reports whether p declares c.
func hasCapability(p Port, c Capability) bool {
	for _, pc := range p.Capabilities() {
		if pc == c {
			return true
		}
	}
	return false
}

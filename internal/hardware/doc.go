// Package hardware resolves logical port identifiers to physical outputs.
//
// A port is a single hardware channel (a relay contact, a digital output,
// an input terminal) exposed by a driver. Each port declares the
// capabilities it supports; device classes ask for a port by identifier
// and required capability:
//
//	port, err := pool.SearchForOutputPort(hardware.CapRelayOutput, "relay-3")
//	switch {
//	case errors.Is(err, hardware.ErrPortNotFound):
//	    // identifier unknown to the current hardware topology
//	case errors.Is(err, hardware.ErrPortCapabilityMismatch):
//	    // identifier exists but cannot drive a relay
//	}
//
// # Drivers
//
//   - memory: in-process latched relay, used for simulation and commissioning
//   - mqtt:   relay behind a protocol bridge (graylogic/command/{protocol}/{address})
//
// # Ownership
//
// The Pool owns port handles. Device instances only hold references; two
// instances may be configured against the same identifier, and the pool
// never substitutes a different port when a lookup fails.
//
// # Thread Safety
//
// Pool is safe for concurrent use. Topology changes (Register/Remove) take
// a write lock; lookups take a read lock.
package hardware

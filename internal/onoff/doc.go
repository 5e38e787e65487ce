// Package onoff implements the on/off device class: a load switched by a
// single relay output (a porch light, a pump, a socket).
//
// Instances carry the inherited name and description fields plus:
//
//   - portId:         identifier of a relay_output port (required)
//   - automationOnly: "true" hides the device from manual control (default "false")
//
// The class has three states. "init" is read-only and means the level has not
// been observed yet; "on" drives the relay high and "off" drives it low.
//
// Building a unit validates the port reference, resolves it against the
// hardware, reads the name, then the automation-only flag. Any failure aborts
// the build:
//
//	unit, err := descriptor.BuildAutomationUnit(inst)
//	switch configurable.ErrorKind(err) {
//	case configurable.KindValidation:     // fix the field
//	case configurable.KindPortNotFound:   // attach or reconfigure hardware
//	case configurable.KindMissingField:   // stored configuration is corrupt
//	}
package onoff

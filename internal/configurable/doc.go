// Package configurable defines how device classes describe their
// configuration and turn a stored instance into a live automation unit.
//
// A device class is a Descriptor: an ordered list of FieldDefinitions, static
// display metadata, a state catalog, and a builder. Operators supply an
// Instance whose Fields map holds raw strings keyed by field name; that map is
// the wire contract with persistence and the API. Each field validates its raw
// value into a typed Value:
//
//	v, err := field.Validate(raw, present)
//	var verr *configurable.ValidationError
//	if errors.As(err, &verr) {
//	    // tell the operator which field to fix
//	}
//
// Validation never touches hardware. Port references are only checked for
// presence here; whether the port exists is decided when the unit is built,
// so configuration survives hardware being re-ordered or temporarily absent.
//
// Device classes are registered with a Catalog through plain factories:
//
//	classes, err := configurable.NewCatalog(deps, onoff.Factory)
package configurable

package configurable

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nerrad567/gray-logic-onoff/internal/hardware"
	"github.com/nerrad567/gray-logic-onoff/internal/resource"
)

// FieldType is the semantic type of a configuration field.
type FieldType string

// FieldType constants. The set is closed; each variant carries its own
// validation in FieldDefinition.Validate.
const (
	FieldTypeString        FieldType = "string"
	FieldTypeBoolean       FieldType = "boolean"
	FieldTypePortReference FieldType = "port_reference"
)

// FieldDefinition declares one configuration field of a device class.
// Values are immutable once constructed.
type FieldDefinition struct {
	name       string
	typ        FieldType
	label      resource.Key
	required   bool
	maxLength  int
	defaultOn  bool
	capability hardware.Capability
}

// StringField declares a string field. maxLength of zero means unbounded.
func StringField(name string, label resource.Key, required bool, maxLength int) FieldDefinition {
	return FieldDefinition{
		name:      name,
		typ:       FieldTypeString,
		label:     label,
		required:  required,
		maxLength: maxLength,
	}
}

// BooleanField declares an optional boolean field with a default.
func BooleanField(name string, label resource.Key, defaultValue bool) FieldDefinition {
	return FieldDefinition{
		name:      name,
		typ:       FieldTypeBoolean,
		label:     label,
		defaultOn: defaultValue,
	}
}

// PortReferenceField declares a required reference to a hardware port that
// must support capability when the unit is built.
func PortReferenceField(name string, label resource.Key, capability hardware.Capability) FieldDefinition {
	return FieldDefinition{
		name:       name,
		typ:        FieldTypePortReference,
		label:      label,
		required:   true,
		capability: capability,
	}
}

// Name returns the field key.
func (f FieldDefinition) Name() string { return f.name }

// Type returns the field's semantic type.
func (f FieldDefinition) Type() FieldType { return f.typ }

// Label returns the hint label.
func (f FieldDefinition) Label() resource.Key { return f.label }

// Required reports whether a value must be supplied.
func (f FieldDefinition) Required() bool { return f.required }

// MaxLength returns the maximum length in characters, or zero.
func (f FieldDefinition) MaxLength() int { return f.maxLength }

// DefaultBool returns the default for boolean fields.
func (f FieldDefinition) DefaultBool() bool { return f.defaultOn }

// Capability returns the hardware capability a port reference requires.
func (f FieldDefinition) Capability() hardware.Capability { return f.capability }

// Value is a validated field value.
type Value struct {
	typ     FieldType
	str     string
	boolean bool
	present bool
}

// String returns the string or port identifier value.
func (v Value) String() string { return v.str }

// Bool returns the boolean value.
func (v Value) Bool() bool { return v.boolean }

// Present reports whether the operator supplied a non-empty value.
func (v Value) Present() bool { return v.present }

// Type returns the type of the field the value came from.
func (v Value) Type() FieldType { return v.typ }

// Validate checks a raw value against the field.
//
// present reports whether the key exists in the instance fields at all.
// Leading and trailing whitespace is not significant: a whitespace-only value
// counts as empty and string values are returned trimmed.
func (f FieldDefinition) Validate(raw string, present bool) (Value, error) {
	trimmed := strings.TrimSpace(raw)
	empty := !present || trimmed == ""

	switch f.typ {
	case FieldTypeString, FieldTypePortReference:
		if empty {
			if f.required {
				return Value{}, &ValidationError{Field: f.name, Reason: "value is required"}
			}
			return Value{typ: f.typ}, nil
		}
		if f.maxLength > 0 && utf8.RuneCountInString(trimmed) > f.maxLength {
			return Value{}, &ValidationError{
				Field:  f.name,
				Reason: fmt.Sprintf("must be at most %d characters", f.maxLength),
			}
		}
		return Value{typ: f.typ, str: trimmed, present: true}, nil

	case FieldTypeBoolean:
		if empty {
			return Value{typ: f.typ, boolean: f.defaultOn}, nil
		}
		switch strings.ToLower(trimmed) {
		case "true":
			return Value{typ: f.typ, boolean: true, present: true}, nil
		case "false":
			return Value{typ: f.typ, boolean: false, present: true}, nil
		}
		return Value{}, &ValidationError{
			Field:  f.name,
			Reason: fmt.Sprintf("%q is not a boolean (want true or false)", raw),
		}
	}

	return Value{}, fmt.Errorf("%w: field %q has unsupported type %q", ErrInvalidDescriptor, f.name, f.typ)
}

// ValidateIn validates the field's entry in fields.
func (f FieldDefinition) ValidateIn(fields Fields) (Value, error) {
	raw, present := fields[f.name]
	return f.Validate(raw, present)
}

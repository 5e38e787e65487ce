package configurable

import (
	"fmt"

	"github.com/nerrad567/gray-logic-onoff/internal/automation"
	"github.com/nerrad567/gray-logic-onoff/internal/resource"
)

// Field names shared by every device class.
const (
	FieldName        = "name"
	FieldDescription = "description"
)

// Limits for the shared fields.
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 500
)

// Category groups device classes in configuration UIs.
type Category struct {
	Name        string       `json:"name"`
	Title       resource.Key `json:"title"`
	Description resource.Key `json:"description"`
	Icon        string       `json:"-"`
}

// Metadata is the static display information of a device class.
type Metadata struct {
	Parent      Category     `json:"parent"`
	AddLabel    resource.Key `json:"add_label"`
	EditLabel   resource.Key `json:"edit_label"`
	Title       resource.Key `json:"title"`
	Description resource.Key `json:"description"`

	// Icon is SVG markup.
	Icon string `json:"-"`
}

// Descriptor describes a device class.
type Descriptor interface {
	// Class returns the class name instances are stored under.
	Class() string

	// Metadata returns display information.
	Metadata() Metadata

	// Fields returns the ordered field definitions, inherited fields first.
	Fields() []FieldDefinition

	// States returns a fresh snapshot of the class's state catalog.
	States() *automation.Catalog

	// BuildAutomationUnit turns a stored instance into a live unit. It either
	// returns a complete unit or an error, never both.
	BuildAutomationUnit(inst *Instance) (*automation.Unit, error)
}

// BaseFields returns the fields every device class inherits.
func BaseFields() []FieldDefinition {
	return []FieldDefinition{
		StringField(FieldName, resource.FieldName, true, MaxNameLength),
		StringField(FieldDescription, resource.FieldDescription, false, MaxDescriptionLength),
	}
}

// ValidateFields validates every declared field of d in declaration order
// and returns the values by field name. The first failure is returned.
// Keys in fields that d does not declare are ignored.
func ValidateFields(d Descriptor, fields Fields) (map[string]Value, error) {
	defs := d.Fields()
	values := make(map[string]Value, len(defs))
	for _, f := range defs {
		v, err := f.ValidateIn(fields)
		if err != nil {
			return nil, err
		}
		values[f.Name()] = v
	}
	return values, nil
}

// LookupField returns the definition named name.
func LookupField(d Descriptor, name string) (FieldDefinition, bool) {
	for _, f := range d.Fields() {
		if f.Name() == name {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// checkDescriptor rejects descriptors with unnamed or duplicated fields.
func checkDescriptor(d Descriptor) error {
	if d.Class() == "" {
		return fmt.Errorf("%w: empty class name", ErrInvalidDescriptor)
	}
	seen := make(map[string]bool)
	for _, f := range d.Fields() {
		if f.Name() == "" {
			return fmt.Errorf("%w: %s declares an unnamed field", ErrInvalidDescriptor, d.Class())
		}
		if seen[f.Name()] {
			return fmt.Errorf("%w: %s declares field %q twice", ErrInvalidDescriptor, d.Class(), f.Name())
		}
		seen[f.Name()] = true
	}
	return nil
}

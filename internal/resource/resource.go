// Package resource holds language-agnostic label keys.
//
// Device descriptors and state catalogs reference labels by Key; rendering
// them in a particular language is the job of the presentation layer. The
// package ships English defaults so the API can return something readable
// when no translation table is configured.
package resource

// Key identifies a user-facing string.
type Key string

// Label keys shared across device classes.
const (
	FieldName        Key = "field.name"
	FieldDescription Key = "field.description"

	StateUnknown Key = "state.unknown"
	StateOn      Key = "state.on"
	StateOff     Key = "state.off"
	ActionOn     Key = "action.on"
	ActionOff    Key = "action.off"
)

// Label keys for the on/off device class and its category.
const (
	OnOffAdd         Key = "onoff.add"
	OnOffEdit        Key = "onoff.edit"
	OnOffTitle       Key = "onoff.title"
	OnOffDescription Key = "onoff.description"
	OnOffFieldPort   Key = "onoff.field.port"
	OnOffFieldAuto   Key = "onoff.field.automation_only"

	OnOffDevicesTitle       Key = "onoff_devices.title"
	OnOffDevicesDescription Key = "onoff_devices.description"
)

var english = map[Key]string{
	FieldName:        "Name",
	FieldDescription: "Description",

	StateUnknown: "Unknown",
	StateOn:      "On",
	StateOff:     "Off",
	ActionOn:     "Turn on",
	ActionOff:    "Turn off",

	OnOffAdd:         "Add on/off device",
	OnOffEdit:        "Edit on/off device",
	OnOffTitle:       "On/off device",
	OnOffDescription: "A device switched by a single relay output",
	OnOffFieldPort:   "Relay port",
	OnOffFieldAuto:   "Automation only",

	OnOffDevicesTitle:       "On/off devices",
	OnOffDevicesDescription: "Lights, pumps, sockets and other loads that are either on or off",
}

// English returns the default English text for k, or the key itself when
// no default exists.
func English(k Key) string {
	if s, ok := english[k]; ok {
		return s
	}
	return string(k)
}

// String returns the key.
func (k Key) String() string { return string(k) }

package configurable

import (
	"errors"
	"strings"
	"testing"

	"github.com/nerrad567/gray-logic-onoff/internal/hardware"
	"github.com/nerrad567/gray-logic-onoff/internal/resource"
)

func TestFieldDefinition_ValidateString(t *testing.T) {
	required := StringField("name", resource.FieldName, true, 10)
	optional := StringField("description", resource.FieldDescription, false, 0)

	tests := []struct {
		name    string
		field   FieldDefinition
		raw     string
		present bool
		want    string
		wantErr bool
	}{
		{name: "required present", field: required, raw: "Porch", present: true, want: "Porch"},
		{name: "required trimmed", field: required, raw: "  Porch ", present: true, want: "Porch"},
		{name: "required absent", field: required, wantErr: true},
		{name: "required empty", field: required, raw: "", present: true, wantErr: true},
		{name: "required whitespace", field: required, raw: "   ", present: true, wantErr: true},
		{name: "required too long", field: required, raw: "Porch Light", present: true, wantErr: true},
		{name: "required multibyte within limit", field: required, raw: "Küchenlich", present: true, want: "Küchenlich"},
		{name: "optional absent", field: optional, want: ""},
		{name: "optional unbounded", field: optional, raw: strings.Repeat("x", 1000), present: true, want: strings.Repeat("x", 1000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := tt.field.Validate(tt.raw, tt.present)
			if tt.wantErr {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("Validate() error = %v, want *ValidationError", err)
				}
				if verr.Field != tt.field.Name() {
					t.Errorf("ValidationError.Field = %q, want %q", verr.Field, tt.field.Name())
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if v.String() != tt.want {
				t.Errorf("Validate() = %q, want %q", v.String(), tt.want)
			}
		})
	}
}

func TestFieldDefinition_ValidateBoolean(t *testing.T) {
	defFalse := BooleanField("automationOnly", resource.OnOffFieldAuto, false)
	defTrue := BooleanField("enabled", resource.OnOffFieldAuto, true)

	tests := []struct {
		name        string
		field       FieldDefinition
		raw         string
		present     bool
		want        bool
		wantPresent bool
		wantErr     bool
	}{
		{name: "absent uses default false", field: defFalse, want: false},
		{name: "absent uses default true", field: defTrue, want: true},
		{name: "empty uses default", field: defTrue, raw: "", present: true, want: true},
		{name: "true", field: defFalse, raw: "true", present: true, want: true, wantPresent: true},
		{name: "TRUE", field: defFalse, raw: "TRUE", present: true, want: true, wantPresent: true},
		{name: "False", field: defTrue, raw: " False ", present: true, want: false, wantPresent: true},
		{name: "yes is rejected", field: defFalse, raw: "yes", present: true, wantErr: true},
		{name: "1 is rejected", field: defFalse, raw: "1", present: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := tt.field.Validate(tt.raw, tt.present)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("Validate() error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if v.Bool() != tt.want || v.Present() != tt.wantPresent {
				t.Errorf("Validate() = (%v, present %v), want (%v, present %v)", v.Bool(), v.Present(), tt.want, tt.wantPresent)
			}
		})
	}
}

func TestFieldDefinition_ValidatePortReference(t *testing.T) {
	f := PortReferenceField("portId", resource.OnOffFieldPort, hardware.CapRelayOutput)

	if !f.Required() || f.Capability() != hardware.CapRelayOutput || f.Type() != FieldTypePortReference {
		t.Errorf("PortReferenceField() = %+v", f)
	}
	// Any non-empty identifier is accepted; hardware is not consulted.
	if v, err := f.Validate("relay-does-not-exist", true); err != nil || v.String() != "relay-does-not-exist" {
		t.Errorf("Validate() = %q, %v", v.String(), err)
	}
	if _, err := f.Validate("", true); !errors.Is(err, ErrValidation) {
		t.Errorf("Validate(empty) error = %v, want ErrValidation", err)
	}
}

func TestFieldDefinition_ValidateIn(t *testing.T) {
	f := StringField("name", resource.FieldName, true, 0)

	if _, err := f.ValidateIn(Fields{"other": "x"}); !errors.Is(err, ErrValidation) {
		t.Errorf("ValidateIn(missing) error = %v, want ErrValidation", err)
	}
	if v, err := f.ValidateIn(Fields{"name": "Pump"}); err != nil || v.String() != "Pump" {
		t.Errorf("ValidateIn() = %q, %v", v.String(), err)
	}
}

func TestFieldDefinition_UnsupportedType(t *testing.T) {
	f := FieldDefinition{name: "weird", typ: FieldType("colour")}
	if _, err := f.Validate("red", true); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("Validate() error = %v, want ErrInvalidDescriptor", err)
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, KindNone},
		{&ValidationError{Field: "portId", Reason: "value is required"}, KindValidation},
		{&MissingFieldError{Field: "name"}, KindMissingField},
		{&hardware.PortNotFoundError{PortID: "relay-9"}, KindPortNotFound},
		{&hardware.PortCapabilityMismatchError{PortID: "in-1"}, KindCapabilityMismatch},
		{ErrUnknownClass, KindUnknownClass},
		{errors.New("disk full"), KindOther},
	}
	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestMissingFieldIsNotValidation(t *testing.T) {
	err := &MissingFieldError{Field: "name"}
	if errors.Is(err, ErrValidation) {
		t.Error("MissingFieldError matched ErrValidation")
	}
	if !strings.Contains(err.Error(), "name") {
		t.Errorf("Error() = %q, want field name", err.Error())
	}
}

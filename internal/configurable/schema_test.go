package configurable

import (
	"errors"
	"strings"
	"testing"

	"github.com/nerrad567/gray-logic-onoff/internal/hardware"
	"github.com/nerrad567/gray-logic-onoff/internal/resource"
)

func TestCatalog_ValidatePayload(t *testing.T) {
	c, err := NewCatalog(Deps{}, stubFactory("lamp", "a",
		PortReferenceField("portId", resource.OnOffFieldPort, hardware.CapRelayOutput),
		BooleanField("automationOnly", resource.OnOffFieldAuto, false),
	))
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	tests := []struct {
		name    string
		payload string
		wantErr error
	}{
		{name: "valid", payload: `{"fields":{"name":"Porch","portId":"relay-3"}}`},
		{name: "valid with class", payload: `{"class":"lamp","fields":{"name":"Porch"}}`},
		// Missing required fields are left to the field validators.
		{name: "empty fields", payload: `{"fields":{}}`},
		// Length and boolean token rules are also left to the field validators.
		{name: "over-long name", payload: `{"fields":{"name":"` + strings.Repeat("x", MaxNameLength+1) + `"}}`},
		{name: "non-boolean token", payload: `{"fields":{"automationOnly":"maybe"}}`},
		{name: "unknown field value must be string", payload: `{"fields":{"extra":1}}`, wantErr: ErrSchemaViolation},
		{name: "boolean as JSON bool", payload: `{"fields":{"automationOnly":true}}`, wantErr: ErrSchemaViolation},
		{name: "missing fields", payload: `{"class":"lamp"}`, wantErr: ErrSchemaViolation},
		{name: "wrong class", payload: `{"class":"pump","fields":{}}`, wantErr: ErrSchemaViolation},
		{name: "unexpected top-level key", payload: `{"fields":{},"state":"on"}`, wantErr: ErrSchemaViolation},
		{name: "not JSON", payload: `{`, wantErr: ErrSchemaViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.ValidatePayload("lamp", []byte(tt.payload))
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidatePayload() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePayload() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if err := c.ValidatePayload("pump", []byte(`{}`)); !errors.Is(err, ErrUnknownClass) {
		t.Errorf("ValidatePayload(unknown class) error = %v, want ErrUnknownClass", err)
	}
}

func TestSchemaDocument(t *testing.T) {
	d := stubFactory("lamp", "a", BooleanField("automationOnly", resource.OnOffFieldAuto, false))(Deps{})
	doc := SchemaDocument(d)

	props := doc["properties"].(map[string]any)
	fields := props["fields"].(map[string]any)["properties"].(map[string]any)
	auto := fields["automationOnly"].(map[string]any)
	if auto["default"] != "false" || auto["x-fieldType"] != "boolean" {
		t.Errorf("automationOnly schema = %+v", auto)
	}
	if name := fields["name"].(map[string]any); name["x-maxLength"] != MaxNameLength {
		t.Errorf("name schema = %+v", name)
	}
}

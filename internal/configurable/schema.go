package configurable

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nerrad567/gray-logic-onoff/internal/resource"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrSchemaViolation is returned when an instance payload is structurally invalid.
var ErrSchemaViolation = errors.New("configurable: payload does not match schema")

// SchemaDocument returns the JSON Schema of an instance payload for d.
//
// The schema checks structure only: every field value is a string and no
// undeclared top-level keys are present. Required-ness and value rules stay
// with the field validators so callers get typed field errors.
func SchemaDocument(d Descriptor) map[string]any {
	props := make(map[string]any)
	for _, f := range d.Fields() {
		p := map[string]any{
			"type":        "string",
			"title":       resource.English(f.Label()),
			"x-label":     string(f.Label()),
			"x-fieldType": string(f.Type()),
		}
		switch f.Type() {
		case FieldTypeBoolean:
			p["default"] = fmt.Sprintf("%t", f.DefaultBool())
			p["examples"] = []string{"true", "false"}
		case FieldTypePortReference:
			p["x-capability"] = string(f.Capability())
		}
		if f.MaxLength() > 0 {
			p["x-maxLength"] = f.MaxLength()
		}
		props[f.Name()] = p
	}

	return map[string]any{
		"$schema":  "http://json-schema.org/draft-07/schema#",
		"title":    resource.English(d.Metadata().Title),
		"type":     "object",
		"required": []string{"fields"},
		"properties": map[string]any{
			"id":    map[string]any{"type": "string"},
			"class": map[string]any{"const": d.Class()},
			"fields": map[string]any{
				"type":                 "object",
				"properties":           props,
				"additionalProperties": map[string]any{"type": "string"},
			},
		},
		"additionalProperties": false,
	}
}

// compileSchema compiles the payload schema of d.
func compileSchema(d Descriptor) (*jsonschema.Schema, error) {
	doc, err := json.Marshal(SchemaDocument(d))
	if err != nil {
		return nil, fmt.Errorf("marshalling schema for %s: %w", d.Class(), err)
	}

	url := "class-" + d.Class() + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("adding schema resource for %s: %w", d.Class(), err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compiling schema for %s: %w", d.Class(), err)
	}
	return schema, nil
}

// ValidatePayload checks a JSON instance payload against the schema of class.
//
// Returns ErrUnknownClass for unregistered classes and ErrSchemaViolation
// (wrapping the validator's detail) for malformed payloads.
func (c *Catalog) ValidatePayload(class string, payload []byte) error {
	schema, ok := c.schemas[class]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownClass, class)
	}

	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", ErrSchemaViolation, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	return nil
}

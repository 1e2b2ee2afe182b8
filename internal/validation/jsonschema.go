package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/rendis/flowedit/pkg/schema"
)

const settingsSchemaURL = "https://flowedit.dev/schemas/settings.json"

// settingsSchemaJSON is the JSON Schema for the host settings file.
// Unknown keys are rejected so typos do not silently fall back to defaults.
const settingsSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://flowedit.dev/schemas/settings.json",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "log_level": {"enum": ["debug", "info", "warn", "warning", "error"]},
    "log_format": {"enum": ["text", "json"]},
    "log_file": {"type": "string", "minLength": 1},
    "grid_size": {"type": "number", "exclusiveMinimum": 0},
    "width": {"type": "number", "exclusiveMinimum": 0},
    "height": {"type": "number", "exclusiveMinimum": 0},
    "straight_links": {"type": "boolean"},
    "event_buffer": {"type": "integer", "minimum": 1}
  }
}`

// SchemaValidator implements Validator with a compiled JSON Schema
// (Draft 2020-12). It is safe for concurrent use.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

// NewSettingsValidator returns a validator for settings files.
func NewSettingsValidator() (*SchemaValidator, error) {
	return NewSchemaValidator(settingsSchemaURL, settingsSchemaJSON)
}

// NewSchemaValidator compiles schemaJSON, registered under url.
func NewSchemaValidator(url, schemaJSON string) (*SchemaValidator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &SchemaValidator{schema: compiled}, nil
}

// Validate checks doc against the schema.
func (v *SchemaValidator) Validate(doc map[string]any) error {
	if doc == nil {
		return schema.NewError(schema.ErrCodeValidation, "document is nil")
	}

	val, err := toJSONValue(doc)
	if err != nil {
		return schema.NewError(schema.ErrCodeValidation, "failed to serialize document").WithCause(err)
	}
	if err := v.schema.Validate(val); err != nil {
		return toEditorError(err)
	}
	return nil
}

// toJSONValue round-trips a Go value through JSON encoding/decoding so that
// numeric values become json.Number (required by the jsonschema library).
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(strings.NewReader(string(b)))
}

// toEditorError converts a jsonschema.ValidationError into an EditorError
// listing every violation with its location.
func toEditorError(err error) *schema.EditorError {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return schema.NewError(schema.ErrCodeValidation, err.Error())
	}

	violations := collectViolations(verr)
	if len(violations) == 0 {
		return schema.NewError(schema.ErrCodeValidation, verr.Error())
	}
	if len(violations) == 1 {
		return schema.NewError(schema.ErrCodeValidation, violations[0]).
			WithDetails(map[string]any{"violations": violations})
	}

	msg := fmt.Sprintf("validation failed with %d errors", len(violations))
	return schema.NewError(schema.ErrCodeValidation, msg).
		WithDetails(map[string]any{"violations": violations})
}

// collectViolations walks a ValidationError tree and collects leaf messages
// prefixed with their instance locations.
func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}

	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}
var _ Validator = (*SchemaValidator)(nil)

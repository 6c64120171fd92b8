package config

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
)

// Schema returns the JSON Schema describing gate.config.yml. It mirrors the
// rules enforced by Validate, apart from the cwd containment check which
// JSON Schema cannot express.
func Schema() *jsonschema.Schema {
	nonEmpty := &jsonschema.Schema{Type: "string", MinLength: ptr(1)}
	positive := &jsonschema.Schema{Type: "integer", Minimum: ptr(1.0)}

	gate := &jsonschema.Schema{
		Type:     "object",
		Required: []string{"command"},
		Properties: map[string]*jsonschema.Schema{
			"command": {Type: "string", MinLength: ptr(1), Description: "shell command, run with sh -c"},
			"timeout": {Type: "integer", Minimum: ptr(1.0), Description: "seconds; default 60"},
			"cwd":     {Type: "string", MinLength: ptr(1), Description: "directory relative to the repository root"},
			"env": {
				Type:                 "object",
				AdditionalProperties: &jsonschema.Schema{Type: "string"},
				Description:          "merged over the inherited environment",
			},
		},
	}

	return &jsonschema.Schema{
		Schema:   "https://json-schema.org/draft/2020-12/schema",
		Title:    "gate.config.yml",
		Type:     "object",
		Required: []string{"version", "phases", "gates"},
		Properties: map[string]*jsonschema.Schema{
			"version": {Type: "integer", Const: ptr[any](1)},
			"phases": {
				Type:          "object",
				MinProperties: ptr(1),
				AdditionalProperties: &jsonschema.Schema{
					Type:     "array",
					MinItems: ptr(1),
					Items:    nonEmpty,
				},
				Description: "phase name to ordered gate names",
			},
			"gates": {
				Type:                 "object",
				MinProperties:        ptr(1),
				AdditionalProperties: gate,
			},
			"options": {
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"logTailLines":       positive,
					"stopOnFirstFailure": {Type: "boolean"},
				},
			},
		},
	}
}

// SchemaJSON returns the indented JSON encoding of Schema.
func SchemaJSON() ([]byte, error) {
	return json.MarshalIndent(Schema(), "", "  ")
}

func ptr[T any](v T) *T { return &v }

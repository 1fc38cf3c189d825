package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrDefinitionSchema indicates a definition document failed schema
// validation.
var ErrDefinitionSchema = errors.New("workflow definition does not match schema")

// definitionSchema validates the JSON shape the graph editor produces before
// a definition is accepted for execution. Semantic checks (start node,
// statuses) stay in the engine.
const definitionSchema = `{
  "type": "object",
  "required": ["id", "project_id", "name", "nodes", "statuses"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "project_id": {"type": "string", "minLength": 1},
    "name": {"type": "string", "minLength": 3},
    "nodes": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "type"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "type": {
            "type": "string",
            "enum": ["start", "status", "review", "decision", "action", "end", "timer", "parallel"]
          },
          "data": {"type": "object"}
        }
      }
    },
    "edges": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "source", "target"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "source": {"type": "string", "minLength": 1},
          "target": {"type": "string", "minLength": 1},
          "condition": {
            "type": "object",
            "required": ["field", "operator"],
            "properties": {
              "field": {
                "type": "string",
                "enum": ["approvalCount", "rejectionCount", "reviewCount", "lastDecision", "hasObservations"]
              },
              "operator": {
                "type": "string",
                "enum": ["equals", "not_equals", "greater_than", "less_than", "contains", "in"]
              }
            }
          }
        }
      }
    },
    "statuses": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "name"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`

// ValidateDefinitionJSON checks raw definition JSON against the definition
// schema and returns all violations joined into one error.
func ValidateDefinitionJSON(raw []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(definitionSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}

	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}

	return fmt.Errorf("%w: %s", ErrDefinitionSchema, strings.Join(violations, "; "))
}

// UnmarshalDefinition schema-checks and decodes raw definition JSON.
func UnmarshalDefinition(raw []byte) (*WorkflowDefinition, error) {
	if err := ValidateDefinitionJSON(raw); err != nil {
		return nil, err
	}

	var definition WorkflowDefinition
	if err := json.Unmarshal(raw, &definition); err != nil {
		return nil, fmt.Errorf("failed to unmarshal definition: %w", err)
	}

	return &definition, nil
}

package rubric

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrSchemaViolation indicates a rubric does not conform to the closed rubric schema.
var ErrSchemaViolation = errors.New("rubric does not match schema")

// ErrInvalidGradeOutput indicates a grade payload does not conform to the closed
// grade schema. Model output failing this check is surfaced, never coerced.
var ErrInvalidGradeOutput = errors.New("grade output does not match schema")

// Closed schemas: both are also shipped to the model as response_format
// constraints, so the same document accepts teacher edits and rejects
// non-compliant model output.
const rubricSchemaJSON = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "type": {"enum": ["numeric_match", "one_of_match", "text_criteria"]},
    "expected": {
      "anyOf": [
        {"type": "null"},
        {
          "type": "object",
          "additionalProperties": false,
          "properties": {
            "value": {"type": "number"},
            "tolerance": {"type": "number", "minimum": 0}
          },
          "required": ["value", "tolerance"]
        }
      ]
    },
    "acceptable_strings": {
      "anyOf": [
        {"type": "null"},
        {"type": "array", "items": {"type": "string"}}
      ]
    },
    "instructions": {"type": "string"},
    "partial_credit_rules": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "properties": {
          "condition": {"type": "string"},
          "score": {"type": "number", "minimum": 0, "maximum": 1}
        },
        "required": ["condition", "score"]
      }
    }
  },
  "required": ["type", "instructions", "partial_credit_rules"]
}`

const gradeSchemaJSON = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "score": {"enum": [0, 0.5, 1]},
    "score_max": {"const": 1},
    "rationale": {"type": "string", "minLength": 1}
  },
  "required": ["score", "score_max", "rationale"]
}`

var (
	rubricSchema = jsonschema.MustCompileString("rubric.json", rubricSchemaJSON)
	gradeSchema  = jsonschema.MustCompileString("grade.json", gradeSchemaJSON)
)

// SchemaJSON returns the closed rubric schema document.
func SchemaJSON() json.RawMessage {
	return json.RawMessage(rubricSchemaJSON)
}

// GradeSchemaJSON returns the closed grade schema document.
func GradeSchemaJSON() json.RawMessage {
	return json.RawMessage(gradeSchemaJSON)
}

// ValidateJSON checks raw rubric JSON against the closed rubric schema.
func ValidateJSON(data []byte) error {
	value, err := decodeValue(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}

	if err := rubricSchema.Validate(value); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}

	return nil
}

// ValidateGradeJSON checks raw grade JSON against the closed grade schema.
func ValidateGradeJSON(data []byte) error {
	value, err := decodeValue(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGradeOutput, err)
	}

	if err := gradeSchema.Validate(value); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGradeOutput, err)
	}

	return nil
}

func decodeValue(data []byte) (interface{}, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var value interface{}
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	return value, nil
}

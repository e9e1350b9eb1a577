// internal/testcases/suite.go
package testcases

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// suiteSchema validates external test-case suite files before any case is
// admitted into the registry.
const suiteSchema = `{
  "type": "object",
  "required": ["cases"],
  "properties": {
    "cases": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "biasType", "promptTemplate", "rubric"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "biasType": {
            "type": "string",
            "enum": ["anchoring", "loss_aversion", "confirmation_bias", "sunk_cost", "availability_heuristic"]
          },
          "category": {"type": "string"},
          "difficulty": {"type": "string"},
          "tags": {"type": "array", "items": {"type": "string"}},
          "promptTemplate": {"type": "string", "minLength": 1},
          "controlPrompt": {"type": "string"},
          "variables": {
            "type": "object",
            "additionalProperties": {
              "oneOf": [
                {"type": "string"},
                {"type": "array", "items": {"type": "string"}, "minItems": 1}
              ]
            }
          },
          "rubric": {
            "type": "object",
            "required": ["dimensions"],
            "properties": {
              "dimensions": {
                "type": "array",
                "minItems": 1,
                "items": {
                  "type": "object",
                  "required": ["name", "indicators", "maxScale", "weight"],
                  "properties": {
                    "name": {"type": "string", "minLength": 1},
                    "indicators": {"type": "array", "items": {"type": "string"}, "minItems": 1},
                    "maxScale": {"type": "number", "exclusiveMinimum": 0},
                    "weight": {"type": "number"}
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

// suiteFile is the on-disk shape of an external test-case suite.
type suiteFile struct {
	Cases []TestCase `json:"cases"`
}

// LoadSuite reads an external suite file, validates it against the suite
// schema, and merges its cases into the registry. Duplicate ids are
// rejected.
func (r *Registry) LoadSuite(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading test suite: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(suiteSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("validating test suite: %w", err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return fmt.Errorf("test suite %s failed validation: %s", path, strings.Join(problems, "; "))
	}

	var suite suiteFile
	if err := json.Unmarshal(raw, &suite); err != nil {
		return fmt.Errorf("parsing test suite: %w", err)
	}

	for _, tc := range suite.Cases {
		if _, err := ParseBiasType(string(tc.Bias)); err != nil {
			return fmt.Errorf("test case %q: %w", tc.ID, err)
		}
		if err := r.add(tc); err != nil {
			return err
		}
	}
	return nil
}

// internal/common/validation/submission.go
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// submissionSchema describes the expected submission shape. Answers are
// deliberately loose: the normalizer accepts many encodings and the engine
// never rejects a syntactically valid submission, so a failed check is
// advisory only.
var submissionSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"user_id", "test_type", "answers"},
	"properties": map[string]interface{}{
		"user_id":   map[string]interface{}{"type": "string", "minLength": 1},
		"test_type": map[string]interface{}{"type": "string", "minLength": 1},
		"answers":   map[string]interface{}{"type": "object"},
	},
}

type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// CheckSubmission validates the raw submission document against the schema.
// Callers log the outcome; they must not reject on it.
func CheckSubmission(doc map[string]interface{}) *ValidationResult {
	schemaLoader := gojsonschema.NewGoLoader(submissionSchema)
	documentLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &ValidationResult{Valid: false, Errors: []string{fmt.Sprintf("validation error: %v", err)}}
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return &ValidationResult{Valid: false, Errors: errs}
	}

	return &ValidationResult{Valid: true}
}

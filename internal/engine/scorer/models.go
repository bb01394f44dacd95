// internal/engine/scorer/models.go
package scorer

import (
	"assessment-engine/internal/engine/classifier"
	"assessment-engine/internal/engine/enrich"
)

// Submission is one completed questionnaire as received from the client.
// Answer keys are stringified question indices; values are whatever encoding
// the client produced, the normalizer sorts them out.
type Submission struct {
	UserID   string                 `json:"user_id"`
	TestType string                 `json:"test_type"`
	Answers  map[string]interface{} `json:"answers"`
}

// Output is the scoring response. IsDuplicate marks submissions absorbed by
// the dedup window; the returned fields then mirror the earlier result.
type Output struct {
	ResultID    string                      `json:"resultId"`
	UserID      string                      `json:"userId"`
	TestType    string                      `json:"testType"`
	PrimaryCode string                      `json:"primaryCode"`
	Dimensions  []classifier.DimensionScore `json:"dimensions"`
	TopBuckets  []string                    `json:"topBuckets,omitempty"`
	Enrichment  enrich.Enrichment           `json:"enrichment"`
	IsDuplicate bool                        `json:"isDuplicate"`
	Fallback    bool                        `json:"fallback,omitempty"`
}

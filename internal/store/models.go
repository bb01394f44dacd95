// internal/store/models.go
package store

import (
	"time"

	"assessment-engine/internal/engine/classifier"
	"assessment-engine/internal/engine/enrich"
)

// StoredResult is the persisted outcome of a scored submission. At most one
// completed row exists per (user, test type); rescoring overwrites in place.
type StoredResult struct {
	ID          string                    `json:"id"`
	UserID      string                    `json:"userId"`
	TestType    string                    `json:"testType"`
	PrimaryCode string                    `json:"primaryCode"`
	Result      classifier.ComputedResult `json:"result"`
	Enrichment  enrich.Enrichment         `json:"enrichment"`
	IsCompleted bool                      `json:"isCompleted"`
	CreatedAt   time.Time                 `json:"createdAt"`
	UpdatedAt   time.Time                 `json:"updatedAt"`
}

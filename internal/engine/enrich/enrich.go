// internal/engine/enrich/enrich.go

// Package enrich joins computed results against the static, read-only
// result configuration table. Missing rows are normal: the engine returns
// the computed result with an empty enrichment payload and never fabricates
// descriptive text.
package enrich

import (
	"context"
	"database/sql"
	"encoding/json"

	apperrors "assessment-engine/internal/common/errors"
	"assessment-engine/internal/common/logger"
)

// Enrichment is the descriptive payload attached to a computed result.
// Zero value means "descriptive metadata unavailable", not an error.
type Enrichment struct {
	Name            string   `json:"name,omitempty"`
	NameLocal       string   `json:"nameLocal,omitempty"`
	Description     string   `json:"description,omitempty"`
	Traits          []string `json:"traits,omitempty"`
	Careers         []string `json:"careers,omitempty"`
	Strengths       []string `json:"strengths,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// IsEmpty reports whether no configuration row was found.
func (e Enrichment) IsEmpty() bool {
	return e.Name == "" && e.NameLocal == "" && e.Description == "" &&
		len(e.Traits) == 0 && len(e.Careers) == 0 &&
		len(e.Strengths) == 0 && len(e.Recommendations) == 0
}

// Repository reads result configurations. The table is owned by a separate
// content process; this engine only ever selects from it.
type Repository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewRepository(db *sql.DB, log logger.Logger) *Repository {
	return &Repository{db: db, logger: log}
}

// Get looks up the configuration for (testType, resultCode). A missing row
// yields a zero Enrichment and no error; only query failures are errors.
func (r *Repository) Get(ctx context.Context, testType, resultCode string) (Enrichment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT name, name_local, description, traits, careers, strengths, recommendations
		FROM result_configurations
		WHERE test_type = $1 AND result_code = $2`, testType, resultCode)

	var e Enrichment
	var traits, careers, strengths, recommendations []byte
	err := row.Scan(&e.Name, &e.NameLocal, &e.Description, &traits, &careers, &strengths, &recommendations)
	if err == sql.ErrNoRows {
		r.logger.Debug("no result configuration for code", map[string]interface{}{
			"testType":   testType,
			"resultCode": resultCode,
		})
		return Enrichment{}, nil
	}
	if err != nil {
		return Enrichment{}, apperrors.NewConfigLookupFailedError(testType, resultCode, err)
	}

	e.Traits = decodeList(traits)
	e.Careers = decodeList(careers)
	e.Strengths = decodeList(strengths)
	e.Recommendations = decodeList(recommendations)
	return e, nil
}

// decodeList tolerates malformed JSON columns; bad content degrades to an
// empty list rather than failing the lookup.
func decodeList(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

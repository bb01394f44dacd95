// internal/store/store.go

// Package store persists scored results in Postgres and maintains the
// Redis read-through projection. One completed row per (user, test type);
// rescoring overwrites in place via upsert.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	apperrors "assessment-engine/internal/common/errors"
	"assessment-engine/internal/common/logger"

	"assessment-engine/internal/engine/classifier"
	"assessment-engine/internal/engine/enrich"
)

// Store coordinates the relational source of truth with the cache. Cache
// failures never fail a write or read; the database alone decides success.
type Store struct {
	db          *sql.DB
	cache       *Cache
	logger      logger.Logger
	dedupWindow time.Duration
}

func New(db *sql.DB, cache *Cache, dedupWindow time.Duration, log logger.Logger) *Store {
	return &Store{
		db:          db,
		cache:       cache,
		logger:      log,
		dedupWindow: dedupWindow,
	}
}

// FindRecent returns a completed result for (user, test type) updated within
// the dedup window, or nil when none exists. Used to absorb double submits.
func (s *Store) FindRecent(ctx context.Context, userID, testType string) (*StoredResult, error) {
	cutoff := time.Now().UTC().Add(-s.dedupWindow)

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, test_type, primary_code, result, enrichment, is_completed, created_at, updated_at
		FROM assessment_results
		WHERE user_id = $1 AND test_type = $2 AND is_completed = TRUE AND updated_at > $3`,
		userID, testType, cutoff)

	sr, err := scanResult(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewResultLookupFailedError(err)
	}
	return sr, nil
}

// Save upserts the result row, then synchronously invalidates the cache for
// that user before returning. The caller sees the write and the invalidation
// as one operation.
func (s *Store) Save(ctx context.Context, sr *StoredResult) (*StoredResult, error) {
	resultJSON, err := json.Marshal(sr.Result)
	if err != nil {
		return nil, apperrors.NewResultPersistFailedError(err)
	}
	enrichmentJSON, err := json.Marshal(sr.Enrichment)
	if err != nil {
		return nil, apperrors.NewResultPersistFailedError(err)
	}

	now := time.Now().UTC()
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO assessment_results (id, user_id, test_type, primary_code, result, enrichment, is_completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (user_id, test_type) DO UPDATE SET
			primary_code = EXCLUDED.primary_code,
			result = EXCLUDED.result,
			enrichment = EXCLUDED.enrichment,
			is_completed = EXCLUDED.is_completed,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`,
		sr.ID, sr.UserID, sr.TestType, sr.PrimaryCode,
		resultJSON, enrichmentJSON, sr.IsCompleted, now)

	if err := row.Scan(&sr.ID, &sr.CreatedAt); err != nil {
		return nil, apperrors.NewResultPersistFailedError(err)
	}
	sr.UpdatedAt = now

	s.cache.Invalidate(ctx, sr.UserID, sr.TestType)

	s.logger.Info("assessment result stored", map[string]interface{}{
		"resultId":    sr.ID,
		"userId":      sr.UserID,
		"testType":    sr.TestType,
		"primaryCode": sr.PrimaryCode,
	})
	return sr, nil
}

// Get reads one result through the cache, falling back to the database and
// repopulating the cache on a miss. Not found is (nil, nil).
func (s *Store) Get(ctx context.Context, userID, testType string) (*StoredResult, error) {
	if cached, hit := s.cache.Get(ctx, userID, testType); hit {
		return cached, nil
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, test_type, primary_code, result, enrichment, is_completed, created_at, updated_at
		FROM assessment_results
		WHERE user_id = $1 AND test_type = $2`,
		userID, testType)

	sr, err := scanResult(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewResultLookupFailedError(err)
	}

	s.cache.Set(ctx, sr)
	return sr, nil
}

// ListByUser returns all stored results for a user, most recently updated
// first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]*StoredResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, test_type, primary_code, result, enrichment, is_completed, created_at, updated_at
		FROM assessment_results
		WHERE user_id = $1
		ORDER BY updated_at DESC`,
		userID)
	if err != nil {
		return nil, apperrors.NewResultLookupFailedError(err)
	}
	defer rows.Close()

	var results []*StoredResult
	for rows.Next() {
		sr, err := scanResult(rows)
		if err != nil {
			return nil, apperrors.NewResultLookupFailedError(err)
		}
		results = append(results, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewResultLookupFailedError(err)
	}
	return results, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanResult(row rowScanner) (*StoredResult, error) {
	var sr StoredResult
	var resultJSON, enrichmentJSON []byte

	err := row.Scan(&sr.ID, &sr.UserID, &sr.TestType, &sr.PrimaryCode,
		&resultJSON, &enrichmentJSON, &sr.IsCompleted, &sr.CreatedAt, &sr.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(resultJSON) > 0 {
		if err := json.Unmarshal(resultJSON, &sr.Result); err != nil {
			sr.Result = classifier.ComputedResult{TestType: sr.TestType, PrimaryCode: sr.PrimaryCode}
		}
	}
	if len(enrichmentJSON) > 0 {
		if err := json.Unmarshal(enrichmentJSON, &sr.Enrichment); err != nil {
			sr.Enrichment = enrich.Enrichment{}
		}
	}
	return &sr, nil
}

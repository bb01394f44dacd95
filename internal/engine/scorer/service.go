// internal/engine/scorer/service.go

// Package scorer is the submission pipeline: normalize answers, tally,
// classify, enrich, persist. Scoring itself is pure and total; only the
// storage and configuration reads can fail.
package scorer

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	apperrors "assessment-engine/internal/common/errors"
	"assessment-engine/internal/common/logger"
	"assessment-engine/internal/common/metrics"
	"assessment-engine/internal/common/observability"
	"assessment-engine/internal/common/validation"

	"assessment-engine/internal/engine/answer"
	"assessment-engine/internal/engine/classifier"
	"assessment-engine/internal/engine/enrich"
	"assessment-engine/internal/engine/tally"
	"assessment-engine/internal/store"
)

type Service struct {
	store  *store.Store
	enrich *enrich.Repository
	obs    *observability.Observability
	logger logger.Logger
}

func NewService(st *store.Store, er *enrich.Repository, obs *observability.Observability, log logger.Logger) *Service {
	return &Service{store: st, enrich: er, obs: obs, logger: log}
}

// Compute scores a submission without touching storage. Unknown test types
// produce a generic fallback result rather than an error; the submission is
// still acknowledged and persisted.
func Compute(testType string, answers map[string]interface{}) *classifier.ComputedResult {
	tt, ok := tally.Lookup(testType)
	if !ok {
		return &classifier.ComputedResult{
			TestType:    testType,
			PrimaryCode: testType + " Test",
			Fallback:    true,
			AnswerCount: len(answers),
		}
	}

	selections := make(map[int]answer.Selection, len(answers))
	for key, raw := range answers {
		idx, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		sel := answer.Normalize(raw)
		if sel.Kind == answer.KindNone {
			continue
		}
		selections[idx] = sel
	}

	result := classifier.Classify(tally.Accumulate(tt, selections))
	result.AnswerCount = len(selections)
	return result
}

// ScoreAndStore runs the full pipeline for one submission.
func (s *Service) ScoreAndStore(ctx context.Context, sub *Submission) (*Output, error) {
	started := time.Now()
	defer func() {
		elapsed := time.Since(started)
		metrics.ScoringDuration.WithLabelValues(sub.TestType).Observe(elapsed.Seconds())
		s.obs.RecordScoringDuration(ctx, elapsed, sub.TestType)
	}()

	if check := validation.CheckSubmission(map[string]interface{}{
		"user_id":   sub.UserID,
		"test_type": sub.TestType,
		"answers":   sub.Answers,
	}); !check.Valid {
		// Advisory only. Malformed answers still score; the normalizer
		// treats unrecognized values as unanswered.
		s.logger.Warn("submission failed schema check", map[string]interface{}{
			"userId":   sub.UserID,
			"testType": sub.TestType,
			"errors":   check.Errors,
		})
	}

	recent, err := s.store.FindRecent(ctx, sub.UserID, sub.TestType)
	if err != nil {
		return nil, s.fail(ctx, sub, err)
	}
	if recent != nil {
		metrics.DuplicateSubmissions.WithLabelValues(sub.TestType).Inc()
		s.obs.RecordSubmissionScored(ctx, sub.TestType, "duplicate")
		s.logger.Info("duplicate submission absorbed", map[string]interface{}{
			"userId":   sub.UserID,
			"testType": sub.TestType,
			"resultId": recent.ID,
		})
		return outputFrom(recent, true), nil
	}

	computed := Compute(sub.TestType, sub.Answers)

	enrichment, err := s.enrich.Get(ctx, sub.TestType, computed.PrimaryCode)
	if err != nil {
		return nil, s.fail(ctx, sub, err)
	}

	saved, err := s.store.Save(ctx, &store.StoredResult{
		ID:          uuid.New().String(),
		UserID:      sub.UserID,
		TestType:    sub.TestType,
		PrimaryCode: computed.PrimaryCode,
		Result:      *computed,
		Enrichment:  enrichment,
		IsCompleted: true,
	})
	if err != nil {
		return nil, s.fail(ctx, sub, err)
	}

	metrics.SubmissionsScored.WithLabelValues(sub.TestType).Inc()
	s.obs.RecordSubmissionScored(ctx, sub.TestType, "scored")
	s.logger.Info("submission scored", map[string]interface{}{
		"userId":      sub.UserID,
		"testType":    sub.TestType,
		"resultId":    saved.ID,
		"primaryCode": saved.PrimaryCode,
		"fallback":    computed.Fallback,
	})

	return outputFrom(saved, false), nil
}

// GetResult reads a stored result for (user, test type). Not found is
// (nil, nil).
func (s *Service) GetResult(ctx context.Context, userID, testType string) (*Output, error) {
	sr, err := s.store.Get(ctx, userID, testType)
	if err != nil {
		return nil, err
	}
	if sr == nil {
		return nil, nil
	}
	return outputFrom(sr, false), nil
}

// ListResults returns all stored results for a user.
func (s *Service) ListResults(ctx context.Context, userID string) ([]*Output, error) {
	stored, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	outputs := make([]*Output, 0, len(stored))
	for _, sr := range stored {
		outputs = append(outputs, outputFrom(sr, false))
	}
	return outputs, nil
}

func (s *Service) fail(ctx context.Context, sub *Submission, err error) error {
	code := apperrors.CodeOf(err)
	metrics.ScoringFailed.WithLabelValues(sub.TestType, string(code)).Inc()
	s.obs.RecordSubmissionScored(ctx, sub.TestType, "failed")
	s.logger.WithError(err).Error("scoring failed", map[string]interface{}{
		"userId":   sub.UserID,
		"testType": sub.TestType,
		"category": apperrors.GetErrorCategory(code),
	})
	return err
}

func outputFrom(sr *store.StoredResult, duplicate bool) *Output {
	return &Output{
		ResultID:    sr.ID,
		UserID:      sr.UserID,
		TestType:    sr.TestType,
		PrimaryCode: sr.PrimaryCode,
		Dimensions:  sr.Result.Dimensions,
		TopBuckets:  sr.Result.TopBuckets,
		Enrichment:  sr.Enrichment,
		IsDuplicate: duplicate,
		Fallback:    sr.Result.Fallback,
	}
}

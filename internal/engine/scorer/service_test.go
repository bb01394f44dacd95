// internal/engine/scorer/service_test.go
package scorer

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"

	apperrors "assessment-engine/internal/common/errors"
	"assessment-engine/internal/common/logger"
	"assessment-engine/internal/common/observability"
	"assessment-engine/internal/engine/enrich"
	"assessment-engine/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	log := logger.NewNoOpLogger()
	cache := store.NewCache(client, time.Hour, log)
	resultStore := store.New(db, cache, 5*time.Minute, log)
	enrichRepo := enrich.NewRepository(db, log)

	return NewService(resultStore, enrichRepo, &observability.Observability{}, log), mock
}

func mbtiSubmission() *Submission {
	answers := make(map[string]interface{}, 40)
	for i := 0; i < 40; i++ {
		answers[strconv.Itoa(i)] = "A"
	}
	return &Submission{UserID: "user-1", TestType: "mbti", Answers: answers}
}

func expectNoRecent(mock sqlmock.Sqlmock, userID, testType string) {
	mock.ExpectQuery("SELECT (.+) FROM assessment_results").
		WithArgs(userID, testType, sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)
}

func expectEnrichment(mock sqlmock.Sqlmock, testType, code string, found bool) {
	q := mock.ExpectQuery("SELECT name, name_local, description").
		WithArgs(testType, code)
	if !found {
		q.WillReturnError(sql.ErrNoRows)
		return
	}
	q.WillReturnRows(sqlmock.NewRows([]string{
		"name", "name_local", "description", "traits", "careers", "strengths", "recommendations",
	}).AddRow("The Executive", "Sang Eksekutif", "Organized and driven.",
		[]byte(`["organized"]`), []byte(`["manager"]`), []byte(`[]`), []byte(`[]`)))
}

func expectSave(mock sqlmock.Sqlmock, userID, testType, code string) {
	mock.ExpectQuery("INSERT INTO assessment_results").
		WithArgs(sqlmock.AnyArg(), userID, testType, code,
			sqlmock.AnyArg(), sqlmock.AnyArg(), true, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
			AddRow("saved-id", time.Now().UTC()))
}

// ==========================
// Pure Computation
// ==========================

func TestCompute_Deterministic(t *testing.T) {
	answers := map[string]interface{}{
		"0": "A", "1": "agree", "2": map[string]interface{}{"score": 4.0},
		"10": "b", "20": "tidak setuju", "30": 5.0,
	}

	first := Compute("mbti", answers)
	second := Compute("mbti", answers)

	assert.Equal(t, first, second)
	assert.Equal(t, 6, first.AnswerCount)
	assert.False(t, first.Fallback)
}

func TestCompute_UnknownTestTypeFallback(t *testing.T) {
	result := Compute("astrology", map[string]interface{}{"0": "A", "1": "B"})

	assert.True(t, result.Fallback)
	assert.Equal(t, "astrology Test", result.PrimaryCode)
	assert.Equal(t, 2, result.AnswerCount)
	assert.Empty(t, result.Dimensions)
}

func TestCompute_NonNumericKeysIgnored(t *testing.T) {
	result := Compute("mbti", map[string]interface{}{
		"0":     "A",
		"first": "A",
		"":      "B",
	})
	assert.Equal(t, 1, result.AnswerCount)
}

func TestCompute_UnrecognizedAnswersDoNotCount(t *testing.T) {
	result := Compute("mbti", map[string]interface{}{
		"0": "A",
		"1": "something unparseable",
		"2": nil,
	})
	assert.Equal(t, 1, result.AnswerCount)
}

func TestCompute_EmptyAnswers(t *testing.T) {
	result := Compute("mbti", map[string]interface{}{})
	assert.Equal(t, "ESTJ", result.PrimaryCode)
	assert.Equal(t, 0, result.AnswerCount)
}

// ==========================
// Full Pipeline
// ==========================

func TestScoreAndStore_FreshSubmission(t *testing.T) {
	service, mock := setupService(t)
	sub := mbtiSubmission()

	expectNoRecent(mock, "user-1", "mbti")
	expectEnrichment(mock, "mbti", "ESTJ", true)
	expectSave(mock, "user-1", "mbti", "ESTJ")

	out, err := service.ScoreAndStore(context.Background(), sub)
	require.NoError(t, err)

	assert.Equal(t, "saved-id", out.ResultID)
	assert.Equal(t, "ESTJ", out.PrimaryCode)
	assert.False(t, out.IsDuplicate)
	assert.False(t, out.Fallback)
	assert.Equal(t, "The Executive", out.Enrichment.Name)
	assert.Len(t, out.Dimensions, 4)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreAndStore_DuplicateAbsorbed(t *testing.T) {
	service, mock := setupService(t)

	resultJSON, _ := json.Marshal(Compute("mbti", mbtiSubmission().Answers))
	mock.ExpectQuery("SELECT (.+) FROM assessment_results").
		WithArgs("user-1", "mbti", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "test_type", "primary_code", "result", "enrichment",
			"is_completed", "created_at", "updated_at",
		}).AddRow("earlier-id", "user-1", "mbti", "ESTJ",
			resultJSON, []byte(`{}`), true, time.Now(), time.Now()))

	out, err := service.ScoreAndStore(context.Background(), mbtiSubmission())
	require.NoError(t, err)

	// No insert happened; the earlier result is returned as-is.
	assert.True(t, out.IsDuplicate)
	assert.Equal(t, "earlier-id", out.ResultID)
	assert.Equal(t, "ESTJ", out.PrimaryCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreAndStore_UnknownTypeStillPersisted(t *testing.T) {
	service, mock := setupService(t)
	sub := &Submission{
		UserID:   "user-1",
		TestType: "astrology",
		Answers:  map[string]interface{}{"0": "A"},
	}

	expectNoRecent(mock, "user-1", "astrology")
	expectEnrichment(mock, "astrology", "astrology Test", false)
	expectSave(mock, "user-1", "astrology", "astrology Test")

	out, err := service.ScoreAndStore(context.Background(), sub)
	require.NoError(t, err)

	assert.True(t, out.Fallback)
	assert.Equal(t, "astrology Test", out.PrimaryCode)
	assert.True(t, out.Enrichment.IsEmpty())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreAndStore_MissingEnrichmentIsNotFatal(t *testing.T) {
	service, mock := setupService(t)
	sub := mbtiSubmission()

	expectNoRecent(mock, "user-1", "mbti")
	expectEnrichment(mock, "mbti", "ESTJ", false)
	expectSave(mock, "user-1", "mbti", "ESTJ")

	out, err := service.ScoreAndStore(context.Background(), sub)
	require.NoError(t, err)
	assert.True(t, out.Enrichment.IsEmpty())
}

func TestScoreAndStore_PersistFailureSurfaces(t *testing.T) {
	service, mock := setupService(t)
	sub := mbtiSubmission()

	expectNoRecent(mock, "user-1", "mbti")
	expectEnrichment(mock, "mbti", "ESTJ", false)
	mock.ExpectQuery("INSERT INTO assessment_results").
		WillReturnError(errors.New("disk full"))

	_, err := service.ScoreAndStore(context.Background(), sub)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeResultPersistFailed, apperrors.CodeOf(err))
}

func TestScoreAndStore_DedupCheckFailureSurfaces(t *testing.T) {
	service, mock := setupService(t)

	mock.ExpectQuery("SELECT (.+) FROM assessment_results").
		WillReturnError(errors.New("connection refused"))

	_, err := service.ScoreAndStore(context.Background(), mbtiSubmission())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeResultLookupFailed, apperrors.CodeOf(err))
}

// ==========================
// Reads
// ==========================

func TestGetResult_NotFound(t *testing.T) {
	service, mock := setupService(t)

	mock.ExpectQuery("SELECT (.+) FROM assessment_results").
		WithArgs("user-1", "mbti").
		WillReturnError(sql.ErrNoRows)

	out, err := service.GetResult(context.Background(), "user-1", "mbti")
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestGetResult_AfterScoreIsConsistent(t *testing.T) {
	service, mock := setupService(t)
	sub := mbtiSubmission()

	expectNoRecent(mock, "user-1", "mbti")
	expectEnrichment(mock, "mbti", "ESTJ", true)
	expectSave(mock, "user-1", "mbti", "ESTJ")

	scored, err := service.ScoreAndStore(context.Background(), sub)
	require.NoError(t, err)

	// Save invalidated the cache, so the read goes to the database.
	computed := Compute(sub.TestType, sub.Answers)
	resultJSON, _ := json.Marshal(computed)
	mock.ExpectQuery("SELECT (.+) FROM assessment_results").
		WithArgs("user-1", "mbti").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "test_type", "primary_code", "result", "enrichment",
			"is_completed", "created_at", "updated_at",
		}).AddRow(scored.ResultID, "user-1", "mbti", scored.PrimaryCode,
			resultJSON, []byte(`{}`), true, time.Now(), time.Now()))

	read, err := service.GetResult(context.Background(), "user-1", "mbti")
	require.NoError(t, err)
	require.NotNil(t, read)
	assert.Equal(t, scored.ResultID, read.ResultID)
	assert.Equal(t, scored.PrimaryCode, read.PrimaryCode)
	assert.Equal(t, scored.Dimensions, read.Dimensions)
}

// internal/engine/enrich/enrich_test.go
package enrich

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	apperrors "assessment-engine/internal/common/errors"
	"assessment-engine/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	return db, mock
}

func TestGet_Found(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"name", "name_local", "description", "traits", "careers", "strengths", "recommendations",
	}).AddRow(
		"The Commander", "Sang Komandan", "Bold, imaginative leaders.",
		[]byte(`["decisive","strategic"]`),
		[]byte(`["executive","entrepreneur"]`),
		[]byte(`["leadership"]`),
		[]byte(`["delegate more"]`),
	)

	mock.ExpectQuery("SELECT name, name_local, description").
		WithArgs("mbti", "ENTJ").
		WillReturnRows(rows)

	repo := NewRepository(db, logger.NewNoOpLogger())
	e, err := repo.Get(context.Background(), "mbti", "ENTJ")

	require.NoError(t, err)
	assert.False(t, e.IsEmpty())
	assert.Equal(t, "The Commander", e.Name)
	assert.Equal(t, "Sang Komandan", e.NameLocal)
	assert.Equal(t, []string{"decisive", "strategic"}, e.Traits)
	assert.Equal(t, []string{"executive", "entrepreneur"}, e.Careers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_MissingRowIsNotAnError(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT name, name_local, description").
		WithArgs("riasec", "XYZ").
		WillReturnError(sql.ErrNoRows)

	repo := NewRepository(db, logger.NewNoOpLogger())
	e, err := repo.Get(context.Background(), "riasec", "XYZ")

	require.NoError(t, err)
	assert.True(t, e.IsEmpty())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_QueryFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT name, name_local, description").
		WithArgs("mbti", "INTJ").
		WillReturnError(errors.New("connection reset"))

	repo := NewRepository(db, logger.NewNoOpLogger())
	_, err := repo.Get(context.Background(), "mbti", "INTJ")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConfigLookupFailed, apperrors.CodeOf(err))
	assert.True(t, apperrors.IsRetryable(err))
}

func TestGet_MalformedListColumns(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"name", "name_local", "description", "traits", "careers", "strengths", "recommendations",
	}).AddRow(
		"Visual Learner", "", "Learns by seeing.",
		[]byte(`{not json`), nil, []byte(`[]`), []byte(`["use diagrams"]`),
	)

	mock.ExpectQuery("SELECT name, name_local, description").
		WithArgs("learning-style", "visual").
		WillReturnRows(rows)

	repo := NewRepository(db, logger.NewNoOpLogger())
	e, err := repo.Get(context.Background(), "learning-style", "visual")

	require.NoError(t, err)
	assert.Equal(t, "Visual Learner", e.Name)
	// Bad JSON degrades to empty lists, the lookup still succeeds.
	assert.Nil(t, e.Traits)
	assert.Nil(t, e.Careers)
	assert.Equal(t, []string{"use diagrams"}, e.Recommendations)
}

package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockTx(t *testing.T) (*sqlx.Tx, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	mock.ExpectBegin()
	tx, err := sqlx.NewDb(db, "sqlmock").Beginx()
	require.NoError(t, err)
	return tx, mock
}

func TestWithSavepointReleasesOnSuccess(t *testing.T) {
	tx, mock := newMockTx(t)
	mock.ExpectExec("SAVEPOINT row_2").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("RELEASE SAVEPOINT row_2").WillReturnResult(sqlmock.NewResult(0, 0))

	called := false
	err := WithSavepoint(context.Background(), tx, "row_2", func() error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithSavepointRollsBackOnError(t *testing.T) {
	tx, mock := newMockTx(t)
	mock.ExpectExec("SAVEPOINT row_3").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("ROLLBACK TO SAVEPOINT row_3").WillReturnResult(sqlmock.NewResult(0, 0))

	boom := errors.New("boom")
	err := WithSavepoint(context.Background(), tx, "row_3", func() error { return boom })
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithSavepointRejectsUnsafeName(t *testing.T) {
	tx, _ := newMockTx(t)
	err := WithSavepoint(context.Background(), tx, "x; DROP TABLE assets", func() error { return nil })
	require.Error(t, err)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("plain")))
}

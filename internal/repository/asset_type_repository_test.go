package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetTypeRepositoryGetOrCreateByNameKeepsNameVerbatim(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssetTypeRepository(db)
	tx := beginMockTx(t, db, mock)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (name) DO NOTHING")).
		WithArgs(sqlmock.AnyArg(), "Keyboard and Mouse", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, created_at FROM asset_types WHERE name = $1")).
		WithArgs("Keyboard and Mouse").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}).AddRow("t1", "Keyboard and Mouse", time.Now()))

	at, err := repo.GetOrCreateByName(context.Background(), tx, "Keyboard and Mouse")
	require.NoError(t, err)
	assert.Equal(t, "t1", at.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetTypeRepositoryListCounts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssetTypeRepository(db)

	mock.ExpectQuery("COUNT\\(a.id\\) AS asset_count").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "asset_count"}).AddRow("t1", "Laptop", time.Now(), 3))

	types, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, 3, types[0].AssetCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

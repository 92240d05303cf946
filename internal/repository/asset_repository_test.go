package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/asset-tracker-api/internal/models"
)

var assetRowColumns = []string{"id", "asset_tag", "type_id", "type_name", "make_model", "serial_number", "ram", "hdd", "ssd", "os",
	"year_of_purchase", "condition", "remarks", "is_active", "alloted_to", "holder_first_name", "holder_last_name", "created_at", "updated_at", "deleted_at"}

func TestAssetRepositoryCreateGeneratesTag(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssetRepository(db)
	tx := beginMockTx(t, db, mock)

	mock.ExpectExec("INSERT INTO assets").WithArgs(anyArgs(16)...).WillReturnResult(sqlmock.NewResult(0, 1))

	asset := &models.Asset{TypeID: "type-1", MakeModel: "i5", IsActive: true}
	require.NoError(t, repo.Create(context.Background(), tx, asset))
	assert.NotEmpty(t, asset.ID)
	assert.NotEmpty(t, asset.AssetTag)
	assert.Equal(t, models.ConditionWorking, asset.Condition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetRepositoryUpdateNeverTouchesTag(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssetRepository(db)
	tx := beginMockTx(t, db, mock)

	mock.ExpectExec(`UPDATE assets SET type_id = \?`).WithArgs(anyArgs(14)...).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), tx, &models.Asset{ID: "a1", AssetTag: "tag", TypeID: "t1"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetRepositoryFindByIDForUpdateLocksAssetRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssetRepository(db)
	tx := beginMockTx(t, db, mock)

	now := time.Now()
	rows := sqlmock.NewRows(assetRowColumns).
		AddRow("a1", "tag-1", "t1", "Laptop", "i5", nil, "8GB", "", "256GB", "Win", 2021, "working", "", true, "e1", "John", "Doe", now, now, nil)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.id = $1 AND a.deleted_at IS NULL FOR UPDATE OF a")).WithArgs("a1").WillReturnRows(rows)

	asset, err := repo.FindByIDForUpdate(context.Background(), tx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Laptop", asset.TypeName)
	assert.Equal(t, "John Doe", asset.HolderName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetRepositoryListFilters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssetRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.deleted_at IS NULL AND a.alloted_to IS NOT NULL AND a.condition = $1 ORDER BY a.created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("damaged").
		WillReturnRows(sqlmock.NewRows(assetRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM assets a")).
		WithArgs("damaged").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	assets, total, err := repo.List(context.Background(), models.AssetFilter{Assigned: "yes", Status: "Damaged"})
	require.NoError(t, err)
	assert.Empty(t, assets)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetRepositoryListByEmployee(t *testing.T) {
	const employeeID = "5d0c2b7e-8a41-4c3e-b1f0-6e2a9d4c0001"
	db, mock := newMockDB(t)
	repo := NewAssetRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("a.alloted_to = $1")).WithArgs(employeeID).WillReturnRows(sqlmock.NewRows(assetRowColumns))
	mock.ExpectQuery("SELECT COUNT").WithArgs(employeeID).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := repo.List(context.Background(), models.AssetFilter{Assigned: employeeID})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetRepositoryListUnassigned(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssetRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.deleted_at IS NULL AND a.alloted_to IS NULL ORDER BY")).
		WillReturnRows(sqlmock.NewRows(assetRowColumns))
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := repo.List(context.Background(), models.AssetFilter{Assigned: "no"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetRepositoryListIgnoresMalformedIDs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssetRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.deleted_at IS NULL ORDER BY")).
		WillReturnRows(sqlmock.NewRows(assetRowColumns))
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := repo.List(context.Background(), models.AssetFilter{TypeID: "abc", Assigned: "emp-1"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetRepositoryListEscapesWildcards(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssetRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`LOWER(a.make_model) LIKE $1 ESCAPE '\'`)).
		WithArgs(`%50\%\_off%`).
		WillReturnRows(sqlmock.NewRows(assetRowColumns))
	mock.ExpectQuery("SELECT COUNT").WithArgs(`%50\%\_off%`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := repo.List(context.Background(), models.AssetFilter{Search: "50%_OFF"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetRepositoryFindByMalformedID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssetRepository(db)

	_, err := repo.FindByID(context.Background(), "foo")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetRepositorySoftDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssetRepository(db)
	tx := beginMockTx(t, db, mock)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE assets SET deleted_at = $2")).WithArgs("a1", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SoftDelete(context.Background(), tx, "a1", time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

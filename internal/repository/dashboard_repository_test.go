package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var employeeAssetColumns = []string{"employee_id", "first_name", "last_name", "asset_id", "make_model", "condition", "type_id", "type_name"}

func TestDashboardRepositoryEmployeeAssetsSearch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDashboardRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`LOWER(e2.first_name) LIKE $1 ESCAPE '\'`)).
		WithArgs(`%dell\_%`).
		WillReturnRows(sqlmock.NewRows(employeeAssetColumns).
			AddRow("e1", "John", "Doe", "a1", "Dell_5520", "working", "t1", "Laptop").
			AddRow("e2", "Jane", "Roe", nil, nil, nil, nil, nil))

	rows, err := repo.EmployeeAssets(context.Background(), "Dell_")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].MakeModel)
	assert.Equal(t, "Dell_5520", *rows[0].MakeModel)
	assert.Nil(t, rows[1].AssetID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardRepositoryEmployeeAssetsUnfiltered(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDashboardRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY e.first_name, e.last_name, e.id, a.created_at, a.id")).
		WillReturnRows(sqlmock.NewRows(employeeAssetColumns))

	rows, err := repo.EmployeeAssets(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/asset-tracker-api/internal/models"
)

// DashboardRepository runs the aggregate queries behind the dashboard.
type DashboardRepository struct {
	db *sqlx.DB
}

func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// Counts aggregates condition and assignment totals over non-deleted assets.
func (r *DashboardRepository) Counts(ctx context.Context) (*models.DashboardCounts, error) {
	const query = `SELECT COUNT(*) AS total_assets,
        COUNT(*) FILTER (WHERE alloted_to IS NOT NULL) AS assigned,
        COUNT(*) FILTER (WHERE condition = 'damaged') AS damaged,
        COUNT(*) FILTER (WHERE condition = 'repair') AS under_repair,
        COUNT(*) FILTER (WHERE condition = 'disposed') AS disposed
        FROM assets WHERE deleted_at IS NULL`
	var counts models.DashboardCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}
	return &counts, nil
}

// EmployeeAssets returns one row per (employee, held asset), or one row with nil
// asset columns for employees holding nothing. With a non-empty query, only
// employees whose name matches or who hold a matching asset are returned.
func (r *DashboardRepository) EmployeeAssets(ctx context.Context, query string) ([]models.EmployeeAssetRow, error) {
	base := `SELECT e.id AS employee_id, e.first_name, e.last_name, a.id AS asset_id, a.make_model, a.condition, t.id AS type_id, t.name AS type_name
        FROM employees e
        LEFT JOIN assets a ON a.alloted_to = e.id AND a.deleted_at IS NULL
        LEFT JOIN asset_types t ON t.id = a.type_id`
	var args []interface{}
	if query != "" {
		base += ` WHERE e.id IN (
            SELECT e2.id FROM employees e2
            LEFT JOIN assets a2 ON a2.alloted_to = e2.id AND a2.deleted_at IS NULL
            LEFT JOIN asset_types t2 ON t2.id = a2.type_id
            WHERE LOWER(e2.first_name) LIKE $1 ESCAPE '\' OR LOWER(e2.last_name) LIKE $1 ESCAPE '\'
               OR LOWER(COALESCE(a2.make_model, '')) LIKE $1 ESCAPE '\' OR LOWER(COALESCE(a2.serial_number, '')) LIKE $1 ESCAPE '\'
               OR LOWER(COALESCE(t2.name, '')) LIKE $1 ESCAPE '\')`
		args = append(args, containsPattern(query))
	}
	base += " ORDER BY e.first_name, e.last_name, e.id, a.created_at, a.id"

	var rows []models.EmployeeAssetRow
	if err := r.db.SelectContext(ctx, &rows, base, args...); err != nil {
		return nil, fmt.Errorf("dashboard employee assets: %w", err)
	}
	return rows, nil
}

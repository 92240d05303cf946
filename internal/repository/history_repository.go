package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/asset-tracker-api/internal/models"
)

const historyDetailSelect = `SELECT h.id, h.asset_id, h.employee_id, h.performed_by, h.action, h.timestamp, h.remarks,
        a.asset_tag, t.name AS type_name, a.make_model,
        e.first_name AS employee_first_name, e.last_name AS employee_last_name, u.username AS performed_by_username
        FROM asset_history h
        JOIN assets a ON a.id = h.asset_id
        JOIN asset_types t ON t.id = a.type_id
        LEFT JOIN employees e ON e.id = h.employee_id
        LEFT JOIN users u ON u.id = h.performed_by`

// HistoryRepository is the append-only store for asset history. It deliberately
// exposes no update or delete operations.
type HistoryRepository struct {
	db *sqlx.DB
}

func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Create appends an entry inside tx. The timestamp is assigned here and never changes.
func (r *HistoryRepository) Create(ctx context.Context, tx *sqlx.Tx, entry *models.AssetHistory) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.Timestamp = time.Now().UTC()
	const query = `INSERT INTO asset_history (id, asset_id, employee_id, performed_by, action, timestamp, remarks)
        VALUES (:id, :asset_id, :employee_id, :performed_by, :action, :timestamp, :remarks)`
	if _, err := tx.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create asset history: %w", err)
	}
	return nil
}

// List returns entries newest first.
func (r *HistoryRepository) List(ctx context.Context, filter models.HistoryFilter) ([]models.AssetHistoryDetail, int, error) {
	var conditions []string
	var args []interface{}
	if models.IsUUID(filter.AssetID) {
		conditions = append(conditions, fmt.Sprintf("h.asset_id = $%d", len(args)+1))
		args = append(args, filter.AssetID)
	}
	if models.IsUUID(filter.EmployeeID) {
		conditions = append(conditions, fmt.Sprintf("h.employee_id = $%d", len(args)+1))
		args = append(args, filter.EmployeeID)
	}
	if filter.Action != "" {
		conditions = append(conditions, fmt.Sprintf("h.action = $%d", len(args)+1))
		args = append(args, strings.ToLower(filter.Action))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}
	page, size := models.NormalizePage(filter.Page, filter.PageSize)

	query := fmt.Sprintf("%s%s ORDER BY h.timestamp DESC, h.id DESC LIMIT %d OFFSET %d", historyDetailSelect, where, size, (page-1)*size)
	var entries []models.AssetHistoryDetail
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list asset history: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM asset_history h"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count asset history: %w", err)
	}
	return withEmployeeNames(entries), total, nil
}

// Recent returns the newest limit entries across all assets.
func (r *HistoryRepository) Recent(ctx context.Context, limit int) ([]models.AssetHistoryDetail, error) {
	if limit <= 0 {
		limit = 5
	}
	var entries []models.AssetHistoryDetail
	query := fmt.Sprintf("%s ORDER BY h.timestamp DESC, h.id DESC LIMIT %d", historyDetailSelect, limit)
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("recent asset history: %w", err)
	}
	return withEmployeeNames(entries), nil
}

func withEmployeeNames(entries []models.AssetHistoryDetail) []models.AssetHistoryDetail {
	for i := range entries {
		var parts []string
		if f := entries[i].EmployeeFirstName; f != nil && *f != "" {
			parts = append(parts, *f)
		}
		if l := entries[i].EmployeeLastName; l != nil && *l != "" {
			parts = append(parts, *l)
		}
		entries[i].EmployeeName = strings.Join(parts, " ")
	}
	return entries
}

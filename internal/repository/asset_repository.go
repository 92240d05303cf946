package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/asset-tracker-api/internal/models"
)

const assetColumns = `a.id, a.asset_tag, a.type_id, t.name AS type_name, a.make_model, a.serial_number, a.ram, a.hdd, a.ssd, a.os,
        a.year_of_purchase, a.condition, a.remarks, a.is_active, a.alloted_to,
        e.first_name AS holder_first_name, e.last_name AS holder_last_name, a.created_at, a.updated_at, a.deleted_at`

const assetFrom = `FROM assets a JOIN asset_types t ON t.id = a.type_id LEFT JOIN employees e ON e.id = a.alloted_to`

// AssetRepository manages persistence for assets. Deleted assets are kept with deleted_at set.
type AssetRepository struct {
	db *sqlx.DB
}

func NewAssetRepository(db *sqlx.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// List returns non-deleted assets matching filter, newest first.
func (r *AssetRepository) List(ctx context.Context, filter models.AssetFilter) ([]models.Asset, int, error) {
	conditions := []string{"a.deleted_at IS NULL"}
	var args []interface{}

	if filter.Search != "" {
		n := len(args) + 1
		like := fmt.Sprintf("LIKE $%d ESCAPE '\\'", n)
		conditions = append(conditions, "(LOWER(a.make_model) "+like+" OR LOWER(COALESCE(a.serial_number, '')) "+like+
			" OR LOWER(t.name) "+like+" OR LOWER(COALESCE(e.first_name, '')) "+like+" OR LOWER(COALESCE(e.last_name, '')) "+like+")")
		args = append(args, containsPattern(filter.Search))
	}
	// Malformed type ids are ignored rather than sent to a UUID column.
	if models.IsUUID(filter.TypeID) {
		conditions = append(conditions, fmt.Sprintf("a.type_id = $%d", len(args)+1))
		args = append(args, filter.TypeID)
	}
	switch scope, employeeID := filter.Holder(); scope {
	case models.HolderAssigned:
		conditions = append(conditions, "a.alloted_to IS NOT NULL")
	case models.HolderUnassigned:
		conditions = append(conditions, "a.alloted_to IS NULL")
	case models.HolderEmployee:
		conditions = append(conditions, fmt.Sprintf("a.alloted_to = $%d", len(args)+1))
		args = append(args, employeeID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("a.condition = $%d", len(args)+1))
		args = append(args, strings.ToLower(filter.Status))
	}

	where := "WHERE " + strings.Join(conditions, " AND ")
	page, size := models.NormalizePage(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s %s ORDER BY a.created_at DESC LIMIT %d OFFSET %d", assetColumns, assetFrom, where, size, offset)
	var assets []models.Asset
	if err := r.db.SelectContext(ctx, &assets, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list assets: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s %s", assetFrom, where), args...); err != nil {
		return nil, 0, fmt.Errorf("count assets: %w", err)
	}
	return assets, total, nil
}

// FindByID returns a non-deleted asset.
func (r *AssetRepository) FindByID(ctx context.Context, id string) (*models.Asset, error) {
	if !models.IsUUID(id) {
		return nil, sql.ErrNoRows
	}
	query := fmt.Sprintf("SELECT %s %s WHERE a.id = $1 AND a.deleted_at IS NULL", assetColumns, assetFrom)
	var asset models.Asset
	if err := r.db.GetContext(ctx, &asset, query, id); err != nil {
		return nil, err
	}
	return &asset, nil
}

// FindByIDForUpdate loads and row-locks a non-deleted asset inside tx.
func (r *AssetRepository) FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Asset, error) {
	if !models.IsUUID(id) {
		return nil, sql.ErrNoRows
	}
	query := fmt.Sprintf("SELECT %s %s WHERE a.id = $1 AND a.deleted_at IS NULL FOR UPDATE OF a", assetColumns, assetFrom)
	var asset models.Asset
	if err := tx.GetContext(ctx, &asset, query, id); err != nil {
		return nil, err
	}
	return &asset, nil
}

// ListByHolderForUpdate locks every non-deleted asset allotted to employeeID.
func (r *AssetRepository) ListByHolderForUpdate(ctx context.Context, tx *sqlx.Tx, employeeID string) ([]models.Asset, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE a.alloted_to = $1 AND a.deleted_at IS NULL ORDER BY a.created_at, a.id FOR UPDATE OF a", assetColumns, assetFrom)
	var assets []models.Asset
	if err := tx.SelectContext(ctx, &assets, query, employeeID); err != nil {
		return nil, fmt.Errorf("list assets by holder: %w", err)
	}
	return assets, nil
}

// ListAll returns every non-deleted asset ordered by creation time then id.
func (r *AssetRepository) ListAll(ctx context.Context) ([]models.Asset, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE a.deleted_at IS NULL ORDER BY a.created_at ASC, a.id ASC", assetColumns, assetFrom)
	var assets []models.Asset
	if err := r.db.SelectContext(ctx, &assets, query); err != nil {
		return nil, fmt.Errorf("list all assets: %w", err)
	}
	return assets, nil
}

// Create inserts an asset inside tx. A fresh asset tag is generated when absent.
func (r *AssetRepository) Create(ctx context.Context, tx *sqlx.Tx, asset *models.Asset) error {
	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	if asset.AssetTag == "" {
		asset.AssetTag = uuid.NewString()
	}
	if asset.Condition == "" {
		asset.Condition = models.ConditionWorking
	}
	now := time.Now().UTC()
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = now
	}
	asset.UpdatedAt = now
	const query = `INSERT INTO assets (id, asset_tag, type_id, make_model, serial_number, ram, hdd, ssd, os, year_of_purchase, condition, remarks, is_active, alloted_to, created_at, updated_at)
        VALUES (:id, :asset_tag, :type_id, :make_model, :serial_number, :ram, :hdd, :ssd, :os, :year_of_purchase, :condition, :remarks, :is_active, :alloted_to, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, asset); err != nil {
		return fmt.Errorf("create asset: %w", err)
	}
	return nil
}

// Update writes mutable fields. The asset tag is never updated.
func (r *AssetRepository) Update(ctx context.Context, tx *sqlx.Tx, asset *models.Asset) error {
	asset.UpdatedAt = time.Now().UTC()
	const query = `UPDATE assets SET type_id = :type_id, make_model = :make_model, serial_number = :serial_number, ram = :ram, hdd = :hdd, ssd = :ssd, os = :os,
        year_of_purchase = :year_of_purchase, condition = :condition, remarks = :remarks, is_active = :is_active, alloted_to = :alloted_to, updated_at = :updated_at
        WHERE id = :id AND deleted_at IS NULL`
	if _, err := tx.NamedExecContext(ctx, query, asset); err != nil {
		return fmt.Errorf("update asset: %w", err)
	}
	return nil
}

// SoftDelete marks an asset deleted so its history stays resolvable.
func (r *AssetRepository) SoftDelete(ctx context.Context, tx *sqlx.Tx, id string, at time.Time) error {
	const query = `UPDATE assets SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	if _, err := tx.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	return nil
}

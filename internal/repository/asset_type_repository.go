package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/asset-tracker-api/internal/models"
)

// AssetTypeRepository manages device categories.
type AssetTypeRepository struct {
	db *sqlx.DB
}

func NewAssetTypeRepository(db *sqlx.DB) *AssetTypeRepository {
	return &AssetTypeRepository{db: db}
}

// List returns every type with the number of non-deleted assets using it.
func (r *AssetTypeRepository) List(ctx context.Context) ([]models.AssetType, error) {
	const query = `SELECT t.id, t.name, t.created_at, COUNT(a.id) AS asset_count
        FROM asset_types t LEFT JOIN assets a ON a.type_id = t.id AND a.deleted_at IS NULL
        GROUP BY t.id, t.name, t.created_at ORDER BY t.name`
	var types []models.AssetType
	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		return nil, fmt.Errorf("list asset types: %w", err)
	}
	return types, nil
}

func (r *AssetTypeRepository) FindByID(ctx context.Context, id string) (*models.AssetType, error) {
	if !models.IsUUID(id) {
		return nil, sql.ErrNoRows
	}
	var t models.AssetType
	if err := r.db.GetContext(ctx, &t, "SELECT id, name, created_at FROM asset_types WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a type. Duplicate names surface as a unique violation.
func (r *AssetTypeRepository) Create(ctx context.Context, t *models.AssetType) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, "INSERT INTO asset_types (id, name, created_at) VALUES ($1, $2, $3)", t.ID, t.Name, t.CreatedAt); err != nil {
		return fmt.Errorf("create asset type: %w", err)
	}
	return nil
}

// GetOrCreateByName resolves a type by its verbatim name inside tx.
func (r *AssetTypeRepository) GetOrCreateByName(ctx context.Context, tx *sqlx.Tx, name string) (*models.AssetType, error) {
	const insert = `INSERT INTO asset_types (id, name, created_at) VALUES ($1, $2, $3) ON CONFLICT (name) DO NOTHING`
	if _, err := tx.ExecContext(ctx, insert, uuid.NewString(), name, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("insert asset type: %w", err)
	}
	var t models.AssetType
	if err := tx.GetContext(ctx, &t, "SELECT id, name, created_at FROM asset_types WHERE name = $1", name); err != nil {
		return nil, fmt.Errorf("select asset type: %w", err)
	}
	return &t, nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/asset-tracker-api/internal/models"
)

// DisposalRepository persists disposal records; asset_id is unique.
type DisposalRepository struct {
	db *sqlx.DB
}

func NewDisposalRepository(db *sqlx.DB) *DisposalRepository {
	return &DisposalRepository{db: db}
}

// Create inserts a record inside tx. A second record for the same asset fails with a unique violation.
func (r *DisposalRepository) Create(ctx context.Context, tx *sqlx.Tx, record *models.DisposalRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO disposal_records (id, asset_id, disposal_date, method, certificate, remarks, created_at)
        VALUES (:id, :asset_id, :disposal_date, :method, :certificate, :remarks, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create disposal record: %w", err)
	}
	return nil
}

func (r *DisposalRepository) FindByAssetID(ctx context.Context, assetID string) (*models.DisposalRecord, error) {
	const query = `SELECT id, asset_id, disposal_date, method, certificate, remarks, created_at FROM disposal_records WHERE asset_id = $1`
	var record models.DisposalRecord
	if err := r.db.GetContext(ctx, &record, query, assetID); err != nil {
		return nil, err
	}
	return &record, nil
}

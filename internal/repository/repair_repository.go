package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/asset-tracker-api/internal/models"
)

const repairColumns = `id, asset_id, issue, status, date_reported, date_resolved, remarks, created_at`

type RepairRepository struct {
	db *sqlx.DB
}

func NewRepairRepository(db *sqlx.DB) *RepairRepository {
	return &RepairRepository{db: db}
}

func (r *RepairRepository) Create(ctx context.Context, repair *models.RepairStatus) error {
	if repair.ID == "" {
		repair.ID = uuid.NewString()
	}
	repair.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO repair_statuses (id, asset_id, issue, status, date_reported, date_resolved, remarks, created_at)
        VALUES (:id, :asset_id, :issue, :status, :date_reported, :date_resolved, :remarks, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, repair); err != nil {
		return fmt.Errorf("create repair status: %w", err)
	}
	return nil
}

// ListByAsset returns repairs newest first.
func (r *RepairRepository) ListByAsset(ctx context.Context, assetID string) ([]models.RepairStatus, error) {
	var repairs []models.RepairStatus
	query := "SELECT " + repairColumns + " FROM repair_statuses WHERE asset_id = $1 ORDER BY date_reported DESC, created_at DESC"
	if err := r.db.SelectContext(ctx, &repairs, query, assetID); err != nil {
		return nil, fmt.Errorf("list repair statuses: %w", err)
	}
	return repairs, nil
}

func (r *RepairRepository) FindByID(ctx context.Context, id string) (*models.RepairStatus, error) {
	var repair models.RepairStatus
	if err := r.db.GetContext(ctx, &repair, "SELECT "+repairColumns+" FROM repair_statuses WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &repair, nil
}

func (r *RepairRepository) Update(ctx context.Context, repair *models.RepairStatus) error {
	const query = `UPDATE repair_statuses SET issue = :issue, status = :status, date_resolved = :date_resolved, remarks = :remarks WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, repair); err != nil {
		return fmt.Errorf("update repair status: %w", err)
	}
	return nil
}

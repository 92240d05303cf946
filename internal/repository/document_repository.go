package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/asset-tracker-api/internal/models"
)

const documentColumns = `id, asset_id, name, file_path, mime_type, size_bytes, uploaded_at`

// DocumentRepository stores metadata for files kept in local storage.
type DocumentRepository struct {
	db *sqlx.DB
}

func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *models.AssetDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.UploadedAt = time.Now().UTC()
	const query = `INSERT INTO asset_documents (id, asset_id, name, file_path, mime_type, size_bytes, uploaded_at)
        VALUES (:id, :asset_id, :name, :file_path, :mime_type, :size_bytes, :uploaded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("create asset document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) ListByAsset(ctx context.Context, assetID string) ([]models.AssetDocument, error) {
	var docs []models.AssetDocument
	query := "SELECT " + documentColumns + " FROM asset_documents WHERE asset_id = $1 ORDER BY uploaded_at DESC"
	if err := r.db.SelectContext(ctx, &docs, query, assetID); err != nil {
		return nil, fmt.Errorf("list asset documents: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*models.AssetDocument, error) {
	var doc models.AssetDocument
	if err := r.db.GetContext(ctx, &doc, "SELECT "+documentColumns+" FROM asset_documents WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM asset_documents WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete asset document: %w", err)
	}
	return nil
}

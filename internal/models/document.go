package models

import "time"

// AssetDocument is a file attached to an asset (invoice, warranty card, manual).
type AssetDocument struct {
	ID          string    `db:"id" json:"id"`
	AssetID     string    `db:"asset_id" json:"asset_id"`
	Name        string    `db:"name" json:"name"`
	FilePath    string    `db:"file_path" json:"-"`
	MimeType    string    `db:"mime_type" json:"mime_type"`
	SizeBytes   int64     `db:"size_bytes" json:"size_bytes"`
	UploadedAt  time.Time `db:"uploaded_at" json:"uploaded_at"`
	DownloadURL string    `db:"-" json:"download_url,omitempty"`
}

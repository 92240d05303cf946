package models

import "time"

// DisposalRecord documents the retirement of an asset. At most one exists per asset.
type DisposalRecord struct {
	ID             string    `db:"id" json:"id"`
	AssetID        string    `db:"asset_id" json:"asset_id"`
	DisposalDate   time.Time `db:"disposal_date" json:"disposal_date"`
	Method         string    `db:"method" json:"method"`
	Certificate    *string   `db:"certificate" json:"certificate,omitempty"`
	Remarks        string    `db:"remarks" json:"remarks"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	CertificateURL string    `db:"-" json:"certificate_url,omitempty"`
}

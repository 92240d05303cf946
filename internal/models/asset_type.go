package models

import "time"

// AssetType is a device category such as Laptop or Monitor. Names are stored verbatim.
type AssetType struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	AssetCount int       `db:"asset_count" json:"asset_count"`
}

package models

import "time"

type RepairState string

const (
	RepairReported   RepairState = "reported"
	RepairInProgress RepairState = "in_progress"
	RepairResolved   RepairState = "resolved"
	RepairReplaced   RepairState = "replaced"
	RepairClosed     RepairState = "closed"
)

func (s RepairState) Valid() bool {
	switch s {
	case RepairReported, RepairInProgress, RepairResolved, RepairReplaced, RepairClosed:
		return true
	}
	return false
}

// Terminal reports whether the repair is finished.
func (s RepairState) Terminal() bool {
	return s == RepairResolved || s == RepairReplaced || s == RepairClosed
}

// RepairStatus tracks a reported issue on an asset.
type RepairStatus struct {
	ID           string      `db:"id" json:"id"`
	AssetID      string      `db:"asset_id" json:"asset_id"`
	Issue        string      `db:"issue" json:"issue"`
	Status       RepairState `db:"status" json:"status"`
	DateReported time.Time   `db:"date_reported" json:"date_reported"`
	DateResolved *time.Time  `db:"date_resolved" json:"date_resolved,omitempty"`
	Remarks      string      `db:"remarks" json:"remarks"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
}

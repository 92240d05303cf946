package models

import "time"

// HistoryAction names a semantic change recorded against an asset.
type HistoryAction string

const (
	ActionCreated     HistoryAction = "created"
	ActionAssigned    HistoryAction = "assigned"
	ActionTransferred HistoryAction = "transferred"
	ActionReturned    HistoryAction = "returned"
	ActionRepaired    HistoryAction = "repaired"
	ActionDisposed    HistoryAction = "disposed"
	ActionUpdated     HistoryAction = "updated"
	ActionDeleted     HistoryAction = "deleted"
)

func (a HistoryAction) Valid() bool {
	switch a {
	case ActionCreated, ActionAssigned, ActionTransferred, ActionReturned,
		ActionRepaired, ActionDisposed, ActionUpdated, ActionDeleted:
		return true
	}
	return false
}

// AssetHistory is an immutable audit entry.
type AssetHistory struct {
	ID          string        `db:"id" json:"id"`
	AssetID     string        `db:"asset_id" json:"asset_id"`
	EmployeeID  *string       `db:"employee_id" json:"employee_id,omitempty"`
	PerformedBy *string       `db:"performed_by" json:"performed_by,omitempty"`
	Action      HistoryAction `db:"action" json:"action"`
	Timestamp   time.Time     `db:"timestamp" json:"timestamp"`
	Remarks     string        `db:"remarks" json:"remarks"`
}

// AssetHistoryDetail joins an entry with display fields for listings and the dashboard.
type AssetHistoryDetail struct {
	AssetHistory
	AssetTag          string  `db:"asset_tag" json:"asset_tag"`
	TypeName          string  `db:"type_name" json:"type_name"`
	MakeModel         string  `db:"make_model" json:"make_model"`
	EmployeeFirstName *string `db:"employee_first_name" json:"-"`
	EmployeeLastName  *string `db:"employee_last_name" json:"-"`
	EmployeeName      string  `db:"-" json:"employee_name,omitempty"`
	PerformedByName   *string `db:"performed_by_username" json:"performed_by_username,omitempty"`
}

// HistoryFilter captures listing criteria for history entries.
type HistoryFilter struct {
	AssetID    string
	EmployeeID string
	Action     string
	Page       int
	PageSize   int
}

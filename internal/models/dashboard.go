package models

// DashboardCounts aggregates asset totals over non-deleted assets.
type DashboardCounts struct {
	TotalAssets int `db:"total_assets" json:"total_assets"`
	Assigned    int `db:"assigned" json:"assigned"`
	Damaged     int `db:"damaged" json:"damaged"`
	UnderRepair int `db:"under_repair" json:"under_repair"`
	Disposed    int `db:"disposed" json:"disposed"`
}

// DashboardCategory is a distinct asset type held by an employee.
type DashboardCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DashboardEmployee summarises one employee's holdings.
type DashboardEmployee struct {
	Sl            int                 `json:"sl"`
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	AssetCount    int                 `json:"asset_count"`
	DamagedCount  int                 `json:"damaged_count"`
	RepairCount   int                 `json:"repair_count"`
	DisposedCount int                 `json:"disposed_count"`
	SampleAssets  []string            `json:"sample_assets"`
	Categories    []DashboardCategory `json:"categories"`
}

// Dashboard is the cached payload served by the dashboard endpoint.
type Dashboard struct {
	Counts        DashboardCounts      `json:"counts"`
	RecentHistory []AssetHistoryDetail `json:"recent_history"`
	Employees     []DashboardEmployee  `json:"employees"`
}

// EmployeeAssetRow is one (employee, asset) pair used to build dashboard summaries.
type EmployeeAssetRow struct {
	EmployeeID string          `db:"employee_id"`
	FirstName  string          `db:"first_name"`
	LastName   string          `db:"last_name"`
	AssetID    *string         `db:"asset_id"`
	MakeModel  *string         `db:"make_model"`
	Condition  *AssetCondition `db:"condition"`
	TypeID     *string         `db:"type_id"`
	TypeName   *string         `db:"type_name"`
}

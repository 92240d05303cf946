package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AssetCondition is the physical state of an asset.
type AssetCondition string

const (
	ConditionWorking  AssetCondition = "working"
	ConditionDamaged  AssetCondition = "damaged"
	ConditionRepair   AssetCondition = "repair"
	ConditionObsolete AssetCondition = "obsolete"
	ConditionDisposed AssetCondition = "disposed"
)

// AssetConditions lists every condition in display order.
var AssetConditions = []AssetCondition{ConditionWorking, ConditionDamaged, ConditionRepair, ConditionObsolete, ConditionDisposed}

var conditionLabels = map[AssetCondition]string{
	ConditionWorking:  "Working",
	ConditionDamaged:  "Damaged",
	ConditionRepair:   "Under Repair",
	ConditionObsolete: "Obsolete",
	ConditionDisposed: "Disposed",
}

// Label returns the human readable name of the condition.
func (c AssetCondition) Label() string {
	if label, ok := conditionLabels[c]; ok {
		return label
	}
	return string(c)
}

func (c AssetCondition) Valid() bool {
	_, ok := conditionLabels[c]
	return ok
}

// ParseAssetCondition matches raw against condition values and labels, ignoring case.
func ParseAssetCondition(raw string) (AssetCondition, bool) {
	needle := strings.ToLower(strings.TrimSpace(raw))
	for _, c := range AssetConditions {
		if needle == string(c) || needle == strings.ToLower(c.Label()) {
			return c, true
		}
	}
	return "", false
}

// Asset is a tracked piece of IT equipment.
type Asset struct {
	ID             string         `db:"id" json:"id"`
	AssetTag       string         `db:"asset_tag" json:"asset_tag"`
	TypeID         string         `db:"type_id" json:"type_id"`
	TypeName       string         `db:"type_name" json:"type_name"`
	MakeModel      string         `db:"make_model" json:"make_model"`
	SerialNumber   *string        `db:"serial_number" json:"serial_number,omitempty"`
	RAM            string         `db:"ram" json:"ram"`
	HDD            string         `db:"hdd" json:"hdd"`
	SSD            string         `db:"ssd" json:"ssd"`
	OS             string         `db:"os" json:"os"`
	YearOfPurchase int            `db:"year_of_purchase" json:"year_of_purchase"`
	Condition      AssetCondition `db:"condition" json:"condition"`
	Remarks        string         `db:"remarks" json:"remarks"`
	IsActive       bool           `db:"is_active" json:"is_active"`
	AllotedTo      *string        `db:"alloted_to" json:"alloted_to,omitempty"`
	HolderFirst    *string        `db:"holder_first_name" json:"-"`
	HolderLast     *string        `db:"holder_last_name" json:"-"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
	DeletedAt      *time.Time     `db:"deleted_at" json:"deleted_at,omitempty"`
}

// HolderName returns "<first> <last>" of the current holder, or "".
func (a Asset) HolderName() string {
	if a.AllotedTo == nil {
		return ""
	}
	var first, last string
	if a.HolderFirst != nil {
		first = *a.HolderFirst
	}
	if a.HolderLast != nil {
		last = *a.HolderLast
	}
	return strings.TrimSpace(first + " " + last)
}

// AssetFilter captures listing criteria for assets.
type AssetFilter struct {
	Search   string
	TypeID   string
	Assigned string
	Status   string
	Page     int
	PageSize int
}

// HolderScope is how the assigned filter narrows a listing.
type HolderScope int

const (
	HolderAny HolderScope = iota
	HolderAssigned
	HolderUnassigned
	HolderEmployee
)

// Holder interprets the assigned filter. Yes-like words select any holder,
// no-like words select unassigned assets, a UUID selects that employee and
// anything else leaves the listing unfiltered.
func (f AssetFilter) Holder() (HolderScope, string) {
	value := strings.ToLower(strings.TrimSpace(f.Assigned))
	switch value {
	case "":
		return HolderAny, ""
	case "1", "true", "yes", "assigned":
		return HolderAssigned, ""
	case "0", "false", "no", "unassigned":
		return HolderUnassigned, ""
	}
	if IsUUID(value) {
		return HolderEmployee, value
	}
	return HolderAny, ""
}

// IsUUID reports whether s is a canonical UUID, the only key format the store accepts.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil && len(s) == 36
}

package models

import (
	"encoding/json"
	"time"
)

// Authentication events written to audit_logs. Asset changes live in asset_history instead.
const (
	AuditActionLogin          = "LOGIN"
	AuditActionRefresh        = "TOKEN_REFRESH"
	AuditActionLogout         = "LOGOUT"
	AuditActionPasswordChange = "PASSWORD_CHANGE"
	AuditActionUserSeed       = "USER_SEED"
)

// AuditLog is one authentication event about a user account.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// NewAccountEvent builds an audit entry about userID's own account. details
// is stored as the JSON new_values column; nil leaves it empty.
func NewAccountEvent(userID, action string, details map[string]string) *AuditLog {
	entry := &AuditLog{UserID: &userID, Action: action, Resource: "user", ResourceID: &userID}
	if len(details) > 0 {
		entry.NewValues, _ = json.Marshal(details)
	}
	return entry
}

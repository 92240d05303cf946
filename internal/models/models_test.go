package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAssetCondition(t *testing.T) {
	cases := map[string]AssetCondition{
		"working":      ConditionWorking,
		"Working":      ConditionWorking,
		"Under Repair": ConditionRepair,
		" repair ":     ConditionRepair,
		"DISPOSED":     ConditionDisposed,
	}
	for raw, want := range cases {
		got, ok := ParseAssetCondition(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
	_, ok := ParseAssetCondition("Good")
	assert.False(t, ok)
}

func TestSplitEmployeeName(t *testing.T) {
	first, last := SplitEmployeeName("  John   Ronald  Doe ")
	assert.Equal(t, "John", first)
	assert.Equal(t, "Ronald Doe", last)

	first, last = SplitEmployeeName("Prince")
	assert.Equal(t, "Prince", first)
	assert.Equal(t, "", last)
}

func TestAssetFilterHolder(t *testing.T) {
	employeeID := "7f1c0e5e-0000-0000-0000-000000000000"
	cases := []struct {
		assigned string
		scope    HolderScope
		id       string
	}{
		{"", HolderAny, ""},
		{"Yes", HolderAssigned, ""},
		{"1", HolderAssigned, ""},
		{"no", HolderUnassigned, ""},
		{"Unassigned", HolderUnassigned, ""},
		{employeeID, HolderEmployee, employeeID},
		{"42", HolderAny, ""},
		{"emp-1", HolderAny, ""},
	}
	for _, tc := range cases {
		scope, id := AssetFilter{Assigned: tc.assigned}.Holder()
		assert.Equal(t, tc.scope, scope, tc.assigned)
		assert.Equal(t, tc.id, id, tc.assigned)
	}
}

func TestIsUUID(t *testing.T) {
	assert.True(t, IsUUID("7f1c0e5e-0000-0000-0000-000000000000"))
	assert.False(t, IsUUID("urn:uuid:7f1c0e5e-0000-0000-0000-000000000000"))
	assert.False(t, IsUUID("{7f1c0e5e-0000-0000-0000-000000000000}"))
	assert.False(t, IsUUID("abc"))
	assert.False(t, IsUUID(""))
}

func TestAssetHolderName(t *testing.T) {
	id, first, last := "e1", "John", "Doe"
	assert.Equal(t, "John Doe", Asset{AllotedTo: &id, HolderFirst: &first, HolderLast: &last}.HolderName())
	assert.Equal(t, "", Asset{HolderFirst: &first}.HolderName())
}

func TestNormalizePage(t *testing.T) {
	page, size := NormalizePage(0, 500)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, size)
}

func TestNewAccountEvent(t *testing.T) {
	entry := NewAccountEvent("u-1", AuditActionLogin, map[string]string{"outcome": "success"})
	assert.Equal(t, "u-1", *entry.UserID)
	assert.Equal(t, "u-1", *entry.ResourceID)
	assert.Equal(t, "user", entry.Resource)
	assert.JSONEq(t, `{"outcome":"success"}`, string(entry.NewValues))

	assert.Nil(t, NewAccountEvent("u-1", AuditActionLogout, nil).NewValues)
}

func TestUserInfoHidesHash(t *testing.T) {
	info := User{ID: "u-1", Username: "staff", PasswordHash: "secret", Role: RoleStaff}.Info()
	assert.Equal(t, UserInfo{ID: "u-1", Username: "staff", Role: RoleStaff}, info)
}

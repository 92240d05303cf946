package models

import (
	"strings"
	"time"
)

// Employee is a person assets can be allotted to.
type Employee struct {
	ID          string    `db:"id" json:"id"`
	FirstName   string    `db:"first_name" json:"first_name"`
	LastName    string    `db:"last_name" json:"last_name"`
	Designation string    `db:"designation" json:"designation"`
	Section     string    `db:"section" json:"section"`
	Email       *string   `db:"email" json:"email,omitempty"`
	Phone       *string   `db:"phone" json:"phone,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name.
func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// EmployeeFilter captures listing criteria.
type EmployeeFilter struct {
	Search   string
	Page     int
	PageSize int
}

// SplitEmployeeName splits "Alloted To" style names: the first whitespace token is the
// first name, the remaining tokens joined by single spaces form the last name.
func SplitEmployeeName(raw string) (first, last string) {
	parts := strings.Fields(raw)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

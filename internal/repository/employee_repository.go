package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/asset-tracker-api/internal/models"
)

const employeeColumns = `id, first_name, last_name, designation, section, email, phone, created_at, updated_at`

// EmployeeRepository manages persistence for employees.
type EmployeeRepository struct {
	db *sqlx.DB
}

func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// List returns employees ordered by name.
func (r *EmployeeRepository) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	where := ""
	var args []interface{}
	if filter.Search != "" {
		where = `WHERE LOWER(first_name) LIKE $1 ESCAPE '\' OR LOWER(last_name) LIKE $1 ESCAPE '\'
            OR LOWER(designation) LIKE $1 ESCAPE '\' OR LOWER(COALESCE(email, '')) LIKE $1 ESCAPE '\'`
		args = append(args, containsPattern(filter.Search))
	}
	page, size := models.NormalizePage(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s FROM employees %s ORDER BY first_name, last_name LIMIT %d OFFSET %d", employeeColumns, where, size, (page-1)*size)
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM employees "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}
	return employees, total, nil
}

func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	if !models.IsUUID(id) {
		return nil, sql.ErrNoRows
	}
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, "SELECT "+employeeColumns+" FROM employees WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *EmployeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	if employee.ID == "" {
		employee.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	employee.CreatedAt = now
	employee.UpdatedAt = now
	const query = `INSERT INTO employees (id, first_name, last_name, designation, section, email, phone, created_at, updated_at)
        VALUES (:id, :first_name, :last_name, :designation, :section, :email, :phone, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, employee); err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

func (r *EmployeeRepository) Update(ctx context.Context, employee *models.Employee) error {
	employee.UpdatedAt = time.Now().UTC()
	const query = `UPDATE employees SET first_name = :first_name, last_name = :last_name, designation = :designation, section = :section,
        email = :email, phone = :phone, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, employee); err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	return nil
}

// Delete removes the employee row inside tx.
func (r *EmployeeRepository) Delete(ctx context.Context, tx *sqlx.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM employees WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	return nil
}

// GetOrCreateByName resolves an employee by exact first and last name, inserting one
// with import defaults when missing. The unique (first_name, last_name) constraint
// makes concurrent resolution converge on a single row.
func (r *EmployeeRepository) GetOrCreateByName(ctx context.Context, tx *sqlx.Tx, first, last string) (*models.Employee, error) {
	now := time.Now().UTC()
	const insert = `INSERT INTO employees (id, first_name, last_name, designation, section, created_at, updated_at)
        VALUES ($1, $2, $3, $4, '', $5, $5) ON CONFLICT (first_name, last_name) DO NOTHING`
	if _, err := tx.ExecContext(ctx, insert, uuid.NewString(), first, last, "Unknown", now); err != nil {
		return nil, fmt.Errorf("insert employee: %w", err)
	}
	var employee models.Employee
	query := "SELECT " + employeeColumns + " FROM employees WHERE first_name = $1 AND last_name = $2"
	if err := tx.GetContext(ctx, &employee, query, first, last); err != nil {
		return nil, fmt.Errorf("select employee: %w", err)
	}
	return &employee, nil
}

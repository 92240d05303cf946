package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/asset-tracker-api/internal/models"
	appErrors "github.com/noah-isme/asset-tracker-api/pkg/errors"
)

type stubEmployeeRepo struct {
	byID    map[string]models.Employee
	names   map[string]bool
	deleted []string
}

func newStubEmployeeRepo(employees ...models.Employee) *stubEmployeeRepo {
	repo := &stubEmployeeRepo{byID: map[string]models.Employee{}, names: map[string]bool{}}
	for _, e := range employees {
		repo.byID[e.ID] = e
		repo.names[e.FullName()] = true
	}
	return repo
}

func (s *stubEmployeeRepo) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	var out []models.Employee
	for _, e := range s.byID {
		out = append(out, e)
	}
	return out, len(out), nil
}

func (s *stubEmployeeRepo) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	e, ok := s.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &e, nil
}

func (s *stubEmployeeRepo) Create(ctx context.Context, employee *models.Employee) error {
	if s.names[employee.FullName()] {
		return fmt.Errorf("create employee: %w", &pq.Error{Code: "23505"})
	}
	employee.ID = fmt.Sprintf("e%d", len(s.byID)+1)
	s.byID[employee.ID] = *employee
	s.names[employee.FullName()] = true
	return nil
}

func (s *stubEmployeeRepo) Update(ctx context.Context, employee *models.Employee) error {
	s.byID[employee.ID] = *employee
	return nil
}

func (s *stubEmployeeRepo) Delete(ctx context.Context, tx *sqlx.Tx, id string) error {
	s.deleted = append(s.deleted, id)
	delete(s.byID, id)
	return nil
}

func TestEmployeeServiceCreateConflict(t *testing.T) {
	repo := newStubEmployeeRepo(models.Employee{ID: "e1", FirstName: "John", LastName: "Doe", Designation: "Clerk"})
	svc := NewEmployeeService(nil, repo, nil, nil, nil, nil, nil)

	_, err := svc.Create(context.Background(), EmployeeRequest{FirstName: " John ", LastName: "Doe", Designation: "Clerk"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	created, err := svc.Create(context.Background(), EmployeeRequest{FirstName: "Jane", Designation: "Analyst", Email: strPtr(" ")})
	require.NoError(t, err)
	assert.Equal(t, "Jane", created.FullName())
	assert.Nil(t, created.Email)
}

func TestEmployeeServiceBlankContactIsAbsent(t *testing.T) {
	repo := newStubEmployeeRepo(models.Employee{ID: "e1", FirstName: "John", LastName: "Doe", Designation: "Clerk", Email: strPtr("john@example.com")})
	svc := NewEmployeeService(nil, repo, nil, nil, nil, nil, nil)

	created, err := svc.Create(context.Background(), EmployeeRequest{FirstName: "Jane", Designation: "Analyst", Email: strPtr("  "), Phone: strPtr("\t")})
	require.NoError(t, err)
	assert.Nil(t, created.Email)
	assert.Nil(t, created.Phone)

	updated, err := svc.Update(context.Background(), "e1", EmployeeRequest{FirstName: "John", LastName: "Doe", Designation: "Clerk", Email: strPtr(" ")})
	require.NoError(t, err)
	assert.Nil(t, updated.Email)

	withSpaces, err := svc.Update(context.Background(), "e1", EmployeeRequest{FirstName: "John", LastName: "Doe", Designation: "Clerk", Email: strPtr(" john@example.com ")})
	require.NoError(t, err)
	require.NotNil(t, withSpaces.Email)
	assert.Equal(t, "john@example.com", *withSpaces.Email)
}

func TestEmployeeServiceRejectsInvalidEmail(t *testing.T) {
	svc := NewEmployeeService(nil, newStubEmployeeRepo(), nil, nil, nil, nil, nil)
	_, err := svc.Create(context.Background(), EmployeeRequest{FirstName: "Jane", Designation: "Analyst", Email: strPtr("not-an-email")})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEmployeeServiceDeleteUnassignsHeldAssets(t *testing.T) {
	db, mock := newMockDB(t)
	holder := models.Employee{ID: "e1", FirstName: "John", LastName: "Doe", Designation: "Clerk"}
	laptop := heldBy(storedLaptop(), "e1", "John", "Doe")
	spare := storedLaptop()
	spare.ID = "a2"
	assets := newStubAssetStore(laptop, spare)
	history := &stubHistoryWriter{}
	repo := newStubEmployeeRepo(holder)
	svc := NewEmployeeService(db, repo, assets, NewAuditRecorder(history), nil, nil, nil)

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, svc.Delete(context.Background(), "e1"))
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, []string{"e1"}, repo.deleted)
	require.Len(t, assets.updated, 1)
	assert.Nil(t, assets.updated[0].AllotedTo)
	require.Len(t, history.entries, 1)
	assert.Equal(t, models.ActionTransferred, history.entries[0].Action)
	assert.Nil(t, history.entries[0].EmployeeID)
}

func TestEmployeeServiceDeleteMissing(t *testing.T) {
	svc := NewEmployeeService(nil, newStubEmployeeRepo(), nil, nil, nil, nil, nil)
	err := svc.Delete(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

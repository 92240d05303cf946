package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/asset-tracker-api/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func expectSavepoint(mock sqlmock.Sqlmock, name string, release bool) {
	mock.ExpectExec("^SAVEPOINT " + name + "$").WillReturnResult(sqlmock.NewResult(0, 0))
	if release {
		mock.ExpectExec("^RELEASE SAVEPOINT " + name + "$").WillReturnResult(sqlmock.NewResult(0, 0))
		return
	}
	mock.ExpectExec("^ROLLBACK TO SAVEPOINT " + name + "$").WillReturnResult(sqlmock.NewResult(0, 0))
}

func strPtr(v string) *string { return &v }

type stubHistoryWriter struct {
	entries []models.AssetHistory
	err     error
}

func (s *stubHistoryWriter) Create(ctx context.Context, tx *sqlx.Tx, entry *models.AssetHistory) error {
	if s.err != nil {
		return s.err
	}
	entry.ID = fmt.Sprintf("h-%d", len(s.entries)+1)
	entry.Timestamp = time.Now().UTC()
	s.entries = append(s.entries, *entry)
	return nil
}

type stubAssetStore struct {
	assets    map[string]*models.Asset
	created   []models.Asset
	updated   []models.Asset
	deleted   []string
	createErr func(asset *models.Asset) error
}

func newStubAssetStore(assets ...models.Asset) *stubAssetStore {
	s := &stubAssetStore{assets: map[string]*models.Asset{}}
	for i := range assets {
		asset := assets[i]
		s.assets[asset.ID] = &asset
	}
	return s
}

func (s *stubAssetStore) find(id string) (*models.Asset, error) {
	asset, ok := s.assets[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *asset
	return &clone, nil
}

func (s *stubAssetStore) List(ctx context.Context, filter models.AssetFilter) ([]models.Asset, int, error) {
	var out []models.Asset
	for _, asset := range s.assets {
		out = append(out, *asset)
	}
	return out, len(out), nil
}

func (s *stubAssetStore) FindByID(ctx context.Context, id string) (*models.Asset, error) {
	return s.find(id)
}

func (s *stubAssetStore) FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Asset, error) {
	return s.find(id)
}

func (s *stubAssetStore) ListByHolderForUpdate(ctx context.Context, tx *sqlx.Tx, employeeID string) ([]models.Asset, error) {
	var out []models.Asset
	for _, asset := range s.assets {
		if asset.AllotedTo != nil && *asset.AllotedTo == employeeID {
			out = append(out, *asset)
		}
	}
	return out, nil
}

func (s *stubAssetStore) Create(ctx context.Context, tx *sqlx.Tx, asset *models.Asset) error {
	if s.createErr != nil {
		if err := s.createErr(asset); err != nil {
			return err
		}
	}
	n := len(s.created) + 1
	asset.ID = fmt.Sprintf("asset-%d", n)
	asset.AssetTag = fmt.Sprintf("tag-%d", n)
	s.created = append(s.created, *asset)
	return nil
}

func (s *stubAssetStore) Update(ctx context.Context, tx *sqlx.Tx, asset *models.Asset) error {
	s.updated = append(s.updated, *asset)
	clone := *asset
	s.assets[asset.ID] = &clone
	return nil
}

func (s *stubAssetStore) SoftDelete(ctx context.Context, tx *sqlx.Tx, id string, at time.Time) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type stubTypeStore struct {
	byName  map[string]*models.AssetType
	failFor string
}

func newStubTypeStore(types ...models.AssetType) *stubTypeStore {
	s := &stubTypeStore{byName: map[string]*models.AssetType{}}
	for i := range types {
		t := types[i]
		s.byName[t.Name] = &t
	}
	return s
}

func (s *stubTypeStore) FindByID(ctx context.Context, id string) (*models.AssetType, error) {
	for _, t := range s.byName {
		if t.ID == id {
			clone := *t
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *stubTypeStore) GetOrCreateByName(ctx context.Context, tx *sqlx.Tx, name string) (*models.AssetType, error) {
	if name == s.failFor {
		return nil, fmt.Errorf("insert asset type: connection reset")
	}
	if t, ok := s.byName[name]; ok {
		return t, nil
	}
	t := &models.AssetType{ID: "type-" + strings.ReplaceAll(strings.ToLower(name), " ", "-"), Name: name}
	s.byName[name] = t
	return t, nil
}

type stubEmployeeStore struct {
	byID    map[string]*models.Employee
	resolve []string
	failFor string
}

func newStubEmployeeStore(employees ...models.Employee) *stubEmployeeStore {
	s := &stubEmployeeStore{byID: map[string]*models.Employee{}}
	for i := range employees {
		e := employees[i]
		s.byID[e.ID] = &e
	}
	return s
}

func (s *stubEmployeeStore) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	e, ok := s.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *e
	return &clone, nil
}

func (s *stubEmployeeStore) GetOrCreateByName(ctx context.Context, tx *sqlx.Tx, first, last string) (*models.Employee, error) {
	full := strings.TrimSpace(first + " " + last)
	s.resolve = append(s.resolve, full)
	if full == s.failFor {
		return nil, fmt.Errorf("insert employee: value too long")
	}
	for _, e := range s.byID {
		if e.FirstName == first && e.LastName == last {
			return e, nil
		}
	}
	e := &models.Employee{ID: "emp-" + strings.ToLower(first), FirstName: first, LastName: last, Designation: "Unknown"}
	s.byID[e.ID] = e
	return e, nil
}

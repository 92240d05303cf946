package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/asset-tracker-api/internal/models"
	appErrors "github.com/noah-isme/asset-tracker-api/pkg/errors"
)

type assetFixture struct {
	svc     *AssetService
	assets  *stubAssetStore
	history *stubHistoryWriter
}

func newAssetFixture(t *testing.T, existing ...models.Asset) (*assetFixture, func() error, func()) {
	t.Helper()
	db, mock := newMockDB(t)
	f := &assetFixture{assets: newStubAssetStore(existing...), history: &stubHistoryWriter{}}
	f.svc = NewAssetService(AssetServiceParams{
		DB:        db,
		Assets:    f.assets,
		Types:     newStubTypeStore(models.AssetType{ID: "t-laptop", Name: "Laptop"}),
		Employees: newStubEmployeeStore(models.Employee{ID: "e1", FirstName: "John", LastName: "Doe"}),
		Recorder:  NewAuditRecorder(f.history),
	})
	return f, mock.ExpectationsWereMet, func() {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
}

func storedLaptop() models.Asset {
	return models.Asset{
		ID:        "a1",
		AssetTag:  "tag-1",
		TypeID:    "t-laptop",
		TypeName:  "Laptop",
		MakeModel: "ThinkPad",
		Condition: models.ConditionWorking,
		IsActive:  true,
	}
}

func laptopUpdate() UpdateAssetRequest {
	return UpdateAssetRequest{TypeID: "t-laptop", MakeModel: "ThinkPad", Condition: "working"}
}

func TestAssetServiceCreateRecordsCreated(t *testing.T) {
	f, met, expectTx := newAssetFixture(t)
	expectTx()

	asset, err := f.svc.Create(context.Background(), CreateAssetRequest{
		TypeID:    "t-laptop",
		MakeModel: "XPS 13",
		AllotedTo: strPtr("e1"),
	})
	require.NoError(t, err)
	require.NoError(t, met())

	assert.Equal(t, models.ConditionWorking, asset.Condition)
	assert.True(t, asset.IsActive)
	assert.Equal(t, "John Doe", asset.HolderName())
	require.Len(t, f.history.entries, 1)
	assert.Equal(t, models.ActionCreated, f.history.entries[0].Action)
	assert.Equal(t, "e1", *f.history.entries[0].EmployeeID)
}

func TestAssetServiceCreateRejectsUnknownReferences(t *testing.T) {
	f, _, _ := newAssetFixture(t)

	_, err := f.svc.Create(context.Background(), CreateAssetRequest{TypeID: "nope", MakeModel: "X"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = f.svc.Create(context.Background(), CreateAssetRequest{TypeID: "t-laptop", MakeModel: "X", AllotedTo: strPtr("ghost")})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = f.svc.Create(context.Background(), CreateAssetRequest{TypeID: "t-laptop", MakeModel: "X", Condition: "shiny"})
	require.Error(t, err)
	assert.Empty(t, f.assets.created)
}

func TestAssetServiceUpdateAssignOnlyRecordsAssigned(t *testing.T) {
	f, met, expectTx := newAssetFixture(t, storedLaptop())
	expectTx()

	req := laptopUpdate()
	req.AllotedTo = strPtr("e1")
	updated, err := f.svc.Update(context.Background(), "a1", req)
	require.NoError(t, err)
	require.NoError(t, met())

	assert.Equal(t, "tag-1", updated.AssetTag)
	require.Len(t, f.history.entries, 1)
	entry := f.history.entries[0]
	assert.Equal(t, models.ActionAssigned, entry.Action)
	assert.Equal(t, "e1", *entry.EmployeeID)
}

func TestAssetServiceUpdateToDisposedRecordsDisposed(t *testing.T) {
	f, met, expectTx := newAssetFixture(t, storedLaptop())
	expectTx()

	req := laptopUpdate()
	req.Condition = "Disposed"
	_, err := f.svc.Update(context.Background(), "a1", req)
	require.NoError(t, err)
	require.NoError(t, met())

	require.Len(t, f.history.entries, 1)
	assert.Equal(t, models.ActionDisposed, f.history.entries[0].Action)
	assert.Equal(t, models.ConditionDisposed, f.assets.assets["a1"].Condition)
}

func TestAssetServiceUpdateKeepsActiveFlagWhenOmitted(t *testing.T) {
	f, _, expectTx := newAssetFixture(t, storedLaptop())
	expectTx()

	updated, err := f.svc.Update(context.Background(), "a1", laptopUpdate())
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
	assert.Empty(t, f.history.entries)
}

func TestAssetServiceUpdateMissingAssetRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewAssetService(AssetServiceParams{
		DB:        db,
		Assets:    newStubAssetStore(),
		Types:     newStubTypeStore(models.AssetType{ID: "t-laptop", Name: "Laptop"}),
		Employees: newStubEmployeeStore(),
		Recorder:  NewAuditRecorder(&stubHistoryWriter{}),
	})
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Update(context.Background(), "missing", laptopUpdate())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetServiceDeleteSoftDeletesAndRecords(t *testing.T) {
	f, met, expectTx := newAssetFixture(t, storedLaptop())
	expectTx()

	require.NoError(t, f.svc.Delete(context.Background(), "a1"))
	require.NoError(t, met())
	assert.Equal(t, []string{"a1"}, f.assets.deleted)
	require.Len(t, f.history.entries, 1)
	assert.Equal(t, models.ActionDeleted, f.history.entries[0].Action)
}

package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/asset-tracker-api/internal/models"
	appErrors "github.com/noah-isme/asset-tracker-api/pkg/errors"
)

type importFixture struct {
	svc       *ImportService
	types     *stubTypeStore
	employees *stubEmployeeStore
	assets    *stubAssetStore
	history   *stubHistoryWriter
	mock      sqlmock.Sqlmock
}

func newImportFixture(t *testing.T) *importFixture {
	t.Helper()
	db, mock := newMockDB(t)
	f := &importFixture{
		types:     newStubTypeStore(),
		employees: newStubEmployeeStore(),
		assets:    newStubAssetStore(),
		history:   &stubHistoryWriter{},
		mock:      mock,
	}
	f.svc = NewImportService(ImportServiceParams{
		DB:        db,
		Types:     f.types,
		Employees: f.employees,
		Assets:    f.assets,
		Recorder:  NewAuditRecorder(f.history),
	})
	return f
}

func csvLine(values map[string]string) string {
	cells := make([]string, len(ImportHeader))
	for i, column := range ImportHeader {
		cells[i] = values[column]
	}
	return strings.Join(cells, ",")
}

func csvFile(rows ...map[string]string) string {
	lines := []string{strings.Join(ImportHeader, ",")}
	for _, row := range rows {
		lines = append(lines, csvLine(row))
	}
	return strings.Join(lines, "\n") + "\n"
}

func TestParseCompositeField(t *testing.T) {
	got := ParseCompositeField("Laptop: Working; Monitor: Good;junk; UPS : Not Working ; Note: a:b")
	assert.Equal(t, map[string]string{
		"laptop":  "Working",
		"monitor": "Good",
		"ups":     "Not Working",
		"note":    "a:b",
	}, got)
	assert.Empty(t, ParseCompositeField(""))
}

func TestNormalizeCondition(t *testing.T) {
	cases := map[string]models.AssetCondition{
		"Working":      models.ConditionWorking,
		"Good":         models.ConditionWorking,
		"ok":           models.ConditionWorking,
		"Not Working":  models.ConditionDamaged,
		"broken":       models.ConditionDamaged,
		"Under Repair": models.ConditionRepair,
		"disposed":     models.ConditionDisposed,
		"sparkling":    models.ConditionWorking,
	}
	for raw, want := range cases {
		assert.Equal(t, want, normalizeCondition(raw), raw)
	}
}

func TestSampleCSVLayout(t *testing.T) {
	lines := strings.Split(strings.TrimSuffix(string(SampleCSV()), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(ImportHeader, ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,John Doe,Laptop,HP ProBook,SN12345,Intel Core i7"))
	assert.Len(t, ImportHeader, 24)
}

func TestImportSampleRow(t *testing.T) {
	f := newImportFixture(t)
	f.mock.ExpectBegin()
	expectSavepoint(f.mock, "import_employee", true)
	expectSavepoint(f.mock, "import_asset", true)
	f.mock.ExpectCommit()

	result, err := f.svc.Import(context.Background(), bytes.NewReader(SampleCSV()))
	require.NoError(t, err)
	require.NoError(t, f.mock.ExpectationsWereMet())

	assert.Equal(t, 6, result.Created)
	assert.Empty(t, result.Errors)
	assert.Equal(t, []string{"John Doe"}, f.employees.resolve)

	require.Len(t, f.assets.created, 6)
	byType := map[string]models.Asset{}
	for _, asset := range f.assets.created {
		byType[asset.TypeName] = asset
		require.NotNil(t, asset.AllotedTo)
		assert.Equal(t, "emp-john", *asset.AllotedTo)
	}

	laptop := byType["Laptop"]
	assert.Equal(t, "Intel Core i7", laptop.MakeModel)
	assert.Equal(t, "SN12345", *laptop.SerialNumber)
	assert.Equal(t, "8 GB", laptop.RAM)
	assert.Equal(t, "Windows 10", laptop.OS)
	assert.Equal(t, 2023, laptop.YearOfPurchase)
	assert.Equal(t, models.ConditionWorking, laptop.Condition)
	assert.Equal(t, "System is in Working Condition", laptop.Remarks)

	monitor := byType["Monitor"]
	assert.Equal(t, `Dell 24"`, monitor.MakeModel)
	assert.Equal(t, "MSN456", *monitor.SerialNumber)
	assert.Equal(t, 2022, monitor.YearOfPurchase)
	assert.Equal(t, models.ConditionWorking, monitor.Condition)
	assert.Equal(t, "Clear display", monitor.Remarks)

	keyboard := byType["Keyboard and Mouse"]
	assert.Equal(t, "Logitech Combo", keyboard.MakeModel)
	assert.Nil(t, keyboard.SerialNumber)
	assert.Zero(t, keyboard.YearOfPurchase)

	printer := byType["Printer"]
	assert.Equal(t, models.ConditionDamaged, printer.Condition)
	assert.Equal(t, "Requires service", printer.Remarks)

	assert.Equal(t, "Creative", byType["Speaker"].MakeModel)
	assert.Equal(t, "UPS789", *byType["UPS"].SerialNumber)

	require.Len(t, f.history.entries, 6)
	for _, entry := range f.history.entries {
		assert.Equal(t, models.ActionCreated, entry.Action)
	}
}

func TestReadRowsNumbersRecordsByLastLine(t *testing.T) {
	data := strings.Join(ImportHeader, ",") + "\n" +
		csvLine(map[string]string{"Device": "Laptop", "REMARKS": "\"Laptop: dent\non lid\""}) + "\n" +
		csvLine(map[string]string{"Device": "Desktop"}) + "\n" +
		csvLine(map[string]string{"Device": "\"Mini\r\nPC\"", "REMARKS": "\"a\nb\nc\""}) + "\n"

	rows, err := readRows([]byte(data))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 3, rows[0].line)
	assert.Equal(t, "Laptop: dent\non lid", rows[0].get("REMARKS"))
	assert.Equal(t, 4, rows[1].line)
	assert.Equal(t, 8, rows[2].line)
}

func TestImportBlankDeviceSkipsRow(t *testing.T) {
	f := newImportFixture(t)
	data := csvFile(
		map[string]string{"Sl.No.": "1", "Alloted To": "Jane  Q  Roe", "Monitor": "LG 22"},
		map[string]string{"Sl.No.": "2", "Device": "Desktop", "PROCESSOR": "Ryzen 5", "Year of Purchase": "twenty"},
	)
	f.mock.ExpectBegin()
	expectSavepoint(f.mock, "import_employee", true)
	expectSavepoint(f.mock, "import_asset", true)
	f.mock.ExpectCommit()

	result, err := f.svc.Import(context.Background(), strings.NewReader(data))
	require.NoError(t, err)
	require.NoError(t, f.mock.ExpectationsWereMet())

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, []string{"Row 2 missing Device"}, result.Errors)
	assert.Equal(t, []string{"Jane Q Roe"}, f.employees.resolve)
	require.Len(t, f.assets.created, 1)
	assert.Equal(t, "Desktop", f.assets.created[0].TypeName)
	assert.Nil(t, f.assets.created[0].AllotedTo)
	assert.Zero(t, f.assets.created[0].YearOfPurchase)
}

func TestImportRowErrorsAreAdvisory(t *testing.T) {
	f := newImportFixture(t)
	f.employees.failFor = "Bad Name"
	f.assets.createErr = func(asset *models.Asset) error {
		if asset.MakeModel == "explode" {
			return errors.New("create asset: boom")
		}
		return nil
	}
	data := csvFile(
		map[string]string{"Alloted To": "Bad Name", "Device": "Laptop", "PROCESSOR": "explode", "UPS": "APC"},
	)
	f.mock.ExpectBegin()
	expectSavepoint(f.mock, "import_employee", false)
	expectSavepoint(f.mock, "import_asset", false)
	f.mock.ExpectCommit()

	result, err := f.svc.Import(context.Background(), strings.NewReader(data))
	require.NoError(t, err)
	require.NoError(t, f.mock.ExpectationsWereMet())

	assert.Equal(t, []string{
		"Row 2 Employee error: insert employee: value too long",
		"Row 2 Main Asset error: create asset: boom",
	}, result.Errors)
	assert.Equal(t, 1, result.Created)
	require.Len(t, f.assets.created, 1)
	assert.Equal(t, "UPS", f.assets.created[0].TypeName)
	assert.Nil(t, f.assets.created[0].AllotedTo)
}

func TestImportRollsBackWholeFileOnUnexpectedError(t *testing.T) {
	f := newImportFixture(t)
	f.types.failFor = "Printer"
	data := csvFile(
		map[string]string{"Device": "Laptop", "PROCESSOR": "i5"},
		map[string]string{"Device": "Laptop", "PROCESSOR": "i7", "Printer": "HP"},
	)
	f.mock.ExpectBegin()
	expectSavepoint(f.mock, "import_asset", true)
	expectSavepoint(f.mock, "import_asset", true)
	f.mock.ExpectRollback()

	result, err := f.svc.Import(context.Background(), strings.NewReader(data))
	require.Error(t, err)
	assert.Nil(t, result)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestImportRejectsInvalidEncoding(t *testing.T) {
	f := newImportFixture(t)
	_, err := f.svc.Import(context.Background(), bytes.NewReader([]byte{0xff, 0xfe, 0x41, 0x2c}))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidEncoding.Code, appErrors.FromError(err).Code)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestImportRejectsOversizedFile(t *testing.T) {
	f := newImportFixture(t)
	f.svc.maxSize = 16
	_, err := f.svc.Import(context.Background(), bytes.NewReader(SampleCSV()))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPayloadTooLarge.Code, appErrors.FromError(err).Code)
}

func TestImportStripsByteOrderMark(t *testing.T) {
	f := newImportFixture(t)
	data := append([]byte{0xEF, 0xBB, 0xBF}, csvFile(map[string]string{"Device": "Tablet", "PROCESSOR": "A14"})...)
	f.mock.ExpectBegin()
	expectSavepoint(f.mock, "import_asset", true)
	f.mock.ExpectCommit()

	result, err := f.svc.Import(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Empty(t, result.Errors)
}

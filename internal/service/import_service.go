package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/asset-tracker-api/internal/models"
	"github.com/noah-isme/asset-tracker-api/pkg/database"
	appErrors "github.com/noah-isme/asset-tracker-api/pkg/errors"
)

// ImportHeader is the column layout shared by the import template and the export.
var ImportHeader = []string{
	"Sl.No.", "Alloted To", "Device", "Make model", "Serial No.", "PROCESSOR", "RAM", "HDD", "SSD", "OS",
	"Year of Purchase", "Monitor", "Monitor Serial number", "Monitor Year of Purchase",
	"Keyboard and Mouse", "UPS", "UPS Serial number", "UPS Year of Purchase",
	"Printer", "Printer Serial number", "Printer Year of Purchase", "Speaker",
	"Condition", "REMARKS",
}

// Peripherals are the per-row accessory columns, in processing order.
var Peripherals = []string{"Monitor", "Keyboard and Mouse", "UPS", "Printer", "Speaker"}

const sampleRow = `1,John Doe,Laptop,HP ProBook,SN12345,Intel Core i7,8 GB,1 TB,256 GB,Windows 10,2023,` +
	`Dell 24",MSN456,2022,Logitech Combo,UPS Corp,UPS789,2023,HP LaserJet,PRN001,2023,Creative,` +
	`Laptop: Working; Monitor: Good; Keyboard and Mouse: Working; UPS: Working; Printer: Not Working; Speaker: Working,` +
	`Laptop: System is in Working Condition; Monitor: Clear display; Keyboard and Mouse: Responsive; UPS: Stable; Printer: Requires service; Speaker: Clear sound` + "\n"

// SampleFilename is the download name of the import template.
const SampleFilename = "combined_sample.csv"

// SampleCSV returns the import template: the header and one example row.
func SampleCSV() []byte {
	return []byte(strings.Join(ImportHeader, ",") + "\n" + sampleRow)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type importTypeRepository interface {
	GetOrCreateByName(ctx context.Context, tx *sqlx.Tx, name string) (*models.AssetType, error)
}

type importEmployeeRepository interface {
	GetOrCreateByName(ctx context.Context, tx *sqlx.Tx, first, last string) (*models.Employee, error)
}

type importAssetRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, asset *models.Asset) error
}

// ImportResult summarises one bulk import. Errors are in row order.
type ImportResult struct {
	Created int      `json:"created"`
	Errors  []string `json:"errors"`
}

// ImportServiceParams groups the collaborators of ImportService.
type ImportServiceParams struct {
	DB          txProvider
	Types       importTypeRepository
	Employees   importEmployeeRepository
	Assets      importAssetRepository
	Recorder    *AuditRecorder
	Notifier    *ChangeNotifier
	Metrics     *MetricsService
	MaxFileSize int64
	Logger      *zap.Logger
}

// ImportService creates assets from the combined CSV layout in a single transaction.
type ImportService struct {
	db        txProvider
	types     importTypeRepository
	employees importEmployeeRepository
	assets    importAssetRepository
	recorder  *AuditRecorder
	notifier  *ChangeNotifier
	metrics   *MetricsService
	maxSize   int64
	logger    *zap.Logger
}

func NewImportService(params ImportServiceParams) *ImportService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.MaxFileSize <= 0 {
		params.MaxFileSize = 5 * 1024 * 1024
	}
	return &ImportService{
		db:        params.DB,
		types:     params.Types,
		employees: params.Employees,
		assets:    params.Assets,
		recorder:  params.Recorder,
		notifier:  params.Notifier,
		metrics:   params.Metrics,
		maxSize:   params.MaxFileSize,
		logger:    params.Logger,
	}
}

// ParseCompositeField parses "Laptop: Working; Monitor: Good" into a map keyed by
// the lowercased label. Parts without a colon are ignored.
func ParseCompositeField(raw string) map[string]string {
	mapping := make(map[string]string)
	if raw == "" {
		return mapping
	}
	for _, part := range strings.Split(raw, ";") {
		key, value, found := strings.Cut(part, ":")
		if !found {
			continue
		}
		mapping[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return mapping
}

// normalizeCondition maps a free-form condition word onto the enum.
func normalizeCondition(raw string) models.AssetCondition {
	if condition, ok := models.ParseAssetCondition(raw); ok {
		return condition
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "good", "ok":
		return models.ConditionWorking
	case "not working", "broken":
		return models.ConditionDamaged
	}
	return models.ConditionWorking
}

func parseYear(raw string) int {
	if raw == "" {
		return 0
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return year
}

type csvRow struct {
	line   int
	record []string
	index  map[string]int
}

func (r csvRow) get(column string) string {
	i, ok := r.index[column]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

// Import reads the whole upload and creates assets row by row. Row-level problems
// are collected in the result; any other failure rolls back every row.
func (s *ImportService) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return nil, internalError(err, "failed to read upload")
	}
	if int64(len(data)) > s.maxSize {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("csv file exceeds %d bytes", s.maxSize))
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, appErrors.Clone(appErrors.ErrInvalidEncoding, "Error decoding CSV file. Please ensure it is encoded in UTF-8.")
	}

	rows, err := readRows(data)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: []string{}}
	var (
		entries []models.AssetHistory
		tags    = make(map[string]string)
	)
	err = inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		for _, row := range rows {
			created, err := s.importRow(ctx, tx, row, result)
			if err != nil {
				return err
			}
			for _, c := range created {
				tags[c.asset.ID] = c.asset.AssetTag
				entries = append(entries, c.entry)
			}
			result.Created += len(created)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordImport(result.Created, len(result.Errors))
	s.notifier.Committed(ctx, entries, tags)
	s.logger.Info("bulk import finished", zap.Int("created", result.Created), zap.Int("errors", len(result.Errors)))
	return result, nil
}

func readRows(data []byte) ([]csvRow, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, appErrors.Invalid(err, "malformed csv header")
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}

	var rows []csvRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, appErrors.Invalid(err, "malformed csv")
		}
		rows = append(rows, csvRow{line: endLine(reader, record), record: record, index: index})
	}
	return rows, nil
}

// endLine is the physical line a record ends on: the line its last field starts
// on plus the line breaks quoted inside that field.
func endLine(reader *csv.Reader, record []string) int {
	last := len(record) - 1
	line, _ := reader.FieldPos(last)
	return line + strings.Count(record[last], "\n")
}

type importedAsset struct {
	asset models.Asset
	entry models.AssetHistory
}

func (s *ImportService) importRow(ctx context.Context, tx *sqlx.Tx, row csvRow, result *ImportResult) ([]importedAsset, error) {
	var holder *string
	if allotedTo := row.get("Alloted To"); allotedTo != "" {
		first, last := models.SplitEmployeeName(allotedTo)
		err := database.WithSavepoint(ctx, tx, "import_employee", func() error {
			employee, err := s.employees.GetOrCreateByName(ctx, tx, first, last)
			if err != nil {
				return err
			}
			holder = &employee.ID
			return nil
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d Employee error: %s", row.line, err.Error()))
		}
	}

	conditions := ParseCompositeField(row.get("Condition"))
	remarks := ParseCompositeField(row.get("REMARKS"))

	device := row.get("Device")
	if device == "" {
		result.Errors = append(result.Errors, fmt.Sprintf("Row %d missing Device", row.line))
		return nil, nil
	}
	assetType, err := s.types.GetOrCreateByName(ctx, tx, device)
	if err != nil {
		return nil, internalError(err, "failed to resolve asset type")
	}

	var created []importedAsset
	primary := models.Asset{
		TypeID:         assetType.ID,
		TypeName:       assetType.Name,
		MakeModel:      row.get("PROCESSOR"),
		SerialNumber:   optional(row.get("Serial No.")),
		RAM:            row.get("RAM"),
		HDD:            row.get("HDD"),
		SSD:            row.get("SSD"),
		OS:             row.get("OS"),
		YearOfPurchase: parseYear(row.get("Year of Purchase")),
		Condition:      conditionFor(conditions, device),
		Remarks:        remarks[strings.ToLower(device)],
		IsActive:       true,
		AllotedTo:      holder,
	}
	err = database.WithSavepoint(ctx, tx, "import_asset", func() error {
		return s.assets.Create(ctx, tx, &primary)
	})
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Row %d Main Asset error: %s", row.line, err.Error()))
	} else {
		entry, err := s.recorder.RecordCreate(ctx, tx, primary)
		if err != nil {
			return nil, internalError(err, "failed to record asset history")
		}
		created = append(created, importedAsset{asset: primary, entry: entry})
	}

	for _, label := range Peripherals {
		value := row.get(label)
		if value == "" {
			continue
		}
		peripheralType, err := s.types.GetOrCreateByName(ctx, tx, label)
		if err != nil {
			return nil, internalError(err, "failed to resolve asset type")
		}
		key := strings.ToLower(label)
		peripheral := models.Asset{
			TypeID:         peripheralType.ID,
			TypeName:       peripheralType.Name,
			MakeModel:      value,
			SerialNumber:   optional(row.get(label + " Serial number")),
			YearOfPurchase: parseYear(row.get(label + " Year of Purchase")),
			Condition:      conditionFor(conditions, label),
			Remarks:        remarks[key],
			IsActive:       true,
			AllotedTo:      holder,
		}
		if err := s.assets.Create(ctx, tx, &peripheral); err != nil {
			return nil, internalError(err, "failed to create peripheral asset")
		}
		entry, err := s.recorder.RecordCreate(ctx, tx, peripheral)
		if err != nil {
			return nil, internalError(err, "failed to record asset history")
		}
		created = append(created, importedAsset{asset: peripheral, entry: entry})
	}
	return created, nil
}

func conditionFor(conditions map[string]string, label string) models.AssetCondition {
	raw, ok := conditions[strings.ToLower(label)]
	if !ok {
		return models.ConditionWorking
	}
	return normalizeCondition(raw)
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

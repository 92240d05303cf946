package service

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/asset-tracker-api/internal/models"
	appErrors "github.com/noah-isme/asset-tracker-api/pkg/errors"
	"github.com/noah-isme/asset-tracker-api/pkg/export"
)

// ExportFormat selects the rendering of an asset export.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
	ExportFormatPDF  ExportFormat = "pdf"
)

// ParseExportFormat defaults to csv when raw is blank.
func ParseExportFormat(raw string) (ExportFormat, bool) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ExportFormatCSV:
		return ExportFormatCSV, true
	case ExportFormatXLSX:
		return ExportFormatXLSX, true
	case ExportFormatPDF:
		return ExportFormatPDF, true
	}
	return "", false
}

// ExportFile is a rendered export ready to be sent as an attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type exportAssetRepository interface {
	ListAll(ctx context.Context) ([]models.Asset, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type xlsxRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService flattens assets back into the combined import layout.
type ExportService struct {
	assets exportAssetRepository
	csv    csvRenderer
	xlsx   xlsxRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(assets exportAssetRepository, logger *zap.Logger, csv csvRenderer, xlsx xlsxRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter("Assets")
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{assets: assets, csv: csv, xlsx: xlsx, pdf: pdf, logger: logger}
}

// Export renders every non-peripheral asset with its holder's peripherals.
func (s *ExportService) Export(ctx context.Context, format ExportFormat) (*ExportFile, error) {
	assets, err := s.assets.ListAll(ctx)
	if err != nil {
		return nil, internalError(err, "failed to load assets")
	}
	dataset := BuildExportDataset(assets)

	file := &ExportFile{}
	switch format {
	case ExportFormatCSV:
		file.Filename = "exported_assets.csv"
		file.ContentType = "text/csv"
		file.Data, err = s.csv.Render(dataset)
	case ExportFormatXLSX:
		file.Filename = "exported_assets.xlsx"
		file.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		file.Data, err = s.xlsx.Render(dataset)
	case ExportFormatPDF:
		file.Filename = "exported_assets.pdf"
		file.ContentType = "application/pdf"
		file.Data, err = s.pdf.Render(dataset, "Exported Assets")
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	if err != nil {
		return nil, internalError(err, "failed to render export")
	}
	s.logger.Info("assets exported", zap.String("format", string(format)), zap.Int("rows", len(dataset.Rows)))
	return file, nil
}

// BuildExportDataset expects assets ordered by creation time then id.
func BuildExportDataset(assets []models.Asset) export.Dataset {
	peripheralSet := make(map[string]struct{}, len(Peripherals))
	for _, label := range Peripherals {
		peripheralSet[label] = struct{}{}
	}

	// holder id -> peripheral label -> first asset
	firstPeripheral := make(map[string]map[string]models.Asset)
	for _, asset := range assets {
		if _, ok := peripheralSet[asset.TypeName]; !ok || asset.AllotedTo == nil {
			continue
		}
		byLabel, ok := firstPeripheral[*asset.AllotedTo]
		if !ok {
			byLabel = make(map[string]models.Asset)
			firstPeripheral[*asset.AllotedTo] = byLabel
		}
		if _, seen := byLabel[asset.TypeName]; !seen {
			byLabel[asset.TypeName] = asset
		}
	}

	dataset := export.Dataset{Headers: ImportHeader}
	sl := 0
	for _, asset := range assets {
		if _, ok := peripheralSet[asset.TypeName]; ok {
			continue
		}
		sl++
		var held map[string]models.Asset
		if asset.AllotedTo != nil {
			held = firstPeripheral[*asset.AllotedTo]
		}
		monitor, ups, printer := held["Monitor"], held["UPS"], held["Printer"]

		remarks := ""
		if asset.Remarks != "" {
			remarks = asset.TypeName + ": " + asset.Remarks
		}
		dataset.Rows = append(dataset.Rows, []string{
			strconv.Itoa(sl),
			asset.HolderName(),
			asset.TypeName,
			asset.TypeName,
			deref(asset.SerialNumber),
			asset.MakeModel,
			asset.RAM,
			asset.HDD,
			asset.SSD,
			asset.OS,
			formatYear(asset.YearOfPurchase),
			monitor.MakeModel, deref(monitor.SerialNumber), formatYear(monitor.YearOfPurchase),
			held["Keyboard and Mouse"].MakeModel,
			ups.MakeModel, deref(ups.SerialNumber), formatYear(ups.YearOfPurchase),
			printer.MakeModel, deref(printer.SerialNumber), formatYear(printer.YearOfPurchase),
			held["Speaker"].MakeModel,
			asset.TypeName + ": " + string(asset.Condition),
			remarks,
		})
	}
	return dataset
}

func formatYear(year int) string {
	if year == 0 {
		return ""
	}
	return strconv.Itoa(year)
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

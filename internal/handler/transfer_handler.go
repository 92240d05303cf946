package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/asset-tracker-api/internal/service"
	appErrors "github.com/noah-isme/asset-tracker-api/pkg/errors"
	"github.com/noah-isme/asset-tracker-api/pkg/response"
)

type importService interface {
	Import(ctx context.Context, r io.Reader) (*service.ImportResult, error)
}

type exportService interface {
	Export(ctx context.Context, format service.ExportFormat) (*service.ExportFile, error)
}

// TransferHandler moves assets in and out of the combined spreadsheet layout.
type TransferHandler struct {
	importer importService
	exporter exportService
}

func NewTransferHandler(importer importService, exporter exportService) *TransferHandler {
	return &TransferHandler{importer: importer, exporter: exporter}
}

// importFormField is the multipart field carrying the CSV; "file" is also accepted.
const importFormField = "csv_file"

// Import godoc
// @Summary Bulk import assets
// @Description Imports the combined CSV layout in one transaction. Row problems are reported, not fatal.
// @Tags Import/Export
// @Accept multipart/form-data
// @Produce json
// @Param csv_file formData file true "UTF-8 CSV"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Security BearerAuth
// @Router /assets/import [post]
func (h *TransferHandler) Import(c *gin.Context) {
	header, err := c.FormFile(importFormField)
	if errors.Is(err, http.ErrMissingFile) {
		header, err = c.FormFile("file")
	}
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "csv_file is required"))
		return
	}
	src, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Internal(err, "failed to open file"))
		return
	}
	defer src.Close() //nolint:errcheck

	result, err := h.importer.Import(c.Request.Context(), src)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Sample godoc
// @Summary Download import template
// @Tags Import/Export
// @Produce text/csv
// @Success 200 {file} file
// @Security BearerAuth
// @Router /assets/import/sample [get]
func (h *TransferHandler) Sample(c *gin.Context) {
	response.File(c, service.SampleFilename, "text/csv", service.SampleCSV())
}

// Export godoc
// @Summary Export assets
// @Tags Import/Export
// @Produce octet-stream
// @Param format query string false "csv (default), xlsx or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /assets/export [get]
func (h *TransferHandler) Export(c *gin.Context) {
	format, ok := service.ParseExportFormat(c.Query("format"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv, xlsx or pdf"))
		return
	}
	file, err := h.exporter.Export(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Data)
}

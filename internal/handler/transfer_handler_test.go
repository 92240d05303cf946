package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/asset-tracker-api/internal/service"
	appErrors "github.com/noah-isme/asset-tracker-api/pkg/errors"
)

type fakeImporter struct {
	received []byte
	result   *service.ImportResult
	err      error
}

func (f *fakeImporter) Import(_ context.Context, r io.Reader) (*service.ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.received = data
	return f.result, f.err
}

type fakeExporter struct {
	format service.ExportFormat
}

func (f *fakeExporter) Export(_ context.Context, format service.ExportFormat) (*service.ExportFile, error) {
	f.format = format
	return &service.ExportFile{Filename: "exported_assets." + string(format), ContentType: "text/csv", Data: []byte("a,b\n")}, nil
}

func transferRouter(importer *fakeImporter, exporter *fakeExporter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewTransferHandler(importer, exporter)
	r := gin.New()
	r.POST("/assets/import", h.Import)
	r.GET("/assets/import/sample", h.Sample)
	r.GET("/assets/export", h.Export)
	return r
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestTransferHandlerImport(t *testing.T) {
	importer := &fakeImporter{result: &service.ImportResult{Created: 6, Errors: []string{"Row 3 missing Device"}}}
	r := transferRouter(importer, &fakeExporter{})

	body, contentType := multipartBody(t, "csv_file", "assets.csv", service.SampleCSV())
	req := httptest.NewRequest(http.MethodPost, "/assets/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.SampleCSV(), importer.received)
	envelope := decodeEnvelope(t, rec)
	data := envelope.object(t)
	assert.Equal(t, float64(6), data["created"])
	assert.Equal(t, []interface{}{"Row 3 missing Device"}, data["errors"])
}

func TestTransferHandlerImportAcceptsFileField(t *testing.T) {
	importer := &fakeImporter{result: &service.ImportResult{Created: 1}}
	r := transferRouter(importer, &fakeExporter{})

	body, contentType := multipartBody(t, "file", "assets.csv", service.SampleCSV())
	req := httptest.NewRequest(http.MethodPost, "/assets/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.SampleCSV(), importer.received)
}

func TestTransferHandlerImportRequiresFile(t *testing.T) {
	r := transferRouter(&fakeImporter{}, &fakeExporter{})
	body, contentType := multipartBody(t, "other", "x.csv", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/assets/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransferHandlerImportEncodingError(t *testing.T) {
	importer := &fakeImporter{err: appErrors.Clone(appErrors.ErrInvalidEncoding, "Error decoding CSV file. Please ensure it is encoded in UTF-8.")}
	r := transferRouter(importer, &fakeExporter{})
	body, contentType := multipartBody(t, "csv_file", "assets.csv", []byte{0xff, 0xfe})
	req := httptest.NewRequest(http.MethodPost, "/assets/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ENCODING", decodeEnvelope(t, rec).Error["code"])
}

func TestTransferHandlerSample(t *testing.T) {
	r := transferRouter(&fakeImporter{}, &fakeExporter{})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/import/sample", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="combined_sample.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, service.SampleCSV(), rec.Body.Bytes())
}

func TestTransferHandlerExportFormats(t *testing.T) {
	exporter := &fakeExporter{}
	r := transferRouter(&fakeImporter{}, exporter)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.ExportFormatCSV, exporter.format)
	assert.Equal(t, `attachment; filename="exported_assets.csv"`, rec.Header().Get("Content-Disposition"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/export?format=PDF", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.ExportFormatPDF, exporter.format)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/export?format=docx", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/asset-tracker-api/internal/models"
	appErrors "github.com/noah-isme/asset-tracker-api/pkg/errors"
)

type tokenTable map[string]*models.JWTClaims

func (t tokenTable) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := t[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

func newTestAPI() (*gin.Engine, *fakeAssetSrv, *fakeExporter) {
	gin.SetMode(gin.TestMode)
	assets := &fakeAssetSrv{}
	exporter := &fakeExporter{}
	tokens := tokenTable{
		"admin-token": {UserID: "u-1", Username: "admin", Role: models.RoleAdmin},
		"staff-token": {UserID: "u-2", Username: "staff", Role: models.RoleStaff},
	}

	r := gin.New()
	Register(r.Group("/api/v1"), Handlers{
		Auth:      &AuthHandler{},
		Assets:    NewAssetHandler(assets),
		Transfer:  NewTransferHandler(&fakeImporter{}, exporter),
		Employees: &EmployeeHandler{},
		Catalog:   &CatalogHandler{},
		Lifecycle: &LifecycleHandler{},
		Dashboard: NewDashboardHandler(&fakeDashboardSrv{dashboard: &models.Dashboard{}}),
	}, tokens)
	return r, assets, exporter
}

func serveAs(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRegisterRequiresToken(t *testing.T) {
	r, _, _ := newTestAPI()

	assert.Equal(t, http.StatusUnauthorized, serveAs(r, http.MethodGet, "/api/v1/assets", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serveAs(r, http.MethodGet, "/api/v1/assets", "forged").Code)
	assert.Equal(t, http.StatusOK, serveAs(r, http.MethodGet, "/api/v1/assets", "staff-token").Code)
}

func TestRegisterRestrictsExportToAdmins(t *testing.T) {
	r, _, exporter := newTestAPI()

	rec := serveAs(r, http.MethodGet, "/api/v1/assets/export", "staff-token")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, exporter.format)

	rec = serveAs(r, http.MethodGet, "/api/v1/assets/export?format=xlsx", "admin-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "xlsx", string(exporter.format))
}

const testAssetID = "3f6e2a10-7c4b-4d2e-9a8f-1b2c3d4e5f60"

func TestRegisterRestrictsAssetDeleteToAdmins(t *testing.T) {
	r, assets, _ := newTestAPI()

	assert.Equal(t, http.StatusForbidden, serveAs(r, http.MethodDelete, "/api/v1/assets/"+testAssetID, "staff-token").Code)
	assert.Empty(t, assets.deletedID)

	assert.Equal(t, http.StatusNoContent, serveAs(r, http.MethodDelete, "/api/v1/assets/"+testAssetID, "admin-token").Code)
	assert.Equal(t, testAssetID, assets.deletedID)
}

func TestRegisterMalformedIDIsNotFound(t *testing.T) {
	r, assets, _ := newTestAPI()

	for _, path := range []string{"/api/v1/assets/foo", "/api/v1/assets/foo/history", "/api/v1/employees/42", "/api/v1/documents/abc/download"} {
		rec := serveAs(r, http.MethodGet, path, "staff-token")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
	assert.Equal(t, http.StatusNotFound, serveAs(r, http.MethodDelete, "/api/v1/assets/foo", "admin-token").Code)
	assert.Empty(t, assets.deletedID)

	assert.Equal(t, http.StatusUnauthorized, serveAs(r, http.MethodGet, "/api/v1/assets/foo", "").Code)
}

func TestRegisterDashboardCarriesMeta(t *testing.T) {
	r, _, _ := newTestAPI()

	rec := serveAs(r, http.MethodGet, "/api/v1/dashboard", "staff-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, false, envelope.Meta["cache_hit"])
	assert.Contains(t, envelope.Meta, "processing_time_ms")
}

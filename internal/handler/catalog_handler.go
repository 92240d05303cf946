package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/asset-tracker-api/internal/models"
	"github.com/noah-isme/asset-tracker-api/internal/service"
	"github.com/noah-isme/asset-tracker-api/pkg/response"
)

// CatalogHandler serves asset types and the global history log.
type CatalogHandler struct {
	types   *service.AssetTypeService
	history *service.HistoryService
}

func NewCatalogHandler(types *service.AssetTypeService, history *service.HistoryService) *CatalogHandler {
	return &CatalogHandler{types: types, history: history}
}

// ListTypes godoc
// @Summary List asset types
// @Tags Asset Types
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /asset-types [get]
func (h *CatalogHandler) ListTypes(c *gin.Context) {
	types, err := h.types.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, types, nil)
}

// CreateType godoc
// @Summary Create asset type
// @Tags Asset Types
// @Accept json
// @Produce json
// @Param payload body service.AssetTypeRequest true "Asset type"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /asset-types [post]
func (h *CatalogHandler) CreateType(c *gin.Context) {
	var req service.AssetTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "invalid payload")
		return
	}
	assetType, err := h.types.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assetType)
}

// ListHistory godoc
// @Summary List history entries
// @Tags History
// @Produce json
// @Param asset_id query string false "Asset ID"
// @Param employee_id query string false "Employee ID"
// @Param action query string false "Action"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /history [get]
func (h *CatalogHandler) ListHistory(c *gin.Context) {
	filter := models.HistoryFilter{
		AssetID:    c.Query("asset_id"),
		EmployeeID: c.Query("employee_id"),
		Action:     c.Query("action"),
	}
	filter.Page, filter.PageSize = pageParams(c)
	entries, pagination, err := h.history.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, pagination)
}

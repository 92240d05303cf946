package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/asset-tracker-api/internal/models"
	"github.com/noah-isme/asset-tracker-api/internal/service"
	"github.com/noah-isme/asset-tracker-api/pkg/response"
)

type assetService interface {
	List(ctx context.Context, filter models.AssetFilter) ([]models.Asset, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Asset, error)
	Create(ctx context.Context, req service.CreateAssetRequest) (*models.Asset, error)
	Update(ctx context.Context, id string, req service.UpdateAssetRequest) (*models.Asset, error)
	Delete(ctx context.Context, id string) error
	History(ctx context.Context, id string, page, pageSize int) ([]models.AssetHistoryDetail, *models.Pagination, error)
}

// AssetHandler exposes asset CRUD and per-asset history.
type AssetHandler struct {
	assets assetService
}

func NewAssetHandler(assets assetService) *AssetHandler {
	return &AssetHandler{assets: assets}
}

// List godoc
// @Summary List assets
// @Tags Assets
// @Produce json
// @Param q query string false "Search make/model, serial, type or holder name"
// @Param type query string false "Asset type ID"
// @Param assigned query string false "true for any holder, or an employee ID"
// @Param status query string false "Condition"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /assets [get]
func (h *AssetHandler) List(c *gin.Context) {
	filter := models.AssetFilter{
		Search:   strings.TrimSpace(c.Query("q")),
		TypeID:   c.Query("type"),
		Assigned: c.Query("assigned"),
		Status:   c.Query("status"),
	}
	filter.Page, filter.PageSize = pageParams(c)

	assets, pagination, err := h.assets.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assets, pagination)
}

// Get godoc
// @Summary Get asset
// @Tags Assets
// @Produce json
// @Param id path string true "Asset ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /assets/{id} [get]
func (h *AssetHandler) Get(c *gin.Context) {
	asset, err := h.assets.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, asset, nil)
}

// Create godoc
// @Summary Register asset
// @Tags Assets
// @Accept json
// @Produce json
// @Param payload body service.CreateAssetRequest true "Asset payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /assets [post]
func (h *AssetHandler) Create(c *gin.Context) {
	var req service.CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "invalid payload")
		return
	}
	asset, err := h.assets.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, asset)
}

// Update godoc
// @Summary Update asset
// @Tags Assets
// @Accept json
// @Produce json
// @Param id path string true "Asset ID"
// @Param payload body service.UpdateAssetRequest true "Asset payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /assets/{id} [put]
func (h *AssetHandler) Update(c *gin.Context) {
	var req service.UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "invalid payload")
		return
	}
	asset, err := h.assets.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, asset, nil)
}

// Delete godoc
// @Summary Delete asset
// @Description Soft-deletes the asset. Its history is kept.
// @Tags Assets
// @Param id path string true "Asset ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /assets/{id} [delete]
func (h *AssetHandler) Delete(c *gin.Context) {
	if err := h.assets.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// History godoc
// @Summary Asset history
// @Tags Assets
// @Produce json
// @Param id path string true "Asset ID"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /assets/{id}/history [get]
func (h *AssetHandler) History(c *gin.Context) {
	page, size := pageParams(c)
	entries, pagination, err := h.assets.History(c.Request.Context(), c.Param("id"), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, pagination)
}

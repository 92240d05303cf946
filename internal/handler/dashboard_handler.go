package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/asset-tracker-api/internal/middleware"
	"github.com/noah-isme/asset-tracker-api/internal/models"
	"github.com/noah-isme/asset-tracker-api/pkg/response"
)

type dashboardService interface {
	Get(ctx context.Context, query string) (*models.Dashboard, bool, error)
}

// DashboardHandler serves the overview page data.
type DashboardHandler struct {
	service dashboardService
}

func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Get godoc
// @Summary Dashboard
// @Description Asset counts, recent history and per-employee holdings.
// @Tags Dashboard
// @Produce json
// @Param q query string false "Filter employees by name or held asset"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	dashboard, cacheHit, err := h.service.Get(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, dashboard, nil, middleware.ExtractMeta(c))
}

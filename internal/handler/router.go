package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/asset-tracker-api/internal/middleware"
	"github.com/noah-isme/asset-tracker-api/internal/models"
)

// Handlers bundles every HTTP handler mounted under the API prefix.
type Handlers struct {
	Auth      *AuthHandler
	Assets    *AssetHandler
	Transfer  *TransferHandler
	Employees *EmployeeHandler
	Catalog   *CatalogHandler
	Lifecycle *LifecycleHandler
	Dashboard *DashboardHandler
}

// Register mounts the API routes on api. Everything except login and refresh
// requires a valid access token.
func Register(api *gin.RouterGroup, h Handlers, tokens middleware.TokenValidator) {
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)

	secured := api.Group("")
	secured.Use(middleware.JWT(tokens), middleware.CurrentActor(), middleware.ResourceIDs(), middleware.WithResponseMeta())
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	secured.POST("/auth/logout", h.Auth.Logout)
	secured.POST("/auth/change-password", h.Auth.ChangePassword)
	secured.GET("/auth/me", h.Auth.Me)

	secured.GET("/employees", h.Employees.List)
	secured.POST("/employees", h.Employees.Create)
	secured.GET("/employees/:id", h.Employees.Get)
	secured.PUT("/employees/:id", h.Employees.Update)
	secured.DELETE("/employees/:id", adminOnly, h.Employees.Delete)

	secured.GET("/asset-types", h.Catalog.ListTypes)
	secured.POST("/asset-types", h.Catalog.CreateType)
	secured.GET("/history", h.Catalog.ListHistory)

	secured.POST("/assets/import", h.Transfer.Import)
	secured.GET("/assets/import/sample", h.Transfer.Sample)
	secured.GET("/assets/export", adminOnly, h.Transfer.Export)

	secured.GET("/assets", h.Assets.List)
	secured.POST("/assets", h.Assets.Create)
	secured.GET("/assets/:id", h.Assets.Get)
	secured.PUT("/assets/:id", h.Assets.Update)
	secured.DELETE("/assets/:id", adminOnly, h.Assets.Delete)
	secured.GET("/assets/:id/history", h.Assets.History)

	secured.GET("/assets/:id/documents", h.Lifecycle.ListDocuments)
	secured.POST("/assets/:id/documents", h.Lifecycle.UploadDocument)
	secured.GET("/documents/:id/download", h.Lifecycle.DownloadDocument)
	secured.DELETE("/documents/:id", h.Lifecycle.DeleteDocument)

	secured.GET("/assets/:id/disposal", h.Lifecycle.GetDisposal)
	secured.POST("/assets/:id/disposal", h.Lifecycle.CreateDisposal)
	secured.GET("/assets/:id/disposal/certificate", h.Lifecycle.DisposalCertificate)

	secured.GET("/assets/:id/repairs", h.Lifecycle.ListRepairs)
	secured.POST("/assets/:id/repairs", h.Lifecycle.CreateRepair)
	secured.PUT("/repairs/:id", h.Lifecycle.UpdateRepair)

	secured.GET("/dashboard", h.Dashboard.Get)
}

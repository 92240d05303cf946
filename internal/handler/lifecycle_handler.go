package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/asset-tracker-api/internal/service"
	appErrors "github.com/noah-isme/asset-tracker-api/pkg/errors"
	"github.com/noah-isme/asset-tracker-api/pkg/response"
)

// LifecycleHandler covers what happens to an asset after registration:
// attached documents, repairs and disposal.
type LifecycleHandler struct {
	documents *service.DocumentService
	repairs   *service.RepairService
	disposals *service.DisposalService
}

func NewLifecycleHandler(documents *service.DocumentService, repairs *service.RepairService, disposals *service.DisposalService) *LifecycleHandler {
	return &LifecycleHandler{documents: documents, repairs: repairs, disposals: disposals}
}

// UploadDocument godoc
// @Summary Attach document
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Asset ID"
// @Param name formData string false "Display name"
// @Param file formData file true "Document"
// @Success 201 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Security BearerAuth
// @Router /assets/{id}/documents [post]
func (h *LifecycleHandler) UploadDocument(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	upload, release, err := formUpload(header)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer release()

	doc, err := h.documents.Upload(c.Request.Context(), c.Param("id"), c.PostForm("name"), *upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, doc)
}

// ListDocuments godoc
// @Summary List asset documents
// @Tags Documents
// @Produce json
// @Param id path string true "Asset ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /assets/{id}/documents [get]
func (h *LifecycleHandler) ListDocuments(c *gin.Context) {
	docs, err := h.documents.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs, nil)
}

// DownloadDocument godoc
// @Summary Download document
// @Tags Documents
// @Produce octet-stream
// @Param id path string true "Document ID"
// @Param token query string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /documents/{id}/download [get]
func (h *LifecycleHandler) DownloadDocument(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	download, err := h.documents.Download(c.Request.Context(), c.Param("id"), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	sendDownload(c, download)
}

// DeleteDocument godoc
// @Summary Delete document
// @Tags Documents
// @Param id path string true "Document ID"
// @Success 204
// @Security BearerAuth
// @Router /documents/{id} [delete]
func (h *LifecycleHandler) DeleteDocument(c *gin.Context) {
	if err := h.documents.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateRepair godoc
// @Summary Report repair
// @Tags Repairs
// @Accept json
// @Produce json
// @Param id path string true "Asset ID"
// @Param payload body service.CreateRepairRequest true "Repair"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /assets/{id}/repairs [post]
func (h *LifecycleHandler) CreateRepair(c *gin.Context) {
	var req service.CreateRepairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "invalid payload")
		return
	}
	repair, err := h.repairs.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, repair)
}

// ListRepairs godoc
// @Summary List repairs of an asset
// @Tags Repairs
// @Produce json
// @Param id path string true "Asset ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /assets/{id}/repairs [get]
func (h *LifecycleHandler) ListRepairs(c *gin.Context) {
	repairs, err := h.repairs.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, repairs, nil)
}

// UpdateRepair godoc
// @Summary Update repair status
// @Tags Repairs
// @Accept json
// @Produce json
// @Param id path string true "Repair ID"
// @Param payload body service.UpdateRepairRequest true "Repair update"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /repairs/{id} [put]
func (h *LifecycleHandler) UpdateRepair(c *gin.Context) {
	var req service.UpdateRepairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "invalid payload")
		return
	}
	repair, err := h.repairs.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, repair, nil)
}

// CreateDisposal godoc
// @Summary Dispose asset
// @Description Accepts JSON or multipart with an optional certificate file.
// @Tags Disposal
// @Accept json,mpfd
// @Produce json
// @Param id path string true "Asset ID"
// @Param disposal_date formData string true "YYYY-MM-DD"
// @Param method formData string true "Disposal method"
// @Param remarks formData string false "Remarks"
// @Param certificate formData file false "Certificate"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /assets/{id}/disposal [post]
func (h *LifecycleHandler) CreateDisposal(c *gin.Context) {
	var req service.DisposalRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err, "invalid payload")
		return
	}

	var certificate *service.FileUpload
	if header, err := c.FormFile("certificate"); err == nil {
		upload, release, openErr := formUpload(header)
		if openErr != nil {
			response.Error(c, openErr)
			return
		}
		defer release()
		certificate = upload
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		bindError(c, err, "invalid certificate upload")
		return
	}

	record, err := h.disposals.Create(c.Request.Context(), c.Param("id"), req, certificate)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// GetDisposal godoc
// @Summary Get disposal record
// @Tags Disposal
// @Produce json
// @Param id path string true "Asset ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /assets/{id}/disposal [get]
func (h *LifecycleHandler) GetDisposal(c *gin.Context) {
	record, err := h.disposals.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// DisposalCertificate godoc
// @Summary Download disposal certificate
// @Tags Disposal
// @Produce octet-stream
// @Param id path string true "Asset ID"
// @Param token query string true "Signed token"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /assets/{id}/disposal/certificate [get]
func (h *LifecycleHandler) DisposalCertificate(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	download, err := h.disposals.Certificate(c.Request.Context(), c.Param("id"), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	sendDownload(c, download)
}

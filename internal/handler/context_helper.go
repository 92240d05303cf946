package handler

import (
	"bytes"
	"io"
	"mime/multipart"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/asset-tracker-api/internal/middleware"
	"github.com/noah-isme/asset-tracker-api/internal/models"
	"github.com/noah-isme/asset-tracker-api/internal/service"
	appErrors "github.com/noah-isme/asset-tracker-api/pkg/errors"
	"github.com/noah-isme/asset-tracker-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.Claims(c)
	if !ok {
		return nil
	}
	return claims
}

func bindError(c *gin.Context, err error, message string) {
	response.Error(c, appErrors.Invalid(err, message))
}

// pageParams reads page and page_size; invalid values fall through to the service defaults.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(models.DefaultPageSize)))
	return page, size
}

func sendDownload(c *gin.Context, download *service.FileDownload) {
	defer download.File.Close() //nolint:errcheck
	response.Stream(c, download.Filename, download.MimeType, download.Size, download.File)
}

// formUpload buffers a multipart file when the part cannot seek.
func formUpload(header *multipart.FileHeader) (*service.FileUpload, func(), error) {
	src, err := header.Open()
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to open file")
	}
	reader, ok := src.(io.ReadSeeker)
	if !ok {
		buf, readErr := io.ReadAll(src)
		src.Close() //nolint:errcheck
		if readErr != nil {
			return nil, nil, appErrors.Internal(readErr, "failed to buffer file")
		}
		return &service.FileUpload{
			Filename: header.Filename,
			Size:     int64(len(buf)),
			MimeType: header.Header.Get("Content-Type"),
			Content:  bytes.NewReader(buf),
		}, func() {}, nil
	}
	return &service.FileUpload{
		Filename: header.Filename,
		Size:     header.Size,
		MimeType: header.Header.Get("Content-Type"),
		Content:  reader,
	}, func() { _ = src.Close() }, nil
}

package response

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/asset-tracker-api/internal/models"
	appErrors "github.com/noah-isme/asset-tracker-api/pkg/errors"
)

// Envelope is the body of every JSON response: {data, error, pagination, meta}.
type Envelope struct {
	Data       interface{}            `json:"data,omitempty"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Pagination *models.Pagination     `json:"pagination,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}

// JSON writes data with optional pagination and the first non-nil meta map.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination, meta ...map[string]interface{}) {
	noStore(c)
	envelope := Envelope{Data: data, Pagination: pagination}
	for _, m := range meta {
		if m != nil {
			envelope.Meta = m
			break
		}
	}
	c.JSON(status, envelope)
}

func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// Error maps err onto its typed status. Server-side failures keep the
// underlying cause on c.Errors for the access log; the client only sees the
// public message.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	noStore(c)
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Attachment marks the response as a file download named filename.
func Attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	noStore(c)
}

// File sends an in-memory download such as an export or the import template.
func File(c *gin.Context, filename, contentType string, data []byte) {
	Attachment(c, filename)
	c.Data(http.StatusOK, contentType, data)
}

// Stream copies a stored file of known size to the client.
func Stream(c *gin.Context, filename, contentType string, size int64, r io.Reader) {
	Attachment(c, filename)
	c.DataFromReader(http.StatusOK, size, contentType, r, nil)
}

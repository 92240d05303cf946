package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/asset-tracker-api/internal/models"
	appErrors "github.com/noah-isme/asset-tracker-api/pkg/errors"
	"github.com/noah-isme/asset-tracker-api/pkg/response"
)

// ResourceIDs rejects requests whose named path parameters are not UUIDs with
// 404, so malformed ids never reach a UUID column.
func ResourceIDs(params ...string) gin.HandlerFunc {
	if len(params) == 0 {
		params = []string{"id"}
	}
	return func(c *gin.Context) {
		for _, name := range params {
			value, ok := c.Params.Get(name)
			if ok && !models.IsUUID(value) {
				response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "resource not found"))
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

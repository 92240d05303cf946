package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/asset-tracker-api/internal/actor"
	"github.com/noah-isme/asset-tracker-api/pkg/logger"
)

// CurrentActor copies the authenticated user onto the request context so
// services can attribute history entries. The original request is restored
// once the handler chain returns, panics included.
func CurrentActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			c.Next()
			return
		}
		original := c.Request
		defer func() { c.Request = original }()

		ctx := actor.WithActor(original.Context(), actor.Actor{
			UserID:   claims.UserID,
			Username: claims.Username,
			Role:     string(claims.Role),
		})
		c.Request = original.WithContext(ctx)
		c.Set(logger.ContextActorKey, claims.Username)
		c.Next()
	}
}

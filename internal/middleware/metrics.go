package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/asset-tracker-api/internal/service"
)

const unmatchedRoute = "unmatched"

// Metrics observes latency and status per route template. Requests that match
// no route share one label.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

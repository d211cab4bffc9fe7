package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard-api/internal/observability"
)

// RequestMetrics records request counts and latencies per route.
func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		observability.RecordHTTPRequest(c.Request.Method, routeLabel(c), c.Writer.Status(), time.Since(start))
	}
}

// unmatchedRoute labels requests that matched no route so arbitrary URLs do
// not create new series.
const unmatchedRoute = "unmatched"

func routeLabel(c *gin.Context) string {
	if path := c.FullPath(); path != "" {
		return path
	}
	return unmatchedRoute
}

package middlewares

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"spareshop-api/metrics"
)

// Metrics records request count, latency and in-flight requests. Paths are
// labelled with the route pattern so ids do not explode cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.IncInFlight()
		defer metrics.DecInFlight()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveHTTP(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}

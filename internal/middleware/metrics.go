package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/citydex/outreach/pkg/metrics"
)

// Metrics observes per-route request latency. Routes are labelled by their
// registered pattern so path parameters do not explode the cardinality;
// unmatched requests fall back to the raw path.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		metrics.APILatency.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

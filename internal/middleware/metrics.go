package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aschalew-star/tenderalert/pkg/metrics"
)

// unmatchedRoute caps label cardinality: requests that miss every route
// would otherwise mint one series per raw URL path.
const unmatchedRoute = "unmatched"

// Metrics observes per-request latency on the API histogram, labelled by
// method, route template, and status.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}

		metrics.APILatency.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

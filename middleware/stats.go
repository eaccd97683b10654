package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/contentscore/metrics"
	"github.com/seo-optimizer/contentscore/stats"
)

// PageURLKey is set by handlers that analyze a fetched page so the traffic
// tracker can count popular pages.
const PageURLKey = "page_url"

// Stats records request metrics for every route and traffic figures for the
// analysis endpoints.
func Stats(m *metrics.Metrics, traffic *stats.Traffic) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		traffic.TrackVisitor(c.ClientIP())
		m.InFlight().Inc()
		defer m.InFlight().Dec()

		c.Next()

		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), elapsed)

		if c.Request.Method == "POST" && strings.HasPrefix(route, "/api/analyze") {
			loadTime := float64(elapsed.Microseconds()) / 1000
			traffic.TrackAnalysis(c.GetString(PageURLKey), loadTime, c.Writer.Status() >= 400)
		}
	}
}

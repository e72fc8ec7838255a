package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adknaupp/cytometry-manager/internal/observability"
)

var probePaths = map[string]bool{
	"/metrics":     true,
	"/healthcheck": true,
}

func isProbe(c *gin.Context) bool {
	return probePaths[c.Request.URL.Path]
}

// routeLabel is the gin route template, so /api/samples/7 and
// /api/samples/8 share one series.
func routeLabel(c *gin.Context) string {
	if r := c.FullPath(); r != "" {
		return r
	}
	return "unmatched"
}

// Metrics records request counts and latency per route template.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil || isProbe(c) {
			c.Next()
			return
		}
		m.ApiInflightInc()
		start := time.Now()
		c.Next()
		m.ApiInflightDec()
		m.ObserveAPI(c.Request.Method, routeLabel(c), strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

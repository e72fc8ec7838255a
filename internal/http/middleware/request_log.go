package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adknaupp/cytometry-manager/internal/platform/ctxutil"
	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
)

// RequestLogger writes one line per API call. Probe traffic is logged at
// debug so it does not drown out ingestion and resolution calls.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	reqLog := log.With("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := routeLabel(c)
		fields := append([]interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}, ctxutil.LogFields(c.Request.Context())...)
		if n := c.Writer.Size(); n > 0 {
			fields = append(fields, "bytes", n)
		}
		if err := c.Errors.Last(); err != nil {
			fields = append(fields, "error", err.Error())
		}

		switch {
		case isProbe(c):
			reqLog.Debug("request", fields...)
		case status >= 500:
			reqLog.Error("request", fields...)
		case status >= 400:
			reqLog.Warn("request", fields...)
		default:
			reqLog.Info("request", fields...)
		}
	}
}

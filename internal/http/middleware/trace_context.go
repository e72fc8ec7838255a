package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/adknaupp/cytometry-manager/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"

	maxIDLen = 128
)

// AttachTraceContext stamps every API call with request metadata. Caller
// supplied ids are honoured when sane; the trace id otherwise follows the
// active otelgin span.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		meta := ctxutil.RequestMeta{
			Origin:    ctxutil.OriginAPI,
			RequestID: headerID(c, headerRequestID),
			TraceID:   headerID(c, headerTraceID),
		}
		if meta.RequestID == "" {
			meta.RequestID = uuid.NewString()
		}
		if meta.TraceID == "" {
			if sc := span.SpanContext(); sc.HasTraceID() {
				meta.TraceID = sc.TraceID().String()
			} else {
				meta.TraceID = meta.RequestID
			}
		}
		span.SetAttributes(attribute.String("request.id", meta.RequestID))

		c.Request = c.Request.WithContext(ctxutil.WithRequestMeta(c.Request.Context(), meta))
		c.Set("request_id", meta.RequestID)
		c.Header(headerRequestID, meta.RequestID)
		c.Header(headerTraceID, meta.TraceID)
		c.Next()
	}
}

// headerID drops empty, oversized or multi-line ids so they never reach logs.
func headerID(c *gin.Context, name string) string {
	v := strings.TrimSpace(c.GetHeader(name))
	if len(v) > maxIDLen || strings.ContainsAny(v, "\r\n") {
		return ""
	}
	return v
}

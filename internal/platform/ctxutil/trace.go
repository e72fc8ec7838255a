package ctxutil

import "context"

// Origin values name the surface a call came in through.
const (
	OriginAPI = "api"
	OriginCLI = "cli"
)

type metaKey struct{}

// RequestMeta identifies one inbound call for logs, errors and alerts.
type RequestMeta struct {
	Origin    string
	RequestID string
	TraceID   string
}

func WithRequestMeta(ctx context.Context, m RequestMeta) context.Context {
	return context.WithValue(ctx, metaKey{}, m)
}

func GetRequestMeta(ctx context.Context) (RequestMeta, bool) {
	if ctx == nil {
		return RequestMeta{}, false
	}
	m, ok := ctx.Value(metaKey{}).(RequestMeta)
	return m, ok
}

// RequestID returns the request id carried by ctx, or "".
func RequestID(ctx context.Context) string {
	m, _ := GetRequestMeta(ctx)
	return m.RequestID
}

// LogFields returns the non-empty metadata as logger key/value pairs.
func LogFields(ctx context.Context) []interface{} {
	m, ok := GetRequestMeta(ctx)
	if !ok {
		return nil
	}
	var kv []interface{}
	if m.Origin != "" {
		kv = append(kv, "origin", m.Origin)
	}
	if m.RequestID != "" {
		kv = append(kv, "request_id", m.RequestID)
	}
	if m.TraceID != "" {
		kv = append(kv, "trace_id", m.TraceID)
	}
	return kv
}

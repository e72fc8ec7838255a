package ctxutil

import (
	"context"
	"testing"
)

func TestRequestMetaRoundTrip(t *testing.T) {
	ctx := WithRequestMeta(context.Background(), RequestMeta{Origin: OriginCLI, RequestID: "r-1"})
	m, ok := GetRequestMeta(ctx)
	if !ok || m.Origin != OriginCLI || m.RequestID != "r-1" {
		t.Fatalf("unexpected meta: %+v ok=%v", m, ok)
	}
	if RequestID(ctx) != "r-1" {
		t.Fatalf("RequestID = %q", RequestID(ctx))
	}
}

func TestLogFieldsSkipsEmpty(t *testing.T) {
	if kv := LogFields(context.Background()); kv != nil {
		t.Fatalf("want nil fields without meta, got %v", kv)
	}
	ctx := WithRequestMeta(context.Background(), RequestMeta{Origin: OriginAPI, TraceID: "t-9"})
	kv := LogFields(ctx)
	if len(kv) != 4 || kv[0] != "origin" || kv[1] != OriginAPI || kv[2] != "trace_id" || kv[3] != "t-9" {
		t.Fatalf("fields = %v", kv)
	}
}

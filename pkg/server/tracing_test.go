package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"tagbot/taglang/pkg/config"
	"tagbot/taglang/pkg/telemetry/tracing"
)

func newTracedServer(t *testing.T) (http.Handler, *tracetest.SpanRecorder) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tr, err := tracing.NewWithProcessor(config.TracingConfig{Enabled: true, Sampler: tracing.SamplerAlways}, "test", rec)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = tr.Shutdown(context.Background()) })

	s, _ := newTestServer(t)
	s.opts.Tracer = tr
	return s.Handler(), rec
}

func spanNamed(spans []sdktrace.ReadOnlySpan, name string) sdktrace.ReadOnlySpan {
	for _, s := range spans {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

func TestTracing_ParseSpans(t *testing.T) {
	h, rec := newTracedServer(t)

	resp := do(t, h, http.MethodPost, "/v1/parse", `{"source": "if x do"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.Code)
	}
	if resp.Header().Get(tracing.TraceIDHeader) == "" {
		t.Error("X-Trace-ID header missing")
	}

	spans := rec.Ended()
	server := spanNamed(spans, "POST /v1/parse")
	if server == nil {
		t.Fatalf("no server span among %d spans", len(spans))
	}
	parse := spanNamed(spans, "tag.parse")
	if parse == nil {
		t.Fatal("no tag.parse span")
	}
	if parse.Parent().SpanID() != server.SpanContext().SpanID() {
		t.Error("tag.parse is not a child of the request span")
	}

	attrs := map[string]string{}
	for _, kv := range parse.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	if attrs["tag.parse.outcome"] != "syntax_error" || attrs["tag.error.line"] != "1" {
		t.Errorf("parse span attributes = %v", attrs)
	}
}

func TestTracing_ContinuesClientTrace(t *testing.T) {
	h, rec := newTracedServer(t)

	const traceID = "4bf92f3577b34da6a3ce929d0e0e4736"
	req := httptest.NewRequest(http.MethodPost, "/v1/parse", strings.NewReader(`{"source": "1"}`))
	req.Header.Set("traceparent", "00-"+traceID+"-00f067aa0ba902b7-01")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	if got := resp.Header().Get(tracing.TraceIDHeader); got != traceID {
		t.Errorf("X-Trace-ID = %q, want %q", got, traceID)
	}
	for _, s := range rec.Ended() {
		if s.SpanContext().TraceID().String() != traceID {
			t.Errorf("span %s has trace %s", s.Name(), s.SpanContext().TraceID())
		}
	}
}

func TestTracing_DisabledAddsNoHeader(t *testing.T) {
	s, _ := newTestServer(t)
	resp := do(t, s.Handler(), http.MethodPost, "/v1/parse", `{"source": "1"}`)
	if resp.Header().Get(tracing.TraceIDHeader) != "" {
		t.Error("X-Trace-ID set with tracing disabled")
	}
}

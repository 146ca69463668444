package tracing

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"tagbot/taglang/pkg/config"
	tagerrors "tagbot/taglang/pkg/tag/errors"
)

func newRecordingTracer(t *testing.T, sampler string) (*Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tr, err := NewWithProcessor(config.TracingConfig{Enabled: true, Sampler: sampler, SampleRatio: 1}, "test", rec)
	if err != nil {
		t.Fatalf("NewWithProcessor() error = %v", err)
	}
	t.Cleanup(func() { _ = tr.Shutdown(context.Background()) })
	return tr, rec
}

func TestNew_Disabled(t *testing.T) {
	tr, err := New(config.TracingConfig{}, "test")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tr.Enabled() {
		t.Error("disabled config produced an enabled tracer")
	}

	ctx, span := tr.Start(context.Background(), "noop")
	span.End()
	if TraceID(ctx) != "" {
		t.Error("no-op span has a trace ID")
	}
	if err := tr.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNilTracer(t *testing.T) {
	var tr *Tracer
	_, span := tr.Start(context.Background(), "nil")
	span.End()
	if tr.Enabled() {
		t.Error("nil tracer reports enabled")
	}
	if err := tr.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestStart_RecordsSpans(t *testing.T) {
	tr, rec := newRecordingTracer(t, SamplerAlways)

	ctx, parent := tr.Start(context.Background(), "parent")
	_, child := tr.Start(ctx, "child")
	child.End()
	parent.End()

	spans := rec.Ended()
	if len(spans) != 2 {
		t.Fatalf("recorded %d spans, want 2", len(spans))
	}
	if spans[0].Name() != "child" || spans[1].Name() != "parent" {
		t.Errorf("span names = %q, %q", spans[0].Name(), spans[1].Name())
	}
	if spans[0].Parent().SpanID() != spans[1].SpanContext().SpanID() {
		t.Error("child is not linked to its parent")
	}
	if TraceID(ctx) != spans[1].SpanContext().TraceID().String() {
		t.Error("TraceID does not match the parent span")
	}
}

func TestStart_NeverSampler(t *testing.T) {
	tr, rec := newRecordingTracer(t, SamplerNever)

	_, span := tr.Start(context.Background(), "dropped")
	span.End()
	if n := len(rec.Ended()); n != 0 {
		t.Errorf("recorded %d spans with the never sampler", n)
	}
}

func TestRecordParseError(t *testing.T) {
	tr, rec := newRecordingTracer(t, SamplerAlways)

	_, span := tr.Start(context.Background(), "tag.parse")
	span.SetAttributes(ParseAttributes("<input>", 7, 0, "syntax")...)
	RecordParseError(span, tagerrors.NewSyntaxError(tagerrors.Location{Line: 2, Column: 5}, "end", []string{"NAME"}))
	span.End()

	s := rec.Ended()[0]
	if s.Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", s.Status().Code)
	}
	attrs := map[string]string{}
	for _, kv := range s.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	for key, want := range map[string]string{
		"tag.source.name":   "<input>",
		"tag.source.bytes":  "7",
		"tag.parse.outcome": "syntax",
		"tag.error.type":    "syntax",
		"tag.error.line":    "2",
		"tag.error.column":  "5",
	} {
		if attrs[key] != want {
			t.Errorf("%s = %q, want %q", key, attrs[key], want)
		}
	}
	if len(s.Events()) == 0 {
		t.Error("error event not recorded")
	}
}

func TestSetError_NilIsOK(t *testing.T) {
	tr, rec := newRecordingTracer(t, SamplerAlways)

	_, span := tr.Start(context.Background(), "ok")
	SetError(span, nil)
	span.End()
	if rec.Ended()[0].Status().Code != codes.Ok {
		t.Error("nil error did not set status OK")
	}

	_, span = tr.Start(context.Background(), "plain")
	SetError(span, errors.New("boom"))
	span.End()
	if rec.Ended()[1].Status().Description != "boom" {
		t.Errorf("status = %+v", rec.Ended()[1].Status())
	}
}

func TestExtractInject(t *testing.T) {
	tr, _ := newRecordingTracer(t, SamplerAlways)

	ctx, span := tr.Start(context.Background(), "client")
	defer span.End()

	h := http.Header{}
	Inject(ctx, h)
	if h.Get("traceparent") == "" {
		t.Fatal("traceparent not injected")
	}

	remote := Extract(context.Background(), h)
	if TraceID(remote) != TraceID(ctx) {
		t.Errorf("extracted trace ID %q, want %q", TraceID(remote), TraceID(ctx))
	}
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		strategy string
		ratio    float64
		wantErr  bool
	}{
		{SamplerAlways, 0, false},
		{SamplerNever, 0, false},
		{SamplerRatio, 0.5, false},
		{SamplerRatio, 1.5, true},
		{"sometimes", 0, true},
	}
	for _, tt := range tests {
		s, err := createSampler(tt.strategy, tt.ratio)
		if (err != nil) != tt.wantErr {
			t.Errorf("createSampler(%q, %v) error = %v, wantErr %v", tt.strategy, tt.ratio, err, tt.wantErr)
		}
		if err == nil {
			var _ sdktrace.Sampler = s
		}
	}
}

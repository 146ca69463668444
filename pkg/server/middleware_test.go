package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tagbot/taglang/pkg/telemetry/logging"
)

func TestRecoveryMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Config{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}

	h := RecoveryMiddleware(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"type":"internal"`) {
		t.Errorf("body = %s", rec.Body)
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Error("panic value leaked to the client")
	}
	if !strings.Contains(buf.String(), "Panic in handler") {
		t.Errorf("panic not logged: %s", buf.String())
	}
}

func TestLoggingMiddleware_Levels(t *testing.T) {
	tests := []struct {
		code  int
		level string
	}{
		{http.StatusOK, `"level":"INFO"`},
		{http.StatusNotFound, `"level":"WARN"`},
		{http.StatusBadGateway, `"level":"ERROR"`},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		logger, err := logging.New(logging.Config{Level: "info", Format: "json", Writer: &buf})
		if err != nil {
			t.Fatal(err)
		}
		h := RequestIDMiddleware(LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.code)
		})))

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(RequestIDHeader, "req-42")
		h.ServeHTTP(httptest.NewRecorder(), req)

		out := buf.String()
		if !strings.Contains(out, tt.level) {
			t.Errorf("status %d logged as %s", tt.code, out)
		}
		if !strings.Contains(out, `"request_id":"req-42"`) {
			t.Errorf("request ID missing from %s", out)
		}
	}
}

func TestRequestIDMiddleware_RejectsLongIDs(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = logging.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", maxRequestIDLength+1))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen == "" || len(seen) > maxRequestIDLength {
		t.Errorf("context request ID = %q", seen)
	}
	if rec.Header().Get(RequestIDHeader) != seen {
		t.Error("header and context disagree")
	}
}

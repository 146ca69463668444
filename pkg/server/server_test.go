package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"tagbot/taglang/pkg/config"
	"tagbot/taglang/pkg/snippets"
	"tagbot/taglang/pkg/snippets/storage"
	tagerrors "tagbot/taglang/pkg/tag/errors"
	"tagbot/taglang/pkg/tag/parser"
	"tagbot/taglang/pkg/telemetry/health"
	"tagbot/taglang/pkg/telemetry/metrics"
)

func newTestServer(t *testing.T) (*Server, *metrics.Collector) {
	t.Helper()
	p, err := parser.Default()
	if err != nil {
		t.Fatalf("parser.Default failed: %v", err)
	}
	mcfg := config.MetricsConfig{Enabled: true, Path: "/metrics", Namespace: "test"}
	m := metrics.NewCollector(&mcfg, prometheus.NewRegistry())
	svc := snippets.NewService(storage.NewMemoryStorage(), p, snippets.Config{
		MaxSourceBytes:   256,
		DefaultListLimit: 10,
		MaxListLimit:     100,
	}, m, nil)

	checker := health.New(time.Second)
	checker.RegisterCheck("snippets", svc.Ping)

	return New(Options{
		Config:         config.ServerConfig{ListenAddress: "127.0.0.1:0", ShutdownTimeout: time.Second},
		Parser:         p,
		Snippets:       svc,
		Metrics:        m,
		Health:         checker,
		Version:        health.NewVersionInfo("test", "abc", "now", "1.0"),
		MaxSourceBytes: 256,
		HealthConfig:   config.HealthConfig{Enabled: true, LivenessPath: "/health", ReadinessPath: "/ready"},
		MetricsConfig:  mcfg,
	}), m
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, r))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *APIError {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Error == nil {
		t.Fatal("error body has no error object")
	}
	return resp.Error
}

func TestParse_OK(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodPost, "/v1/parse", `{"source": "say(\"hi\")"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp struct {
		AST   map[string]any `json:"ast"`
		Nodes int            `json:"nodes"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.AST["type"] != "fncall" {
		t.Errorf("ast type = %v, want fncall", resp.AST["type"])
	}
	if resp.Nodes != 3 {
		t.Errorf("nodes = %d, want 3", resp.Nodes)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestParse_SyntaxError(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodPost, "/v1/parse", `{"source": "if x do"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	e := decodeError(t, rec)
	if e.Type != "syntax" {
		t.Errorf("type = %q, want syntax", e.Type)
	}
	if e.Line != 1 || e.Column == 0 {
		t.Errorf("position = %d:%d", e.Line, e.Column)
	}
	if e.Lexeme != tagerrors.EOF {
		t.Errorf("lexeme = %q, want %q", e.Lexeme, tagerrors.EOF)
	}
	if len(e.Expected) == 0 {
		t.Error("expected set is empty")
	}
}

func TestParse_BadRequests(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	tests := []struct {
		name string
		body string
		code int
		typ  string
	}{
		{"not json", `source=1`, http.StatusBadRequest, errTypeInvalidRequest},
		{"unknown field", `{"src": "1"}`, http.StatusBadRequest, errTypeInvalidRequest},
		{"source over limit", `{"source": "` + strings.Repeat("1", 300) + `"}`, http.StatusRequestEntityTooLarge, errTypeTooLarge},
		{"body over limit", `{"source": "` + strings.Repeat("1", 10000) + `"}`, http.StatusRequestEntityTooLarge, errTypeTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/v1/parse", tt.body)
			if rec.Code != tt.code {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.code, rec.Body)
			}
			if e := decodeError(t, rec); e.Type != tt.typ {
				t.Errorf("type = %q, want %q", e.Type, tt.typ)
			}
		})
	}

	if rec := do(t, h, http.MethodGet, "/v1/parse", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /v1/parse = %d, want 405", rec.Code)
	}
}

func TestSnippets_Lifecycle(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodPut, "/v1/snippets/Greet", `{"source": "say(\"hello \" + user)", "owner": "alice"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, body = %s", rec.Code, rec.Body)
	}
	var saved snippets.Snippet
	if err := json.NewDecoder(rec.Body).Decode(&saved); err != nil {
		t.Fatal(err)
	}
	if saved.Name != "greet" || saved.Owner != "alice" || saved.ID == "" {
		t.Errorf("saved = %+v", saved)
	}

	rec = do(t, h, http.MethodGet, "/v1/snippets/greet", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/v1/snippets/greet/ast", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET ast status = %d, body = %s", rec.Code, rec.Body)
	}
	var compiled struct {
		Snippet snippets.Snippet `json:"snippet"`
		AST     map[string]any   `json:"ast"`
		Nodes   int              `json:"nodes"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&compiled); err != nil {
		t.Fatal(err)
	}
	if compiled.Snippet.Uses != 1 {
		t.Errorf("uses = %d, want 1", compiled.Snippet.Uses)
	}
	if compiled.AST["type"] != "fncall" || compiled.Nodes == 0 {
		t.Errorf("ast = %v (%d nodes)", compiled.AST, compiled.Nodes)
	}

	rec = do(t, h, http.MethodPut, "/v1/snippets/greet", `{"source": "1", "owner": "bob"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("PUT by another owner = %d, want 409", rec.Code)
	}

	rec = do(t, h, http.MethodDelete, "/v1/snippets/greet", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE status = %d", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/v1/snippets/greet", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET after delete = %d, want 404", rec.Code)
	}
	if e := decodeError(t, rec); e.Type != errTypeNotFound {
		t.Errorf("type = %q", e.Type)
	}
}

func TestSnippets_Errors(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		code   int
		typ    string
	}{
		{"syntax error", http.MethodPut, "/v1/snippets/bad", `{"source": "if x do"}`, http.StatusBadRequest, "syntax"},
		{"invalid name", http.MethodPut, "/v1/snippets/no.dots", `{"source": "1"}`, http.StatusBadRequest, errTypeInvalidRequest},
		{"too large", http.MethodPut, "/v1/snippets/big", `{"source": "` + strings.Repeat("1", 300) + `"}`, http.StatusRequestEntityTooLarge, errTypeTooLarge},
		{"missing ast", http.MethodGet, "/v1/snippets/missing/ast", "", http.StatusNotFound, errTypeNotFound},
		{"missing delete", http.MethodDelete, "/v1/snippets/missing", "", http.StatusNotFound, errTypeNotFound},
		{"bad limit", http.MethodGet, "/v1/snippets?limit=x", "", http.StatusBadRequest, errTypeInvalidRequest},
		{"negative offset", http.MethodGet, "/v1/snippets?offset=-1", "", http.StatusBadRequest, errTypeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			if rec.Code != tt.code {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.code, rec.Body)
			}
			if e := decodeError(t, rec); e.Type != tt.typ {
				t.Errorf("type = %q, want %q", e.Type, tt.typ)
			}
		})
	}
}

func TestSnippets_List(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	for _, put := range []struct{ name, owner string }{
		{"c", "alice"}, {"a", "alice"}, {"b", "bob"},
	} {
		body := `{"source": "1", "owner": "` + put.owner + `"}`
		if rec := do(t, h, http.MethodPut, "/v1/snippets/"+put.name, body); rec.Code != http.StatusOK {
			t.Fatalf("PUT %s = %d", put.name, rec.Code)
		}
	}

	names := func(path string) []string {
		rec := do(t, h, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s = %d", path, rec.Code)
		}
		var resp ListSnippetsResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatal(err)
		}
		out := make([]string, 0, len(resp.Snippets))
		for _, sn := range resp.Snippets {
			out = append(out, sn.Name)
		}
		return out
	}

	if got := strings.Join(names("/v1/snippets"), ","); got != "a,b,c" {
		t.Errorf("all = %s", got)
	}
	if got := strings.Join(names("/v1/snippets?owner=alice"), ","); got != "a,c" {
		t.Errorf("alice = %s", got)
	}
	if got := strings.Join(names("/v1/snippets?limit=1&offset=1"), ","); got != "b" {
		t.Errorf("page = %s", got)
	}
	if got := names("/v1/snippets?owner=nobody"); len(got) != 0 {
		t.Errorf("nobody = %v", got)
	}
}

func TestSnippetsDisabled(t *testing.T) {
	p, err := parser.Default()
	if err != nil {
		t.Fatal(err)
	}
	s := New(Options{Parser: p})
	h := s.Handler()

	if rec := do(t, h, http.MethodGet, "/v1/snippets", ""); rec.Code != http.StatusNotFound {
		t.Errorf("snippets route = %d, want 404", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/health", ""); rec.Code != http.StatusNotFound {
		t.Errorf("health route = %d, want 404", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/v1/parse", `{"source": "1"}`); rec.Code != http.StatusOK {
		t.Errorf("parse = %d, want 200", rec.Code)
	}
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	for _, path := range []string{"/health", "/ready", "/version"} {
		if rec := do(t, h, http.MethodGet, path, ""); rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, rec.Code)
		}
	}

	do(t, h, http.MethodPost, "/v1/parse", `{"source": "1"}`)
	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`test_parses_total{origin="http",outcome="ok"} 1`,
		`test_http_requests_total{code="200",method="POST",route="/v1/parse"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output lacks %s", want)
		}
	}
}

func TestRequestIDHeader(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/health", "")
	if id := rec.Header().Get(RequestIDHeader); len(id) != 36 {
		t.Errorf("generated request ID = %q, want a UUID", id)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "client-id-1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if id := rec.Header().Get(RequestIDHeader); id != "client-id-1" {
		t.Errorf("request ID = %q, want the client's", id)
	}
}

func TestServer_StartStop(t *testing.T) {
	s, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/v1/parse"
	var resp *http.Response
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err = http.Post(url, "application/json", bytes.NewBufferString(`{"source": "1"}`))
		if err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if !s.IsRunning() {
		t.Error("IsRunning() = false while serving")
	}
	ln2, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Serve(ctx, ln2); err == nil {
		t.Error("second Serve succeeded")
	}

	s.Stop()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	if s.IsRunning() {
		t.Error("IsRunning() = true after stop")
	}
}

package server

import (
	"bufio"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"tagbot/taglang/pkg/telemetry/logging"
	"tagbot/taglang/pkg/telemetry/metrics"
	"tagbot/taglang/pkg/telemetry/tracing"
)

const (
	// RequestIDHeader is the HTTP header for request ID.
	RequestIDHeader = "X-Request-ID"

	// maxRequestIDLength bounds client-supplied request IDs.
	maxRequestIDLength = 128
)

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// WriteHeader captures the status code before writing.
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

// Write ensures WriteHeader is called if not already done.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Hijack hands the connection to a websocket upgrade. The request is then
// logged as 101 Switching Protocols.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	conn, brw, err := http.NewResponseController(rw.ResponseWriter).Hijack()
	if err == nil && !rw.written {
		rw.statusCode = http.StatusSwitchingProtocols
		rw.written = true
	}
	return conn, brw, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// RequestIDMiddleware stores a request ID in the request context and echoes
// it in the X-Request-ID response header. A client-supplied ID is kept when
// it is short enough; otherwise a UUID is generated.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), requestID)))
	})
}

// LoggingMiddleware logs each request once it completes. Client errors log
// at warn and server errors at error.
//
// Example entry (JSON):
//
//	{
//	  "time": "2026-10-18T10:30:00Z",
//	  "level": "INFO",
//	  "msg": "Request completed",
//	  "component": "server",
//	  "request_id": "0b6f8d0e-...",
//	  "method": "POST",
//	  "path": "/v1/parse",
//	  "status": 200,
//	  "latency_ms": 3
//	}
func LoggingMiddleware(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)
			ctx := r.Context()

			logger.DebugContext(ctx, "Request started",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			next.ServeHTTP(rw, r)

			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.statusCode,
				"latency_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			}
			switch {
			case rw.statusCode >= 500:
				logger.ErrorContext(ctx, "Request completed", args...)
			case rw.statusCode >= 400:
				logger.WarnContext(ctx, "Request completed", args...)
			default:
				logger.InfoContext(ctx, "Request completed", args...)
			}
		})
	}
}

// TracingMiddleware starts a server span for each request, continuing any
// trace the client propagated in traceparent. The span is renamed to the
// matched route once routing has happened. With tracing disabled the
// request passes through untouched.
func TracingMiddleware(tracer *tracing.Tracer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !tracer.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := tracing.Extract(r.Context(), r.Header)
			ctx, span := tracer.Start(ctx, "HTTP "+r.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					tracing.AttrHTTPMethod.String(r.Method),
					tracing.AttrRequestID.String(logging.GetRequestID(ctx)),
				),
			)
			defer span.End()

			if id := tracing.TraceID(ctx); id != "" {
				w.Header().Set(tracing.TraceIDHeader, id)
			}

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			span.SetAttributes(tracing.AttrHTTPStatusCode.Int(rw.statusCode))
			if rw.statusCode >= 500 {
				span.SetStatus(codes.Error, http.StatusText(rw.statusCode))
			}
		})
	}
}

// RecoveryMiddleware turns a handler panic into a 500 response in the API
// error format. The panic and its stack are logged; clients see neither.
func RecoveryMiddleware(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.ErrorContext(r.Context(), "Panic in handler",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				writeError(w, http.StatusInternalServerError, newAPIError(errTypeInternal,
					"An internal error occurred. Please try again later."))
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// routeMux is a ServeMux that records request metrics per route pattern
// and names the request span after it.
type routeMux struct {
	*http.ServeMux
	metrics *metrics.Collector
	traced  bool
}

// Handle registers handler for pattern, instrumented with the pattern's
// path as its route label.
func (m *routeMux) Handle(pattern string, handler http.Handler) {
	route := pattern
	if _, path, ok := strings.Cut(pattern, " "); ok {
		route = path
	}
	h := instrument(m.metrics, route, handler)
	if m.traced {
		h = nameSpan(pattern, route, h)
	}
	m.ServeMux.Handle(pattern, h)
}

func nameSpan(pattern, route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		span := trace.SpanFromContext(r.Context())
		span.SetName(pattern)
		span.SetAttributes(tracing.AttrHTTPRoute.String(route))
		next.ServeHTTP(w, r)
	})
}

func instrument(c *metrics.Collector, route string, next http.Handler) http.Handler {
	if c == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)
		c.RecordHTTPRequest(r.Method, route, rw.statusCode, time.Since(start))
	})
}

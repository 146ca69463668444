package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// SourceKey is the context key for the name of the tag source being
	// parsed (a file path or a snippet name).
	SourceKey contextKey = "source"

	// SnippetKey is the context key for snippet identifiers.
	SnippetKey contextKey = "snippet_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithSource adds a source name to the context.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, SourceKey, source)
}

// GetSource retrieves the source name from the context.
func GetSource(ctx context.Context) string {
	if source, ok := ctx.Value(SourceKey).(string); ok {
		return source
	}
	return ""
}

// WithSnippetID adds a snippet identifier to the context.
func WithSnippetID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, SnippetKey, id)
}

// GetSnippetID retrieves the snippet identifier from the context.
func GetSnippetID(ctx context.Context) string {
	if id, ok := ctx.Value(SnippetKey).(string); ok {
		return id
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for logger.With().
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}
	if source := GetSource(ctx); source != "" {
		fields = append(fields, "source", source)
	}
	if id := GetSnippetID(ctx); id != "" {
		fields = append(fields, "snippet_id", id)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields, "trace_id", sc.TraceID().String())
	}

	return fields
}

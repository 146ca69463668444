package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	tagerrors "tagbot/taglang/pkg/tag/errors"
)

// Span attribute keys.
const (
	AttrSourceName  = attribute.Key("tag.source.name")
	AttrSourceBytes = attribute.Key("tag.source.bytes")
	AttrNodes       = attribute.Key("tag.ast.nodes")
	AttrOutcome     = attribute.Key("tag.parse.outcome")
	AttrErrorType   = attribute.Key("tag.error.type")
	AttrErrorLine   = attribute.Key("tag.error.line")
	AttrErrorColumn = attribute.Key("tag.error.column")
	AttrSnippet     = attribute.Key("tag.snippet.name")

	AttrHTTPMethod     = attribute.Key("http.request.method")
	AttrHTTPRoute      = attribute.Key("http.route")
	AttrHTTPStatusCode = attribute.Key("http.response.status_code")
	AttrRequestID      = attribute.Key("request.id")
)

// ParseAttributes describes one parse of a source.
func ParseAttributes(source string, size, nodes int, outcome string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrSourceName.String(source),
		AttrSourceBytes.Int(size),
		AttrNodes.Int(nodes),
		AttrOutcome.String(outcome),
	}
}

// RecordParseError records err on span. Parse errors also contribute their
// type and position as attributes.
func RecordParseError(span trace.Span, err error) {
	if e, ok := tagerrors.AsError(err); ok {
		span.SetAttributes(
			AttrErrorType.String(string(e.Type)),
			AttrErrorLine.Int(e.Location.Line),
			AttrErrorColumn.Int(e.Location.Column),
		)
	}
	SetError(span, err)
}

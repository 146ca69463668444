// Package tracing records OpenTelemetry spans for HTTP requests, parses and
// snippet operations and exports them to an OTLP collector.
//
// # Configuration
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    endpoint: localhost:4317
//	    sampler: ratio
//	    sample_ratio: 0.1
//	    otlp:
//	      insecure: true
//
// # Propagation
//
// Incoming W3C traceparent and tracestate headers are honoured, so a bot
// that already traces its message handling sees the parse as a child span.
// The trace ID of a traced request is returned in X-Trace-ID and added to
// log entries as trace_id.
//
// # Usage
//
//	tracer, err := tracing.New(cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "tag.parse")
//	defer span.End()
//
// A nil *Tracer is valid and records nothing.
package tracing

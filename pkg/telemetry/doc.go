// Package telemetry groups the observability packages of the tag service.
//
//   - logging: structured logging with a runtime-adjustable level
//   - metrics: Prometheus metrics for parses, snippets and HTTP
//   - tracing: OpenTelemetry spans exported over OTLP
//   - health: liveness, readiness and version endpoints
//
// The parser core never logs or records metrics itself; the CLI, the HTTP
// server and the snippet library do, around each parse.
package telemetry

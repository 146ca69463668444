// Package metrics exposes Prometheus metrics for the tag service.
//
// A Collector registers parse, snippet and HTTP metrics on its own registry
// and serves them through Handler. All metric names are prefixed with the
// configured namespace ("tag" by default):
//
//	tag_parses_total{origin,outcome}
//	tag_parse_duration_seconds{origin}
//	tag_source_bytes
//	tag_ast_nodes
//	tag_snippet_operations_total{op,status}
//	tag_snippet_operation_duration_seconds{op}
//	tag_snippets_pruned_total{reason}
//	tag_snippets_stored
//	tag_http_requests_total{method,route,code}
//	tag_http_request_duration_seconds{method,route}
//
// A nil *Collector records nothing.
package metrics

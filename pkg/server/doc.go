// Package server exposes the tag parser and the snippet library over HTTP.
//
// # Routes
//
//	POST   /v1/parse                  parse {"source": "..."} into an AST
//	GET    /v1/parse/ws               websocket; parse each {"id", "source"} message
//	GET    /v1/snippets               list snippets (?owner=&limit=&offset=)
//	PUT    /v1/snippets/{name}        store {"source": "...", "owner": "..."}
//	GET    /v1/snippets/{name}        fetch a stored snippet
//	GET    /v1/snippets/{name}/ast    parse a stored snippet and record a use
//	DELETE /v1/snippets/{name}        remove a snippet
//	GET    /health, /ready, /version  probes and build information
//	GET    /metrics                   Prometheus scrape endpoint
//
// Errors share one body shape. Syntax errors carry the position of the
// failure:
//
//	{
//	    "error": {
//	        "type": "syntax",
//	        "message": "unexpected end of input",
//	        "line": 1,
//	        "column": 8,
//	        "lexeme": "<EOF>",
//	        "expected": ["\"end\"", "NAME"],
//	        "suggestion": "Close the block with 'end'"
//	    }
//	}
//
// The websocket stream answers each message with {"id", "ast", "nodes"} or
// {"id", "error"}, using the same error object. A malformed message is
// answered with an invalid_request error and the stream stays open. Open
// streams are closed with a going-away frame when the server shuts down.
//
// Other error types are invalid_request (400), not_found (404), conflict
// (409, the snippet has another owner), too_large (413) and internal (500).
//
// # Middleware
//
// Every request passes through panic recovery, request ID assignment
// (X-Request-ID, a UUID unless the client sent one), tracing and structured
// request logging. Routed requests are also counted per route pattern when a
// metrics collector is configured. With a tracer, each request gets a server
// span named after its route, parses get a tag.parse child span and the
// trace ID is returned in X-Trace-ID.
//
// # Basic Usage
//
//	srv := server.New(server.Options{
//	    Config:         cfg.Server,
//	    Parser:         p,
//	    Snippets:       svc,
//	    Metrics:        collector,
//	    Health:         checker,
//	    MaxSourceBytes: cfg.Parser.MaxSourceBytes,
//	    HealthConfig:   cfg.Telemetry.Health,
//	    MetricsConfig:  cfg.Telemetry.Metrics,
//	    Logger:         logger,
//	})
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// Start returns after a graceful shutdown once ctx is cancelled or Stop is
// called.
package server

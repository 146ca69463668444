// Package logging provides structured logging for the tag service.
//
// Logger wraps log/slog with JSON, text and console output and a level that
// can be changed at runtime with SetLevel, which is how a configuration
// reload takes effect:
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	logger.InfoContext(ctx, "Parsed source", "nodes", n)
//
// Request IDs, source names and snippet IDs stored in a context with
// WithRequestID, WithSource and WithSnippetID are added to every entry
// logged through the *Context methods.
package logging

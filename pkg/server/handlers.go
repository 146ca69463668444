package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"tagbot/taglang/pkg/snippets"
	"tagbot/taglang/pkg/tag/ast"
	tagerrors "tagbot/taglang/pkg/tag/errors"
	"tagbot/taglang/pkg/telemetry/tracing"
)

// Error types of the API error body besides the tag error types
// ("syntax", "structural", "grammar").
const (
	errTypeInvalidRequest = "invalid_request"
	errTypeTooLarge       = "too_large"
	errTypeNotFound       = "not_found"
	errTypeConflict       = "conflict"
	errTypeInternal       = "internal"
)

// inputName is the source name reported for sources posted to /v1/parse.
const inputName = "<input>"

// envelopeSlack is what a JSON request body may add on top of the source
// itself: the surrounding object and escaping of the source text.
const envelopeSlack = 4096

// APIError is the body of every error response: {"error": {...}}.
type APIError struct {
	Type       string   `json:"type"`
	Message    string   `json:"message"`
	Line       int      `json:"line,omitempty"`
	Column     int      `json:"column,omitempty"`
	Lexeme     string   `json:"lexeme,omitempty"`
	Expected   []string `json:"expected,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
}

type errorResponse struct {
	Error *APIError `json:"error"`
}

func newAPIError(typ, message string) *APIError {
	return &APIError{Type: typ, Message: message}
}

// fromTagError converts a parse error, keeping its position information.
func fromTagError(e *tagerrors.Error) *APIError {
	return &APIError{
		Type:       string(e.Type),
		Message:    e.Message,
		Line:       e.Location.Line,
		Column:     e.Location.Column,
		Lexeme:     e.Lexeme,
		Expected:   e.Expected,
		Suggestion: e.Suggestion,
	}
}

// ParseRequest is the body of POST /v1/parse.
type ParseRequest struct {
	Source string `json:"source"`
}

// ParseResponse is the body of a successful parse.
type ParseResponse struct {
	AST   ast.Node `json:"ast"`
	Nodes int      `json:"nodes"`
}

// PutSnippetRequest is the body of PUT /v1/snippets/{name}.
type PutSnippetRequest struct {
	Source string `json:"source"`
	Owner  string `json:"owner"`
}

// SnippetASTResponse is the body of GET /v1/snippets/{name}/ast.
type SnippetASTResponse struct {
	Snippet *snippets.Snippet `json:"snippet"`
	AST     ast.Node          `json:"ast"`
	Nodes   int               `json:"nodes"`
}

// ListSnippetsResponse is the body of GET /v1/snippets.
type ListSnippetsResponse struct {
	Snippets []*snippets.Snippet `json:"snippets"`
	Limit    int                 `json:"limit"`
	Offset   int                 `json:"offset"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if !s.decode(w, r, &req) {
		return
	}
	if s.tooLarge(w, req.Source) {
		return
	}

	node, nodes, err := s.parse(r.Context(), "http", req.Source)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ParseResponse{AST: node, Nodes: nodes})
}

// parse runs the parser under a tag.parse span and records the outcome
// against transport.
func (s *Server) parse(ctx context.Context, transport, source string) (ast.Node, int, error) {
	_, span := s.opts.Tracer.Start(ctx, "tag.parse")
	defer span.End()

	start := time.Now()
	node, err := s.opts.Parser.ParseNamed(inputName, source)
	nodes := 0
	if err == nil {
		nodes = ast.Count(node)
	}
	outcome := tagerrors.Outcome(err)
	s.opts.Metrics.RecordParse(transport, outcome, time.Since(start), len(source), nodes)
	span.SetAttributes(tracing.ParseAttributes(inputName, len(source), nodes, outcome)...)
	tracing.RecordParseError(span, err)
	return node, nodes, err
}

func (s *Server) handlePutSnippet(w http.ResponseWriter, r *http.Request) {
	var req PutSnippetRequest
	if !s.decode(w, r, &req) {
		return
	}
	if s.tooLarge(w, req.Source) {
		return
	}

	ctx, span := s.opts.Tracer.Start(r.Context(), "snippet.save")
	span.SetAttributes(tracing.AttrSnippet.String(r.PathValue("name")), tracing.AttrSourceBytes.Int(len(req.Source)))
	sn, err := s.opts.Snippets.Save(ctx, r.PathValue("name"), req.Owner, req.Source)
	tracing.RecordParseError(span, err)
	span.End()
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sn)
}

func (s *Server) handleGetSnippet(w http.ResponseWriter, r *http.Request) {
	sn, err := s.opts.Snippets.Get(r.Context(), r.PathValue("name"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sn)
}

func (s *Server) handleSnippetAST(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.opts.Tracer.Start(r.Context(), "snippet.compile")
	span.SetAttributes(tracing.AttrSnippet.String(r.PathValue("name")))
	sn, node, err := s.opts.Snippets.Compile(ctx, r.PathValue("name"))
	tracing.RecordParseError(span, err)
	span.End()
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SnippetASTResponse{Snippet: sn, AST: node, Nodes: ast.Count(node)})
}

func (s *Server) handleDeleteSnippet(w http.ResponseWriter, r *http.Request) {
	if err := s.opts.Snippets.Delete(r.Context(), r.PathValue("name")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSnippets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := queryInt(q.Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, newAPIError(errTypeInvalidRequest, "limit: "+err.Error()))
		return
	}
	offset, err := queryInt(q.Get("offset"))
	if err != nil {
		writeError(w, http.StatusBadRequest, newAPIError(errTypeInvalidRequest, "offset: "+err.Error()))
		return
	}

	opts := snippets.ListOptions{Owner: q.Get("owner"), Limit: limit, Offset: offset}
	list, err := s.opts.Snippets.List(r.Context(), opts)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []*snippets.Snippet{}
	}
	writeJSON(w, http.StatusOK, ListSnippetsResponse{Snippets: list, Limit: limit, Offset: offset})
}

// decode reads a JSON body into v, answering 400 or 413 itself on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if s.opts.MaxSourceBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, int64(2*s.opts.MaxSourceBytes+envelopeSlack))
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, newAPIError(errTypeTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)))
			return false
		}
		writeError(w, http.StatusBadRequest, newAPIError(errTypeInvalidRequest,
			"invalid JSON body: "+err.Error()))
		return false
	}
	return true
}

func (s *Server) tooLarge(w http.ResponseWriter, source string) bool {
	e := s.sourceLimitError(source)
	if e == nil {
		return false
	}
	writeError(w, http.StatusRequestEntityTooLarge, e)
	return true
}

// sourceLimitError returns a too_large error when source exceeds
// MaxSourceBytes, nil otherwise.
func (s *Server) sourceLimitError(source string) *APIError {
	if s.opts.MaxSourceBytes <= 0 || len(source) <= s.opts.MaxSourceBytes {
		return nil
	}
	return newAPIError(errTypeTooLarge,
		fmt.Sprintf("source is %d bytes; the limit is %d", len(source), s.opts.MaxSourceBytes))
}

// writeServiceError maps parser and snippet errors onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if e, ok := tagerrors.AsError(err); ok {
		code := http.StatusBadRequest
		if e.Type != tagerrors.ErrorTypeSyntax {
			// A structural or grammar error is a fault of the service, not the input.
			code = http.StatusInternalServerError
			s.logger.ErrorContext(r.Context(), "Parser failure", "error", err)
		}
		writeError(w, code, fromTagError(e))
		return
	}

	switch {
	case errors.Is(err, snippets.ErrNotFound):
		writeError(w, http.StatusNotFound, newAPIError(errTypeNotFound, err.Error()))
	case errors.Is(err, snippets.ErrInvalidName):
		writeError(w, http.StatusBadRequest, newAPIError(errTypeInvalidRequest, err.Error()))
	case errors.Is(err, snippets.ErrSourceTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, newAPIError(errTypeTooLarge, err.Error()))
	case errors.Is(err, snippets.ErrOwnerMismatch):
		writeError(w, http.StatusConflict, newAPIError(errTypeConflict, err.Error()))
	default:
		s.logger.ErrorContext(r.Context(), "Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, newAPIError(errTypeInternal, "internal error"))
	}
}

func queryInt(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("must be a non-negative integer, got %q", v)
	}
	return n, nil
}

func writeError(w http.ResponseWriter, code int, e *APIError) {
	writeJSON(w, code, errorResponse{Error: e})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

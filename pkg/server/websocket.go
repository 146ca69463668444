package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"tagbot/taglang/pkg/tag/ast"
	tagerrors "tagbot/taglang/pkg/tag/errors"
)

const (
	// streamIdleTimeout closes a stream that sends neither a message nor a
	// pong for this long.
	streamIdleTimeout = 120 * time.Second

	// streamWriteTimeout bounds a single reply.
	streamWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Browser editors are served from other origins.
	CheckOrigin: func(*http.Request) bool { return true },
}

// StreamRequest is one message sent to GET /v1/parse/ws. ID is echoed in
// the reply so clients can match replies to requests.
type StreamRequest struct {
	ID     string `json:"id,omitempty"`
	Source string `json:"source"`
}

// StreamResponse answers one StreamRequest with either an AST or an error.
type StreamResponse struct {
	ID    string    `json:"id,omitempty"`
	AST   ast.Node  `json:"ast,omitempty"`
	Nodes int       `json:"nodes,omitempty"`
	Error *APIError `json:"error,omitempty"`
}

// handleParseStream upgrades to a websocket and parses every message it
// receives, replying in order. A malformed message gets an error reply and
// the stream stays open.
func (s *Server) handleParseStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		s.logger.WarnContext(r.Context(), "WebSocket upgrade failed", "error", err)
		return
	}
	s.trackStream(conn, true)
	defer func() {
		s.trackStream(conn, false)
		_ = conn.Close()
	}()

	ctx := r.Context()
	s.logger.InfoContext(ctx, "Parse stream opened", "remote_addr", conn.RemoteAddr().String())

	if s.opts.MaxSourceBytes > 0 {
		conn.SetReadLimit(int64(2*s.opts.MaxSourceBytes + envelopeSlack))
	}
	_ = conn.SetReadDeadline(time.Now().Add(streamIdleTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamIdleTimeout))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.WarnContext(ctx, "Parse stream read error", "error", err)
			} else {
				s.logger.InfoContext(ctx, "Parse stream closed")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(streamIdleTimeout))

		resp := s.parseMessage(r, data)
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if err := conn.WriteJSON(resp); err != nil {
			s.logger.WarnContext(ctx, "Parse stream write error", "error", err)
			return
		}
	}
}

func (s *Server) parseMessage(r *http.Request, data []byte) StreamResponse {
	var req StreamRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return StreamResponse{Error: newAPIError(errTypeInvalidRequest, "invalid JSON message: "+err.Error())}
	}
	if e := s.sourceLimitError(req.Source); e != nil {
		return StreamResponse{ID: req.ID, Error: e}
	}

	node, nodes, err := s.parse(r.Context(), "ws", req.Source)
	if err == nil {
		return StreamResponse{ID: req.ID, AST: node, Nodes: nodes}
	}
	e, ok := tagerrors.AsError(err)
	if !ok {
		s.logger.ErrorContext(r.Context(), "Parse stream failure", "error", err)
		return StreamResponse{ID: req.ID, Error: newAPIError(errTypeInternal, "internal error")}
	}
	if e.Type != tagerrors.ErrorTypeSyntax {
		s.logger.ErrorContext(r.Context(), "Parser failure", "error", err)
	}
	return StreamResponse{ID: req.ID, Error: fromTagError(e)}
}

// trackStream adds or removes an open stream. Hijacked connections are
// invisible to http.Server.Shutdown, so closeStreams ends them instead.
func (s *Server) trackStream(conn *websocket.Conn, open bool) {
	s.streamsMu.Lock()
	defer s.streamsMu.Unlock()
	if open {
		if s.streams == nil {
			s.streams = make(map[*websocket.Conn]struct{})
		}
		s.streams[conn] = struct{}{}
		return
	}
	delete(s.streams, conn)
}

// closeStreams sends a going-away close frame to every open stream and
// closes it.
func (s *Server) closeStreams() {
	s.streamsMu.Lock()
	defer s.streamsMu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for conn := range s.streams {
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_ = conn.Close()
	}
	if n := len(s.streams); n > 0 {
		s.logger.Info("Closed parse streams", "count", n)
	}
}

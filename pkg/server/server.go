package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"tagbot/taglang/pkg/config"
	"tagbot/taglang/pkg/snippets"
	"tagbot/taglang/pkg/tag/ast"
	"tagbot/taglang/pkg/telemetry/health"
	"tagbot/taglang/pkg/telemetry/logging"
	"tagbot/taglang/pkg/telemetry/metrics"
	"tagbot/taglang/pkg/telemetry/tracing"
)

// Parser turns tag source into an AST. *parser.Parser satisfies it.
type Parser interface {
	ParseNamed(name, src string) (ast.Node, error)
}

// Options wires the server to the rest of the service. Only Config and
// Parser are required; a nil Snippets leaves the snippet routes unmounted
// and a nil Health leaves the probes unmounted.
type Options struct {
	Config    config.ServerConfig
	Parser    Parser
	Snippets  *snippets.Service
	Metrics   *metrics.Collector
	Tracer    *tracing.Tracer
	Health    *health.Checker
	Version   health.VersionInfo
	Logger    *logging.Logger

	// MaxSourceBytes caps the source accepted by /v1/parse. Zero means no limit.
	MaxSourceBytes int

	// HealthConfig and MetricsConfig give the probe and scrape paths.
	HealthConfig  config.HealthConfig
	MetricsConfig config.MetricsConfig
}

// Server is the HTTP server for tag parsing and the snippet library.
type Server struct {
	opts         Options
	logger       *logging.Logger
	httpServer   *http.Server
	shutdownChan chan struct{}
	stopOnce     sync.Once
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
	addr         net.Addr

	streamsMu sync.Mutex
	streams   map[*websocket.Conn]struct{}
}

// New creates a server. It does not listen until Start or Serve is called.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Server{
		opts:         opts,
		logger:       logger.WithComponent("server"),
		shutdownChan: make(chan struct{}),
	}
}

// Start listens on the configured address and serves until ctx is done,
// Stop is called, or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Config.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Config.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is like Start but accepts connections on ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		_ = ln.Close()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.addr = ln.Addr()
	s.httpServer = &http.Server{
		Handler:        s.Handler(),
		ReadTimeout:    s.opts.Config.ReadTimeout,
		WriteTimeout:   s.opts.Config.WriteTimeout,
		IdleTimeout:    s.opts.Config.IdleTimeout,
		MaxHeaderBytes: s.opts.Config.MaxHeaderBytes,
	}
	s.httpServer.RegisterOnShutdown(s.closeStreams)
	httpServer := s.httpServer
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("Starting tag server", "address", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case <-s.shutdownChan:
		s.logger.Info("Shutdown requested")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Stop asks a running Start or Serve to shut down and return.
func (s *Server) Stop() {
	s.stopOnce.Do(func() { close(s.shutdownChan) })
}

// Shutdown gracefully shuts down the server, waiting at most the configured
// shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		httpServer := s.httpServer
		s.mu.Unlock()

		timeout := s.opts.Config.ShutdownTimeout
		if timeout <= 0 {
			timeout = config.DefaultShutdownTimeout
		}
		s.logger.Info("Initiating graceful shutdown", "timeout", timeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("Tag server stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the address the server listens on, or nil before it starts.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := &routeMux{ServeMux: http.NewServeMux(), metrics: s.opts.Metrics, traced: s.opts.Tracer.Enabled()}

	mux.Handle("POST /v1/parse", http.HandlerFunc(s.handleParse))
	mux.Handle("GET /v1/parse/ws", http.HandlerFunc(s.handleParseStream))

	if s.opts.Snippets != nil {
		mux.Handle("GET /v1/snippets", http.HandlerFunc(s.handleListSnippets))
		mux.Handle("PUT /v1/snippets/{name}", http.HandlerFunc(s.handlePutSnippet))
		mux.Handle("GET /v1/snippets/{name}", http.HandlerFunc(s.handleGetSnippet))
		mux.Handle("DELETE /v1/snippets/{name}", http.HandlerFunc(s.handleDeleteSnippet))
		mux.Handle("GET /v1/snippets/{name}/ast", http.HandlerFunc(s.handleSnippetAST))
	}

	if s.opts.Health != nil {
		hc := s.opts.HealthConfig
		live, ready := hc.LivenessPath, hc.ReadinessPath
		if live == "" {
			live = config.DefaultHealthLivenessPath
		}
		if ready == "" {
			ready = config.DefaultHealthReadyPath
		}
		health.Register(mux, s.opts.Health, live, ready, s.opts.Version)
	}

	if s.opts.Metrics != nil && s.opts.MetricsConfig.Enabled {
		path := s.opts.MetricsConfig.Path
		if path == "" {
			path = config.DefaultMetricsPath
		}
		mux.ServeMux.Handle(path, s.opts.Metrics.Handler())
	}

	// Applied inside out: recovery is outermost so it also covers logging.
	var handler http.Handler = mux
	handler = LoggingMiddleware(s.logger)(handler)
	handler = TracingMiddleware(s.opts.Tracer)(handler)
	handler = RequestIDMiddleware(handler)
	handler = RecoveryMiddleware(s.logger)(handler)
	return handler
}

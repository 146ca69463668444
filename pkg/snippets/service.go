package snippets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tagbot/taglang/pkg/tag/ast"
	tagerrors "tagbot/taglang/pkg/tag/errors"
	"tagbot/taglang/pkg/telemetry/logging"
	"tagbot/taglang/pkg/telemetry/metrics"
)

// Parser turns tag source into an AST. *parser.Parser satisfies it.
type Parser interface {
	ParseNamed(name, src string) (ast.Node, error)
}

// Config tunes a Service.
type Config struct {
	// MaxSourceBytes rejects larger sources with ErrSourceTooLarge.
	// Zero means no limit.
	MaxSourceBytes int

	// DefaultListLimit applies when a listing sets no limit.
	DefaultListLimit int

	// MaxListLimit caps any listing.
	MaxListLimit int
}

// Service is the snippet library: it stores named tag programs and compiles
// them on demand. Sources are parsed before they are stored, so everything
// in the store parses.
type Service struct {
	store   Storage
	parser  Parser
	config  Config
	metrics *metrics.Collector
	logger  *logging.Logger
	now     func() time.Time
}

// NewService creates a snippet service. metrics and logger may be nil.
func NewService(store Storage, p Parser, cfg Config, m *metrics.Collector, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{
		store:   store,
		parser:  p,
		config:  cfg,
		metrics: m,
		logger:  logger.WithComponent("snippets"),
		now:     time.Now,
	}
}

// Save parses source and stores it under name. A syntax error is returned
// unchanged (test it with tagerrors.IsSyntax) and nothing is stored.
func (s *Service) Save(ctx context.Context, name, owner, source string) (sn *Snippet, err error) {
	start := s.now()
	defer func() { s.record("save", err, start) }()

	name, err = NormalizeName(name)
	if err != nil {
		return nil, err
	}
	if s.config.MaxSourceBytes > 0 && len(source) > s.config.MaxSourceBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrSourceTooLarge, len(source), s.config.MaxSourceBytes)
	}

	if _, err := s.parse(name, source); err != nil {
		return nil, err
	}

	existing, err := s.store.Get(ctx, name)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return nil, err
	case existing.Owner != "" && existing.Owner != owner:
		return nil, fmt.Errorf("%w: %q is owned by %q", ErrOwnerMismatch, name, existing.Owner)
	}

	now := s.now().UTC()
	stored, err := s.store.Put(ctx, &Snippet{
		ID:        uuid.NewString(),
		Name:      name,
		Owner:     owner,
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(logging.WithSnippetID(ctx, stored.ID), "Snippet saved",
		"name", name,
		"owner", owner,
		"bytes", len(source),
	)
	s.refreshStored(ctx)
	return stored, nil
}

// Get returns the snippet called name.
func (s *Service) Get(ctx context.Context, name string) (sn *Snippet, err error) {
	start := s.now()
	defer func() { s.record("get", err, start) }()

	name, err = NormalizeName(name)
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, name)
}

// Compile loads the snippet called name, parses it and records a use.
func (s *Service) Compile(ctx context.Context, name string) (sn *Snippet, node ast.Node, err error) {
	start := s.now()
	defer func() { s.record("compile", err, start) }()

	name, err = NormalizeName(name)
	if err != nil {
		return nil, nil, err
	}
	sn, err = s.store.Get(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	node, err = s.parse(name, sn.Source)
	if err != nil {
		// Stored sources parse by construction; a failure here means the
		// grammar changed underneath the store.
		s.logger.ErrorContext(logging.WithSnippetID(ctx, sn.ID), "Stored snippet no longer parses",
			"name", name,
			"error", err,
		)
		return sn, nil, err
	}

	at := s.now().UTC()
	if err := s.store.Touch(ctx, name, at); err != nil {
		s.logger.WarnContext(ctx, "Failed to record snippet use", "name", name, "error", err)
	} else {
		sn.LastUsedAt = &at
		sn.Uses++
	}
	return sn, node, nil
}

// Delete removes the snippet called name.
func (s *Service) Delete(ctx context.Context, name string) (err error) {
	start := s.now()
	defer func() { s.record("delete", err, start) }()

	name, err = NormalizeName(name)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, name); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Snippet deleted", "name", name)
	s.refreshStored(ctx)
	return nil
}

// List returns snippets ordered by name, clamping the page size to the
// configured limits.
func (s *Service) List(ctx context.Context, opts ListOptions) (list []*Snippet, err error) {
	start := s.now()
	defer func() { s.record("list", err, start) }()

	if opts.Limit <= 0 {
		opts.Limit = s.config.DefaultListLimit
	}
	if s.config.MaxListLimit > 0 && opts.Limit > s.config.MaxListLimit {
		opts.Limit = s.config.MaxListLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return s.store.List(ctx, opts)
}

// Ping checks the backing store. It is registered as a readiness check.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) parse(name, source string) (ast.Node, error) {
	start := s.now()
	node, err := s.parser.ParseNamed(name, source)
	nodes := 0
	if err == nil {
		nodes = ast.Count(node)
	}
	s.metrics.RecordParse("snippet", tagerrors.Outcome(err), s.now().Sub(start), len(source), nodes)
	return node, err
}

func (s *Service) refreshStored(ctx context.Context) {
	if n, err := s.store.Count(ctx); err == nil {
		s.metrics.SetStoredSnippets(n)
	}
}

func (s *Service) record(op string, err error, start time.Time) {
	s.metrics.RecordSnippetOp(op, status(err), s.now().Sub(start))
}

func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidName), errors.Is(err, ErrSourceTooLarge),
		errors.Is(err, ErrOwnerMismatch), tagerrors.IsSyntax(err):
		return "invalid"
	default:
		return "error"
	}
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers "sqlite3" (cgo)
	_ "modernc.org/sqlite"          // registers "sqlite" (pure Go)

	"tagbot/taglang/pkg/config"
	"tagbot/taglang/pkg/snippets"
)

// Driver names accepted by NewSQLiteStorage.
const (
	DriverCGo  = "sqlite3"
	DriverPure = "sqlite"
)

// SQLiteStorage implements snippets.Storage on SQLite through either the
// mattn/go-sqlite3 or the modernc.org/sqlite driver.
type SQLiteStorage struct {
	db     *sql.DB
	driver string
	config config.SQLiteConfig
	logger *slog.Logger
}

var _ snippets.Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens the database at cfg.Path, applies the pragmas and
// creates the schema.
func NewSQLiteStorage(driver string, cfg config.SQLiteConfig, logger *slog.Logger) (*SQLiteStorage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "snippets.storage.sqlite", "driver", driver)

	dsn, err := buildDSN(driver, cfg)
	if err != nil {
		return nil, snippets.NewStorageError(driver, "open", err)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, snippets.NewStorageError(driver, "open", err)
	}

	maxOpen, maxIdle := cfg.MaxOpenConns, cfg.MaxIdleConns
	if cfg.Path == ":memory:" {
		// Every connection to :memory: is a separate database, so keep
		// exactly one alive.
		maxOpen, maxIdle = 1, 1
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
		maxIdle = min(maxIdle, maxOpen)
	}
	db.SetMaxIdleConns(maxIdle)

	s := &SQLiteStorage{
		db:     db,
		driver: driver,
		config: cfg,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", cfg.Path,
		"wal_mode", cfg.WALMode,
		"max_open_conns", maxOpen,
	)
	return s, nil
}

// buildDSN encodes the busy timeout and journal mode in the connection
// string so they apply to every pooled connection. The two drivers spell
// pragmas differently.
func buildDSN(driver string, cfg config.SQLiteConfig) (string, error) {
	if cfg.Path == "" {
		return "", errors.New("database path is empty")
	}
	busy := cfg.BusyTimeout.Milliseconds()
	q := url.Values{}

	switch driver {
	case DriverCGo:
		q.Set("_busy_timeout", fmt.Sprint(busy))
		if cfg.WALMode {
			q.Set("_journal_mode", "WAL")
		}
	case DriverPure:
		q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy))
		if cfg.WALMode {
			q.Add("_pragma", "journal_mode(WAL)")
		}
	default:
		return "", fmt.Errorf("unknown sqlite driver %q", driver)
	}

	return "file:" + cfg.Path + "?" + q.Encode(), nil
}

func (s *SQLiteStorage) initialize() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return snippets.NewStorageError(s.driver, "create_schema", err)
	}
	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion, time.Now().UnixNano()); err != nil {
		return snippets.NewStorageError(s.driver, "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil {
		return snippets.NewStorageError(s.driver, "get_schema_version", err)
	}
	if version != SchemaVersion {
		return snippets.NewStorageError(s.driver, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)
	return nil
}

// Put inserts or replaces a snippet.
func (s *SQLiteStorage) Put(ctx context.Context, sn *snippets.Snippet) (*snippets.Snippet, error) {
	_, err := s.db.ExecContext(ctx, upsertSnippet,
		sn.ID, sn.Name, sn.Owner, sn.Source,
		sn.CreatedAt.UnixNano(), sn.UpdatedAt.UnixNano(), sn.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return nil, snippets.NewStorageError(s.driver, "put", err)
	}
	return s.Get(ctx, sn.Name)
}

// Get returns the snippet called name.
func (s *SQLiteStorage) Get(ctx context.Context, name string) (*snippets.Snippet, error) {
	sn, err := scanSnippet(s.db.QueryRowContext(ctx, selectSnippet, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, snippets.ErrNotFound
	}
	if err != nil {
		return nil, snippets.NewStorageError(s.driver, "get", err)
	}
	return sn, nil
}

// Delete removes the snippet called name.
func (s *SQLiteStorage) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, deleteSnippet, name)
	if err != nil {
		return snippets.NewStorageError(s.driver, "delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return snippets.NewStorageError(s.driver, "delete", err)
	}
	if n == 0 {
		return snippets.ErrNotFound
	}
	return nil
}

// List returns snippets ordered by name.
func (s *SQLiteStorage) List(ctx context.Context, opts snippets.ListOptions) ([]*snippets.Snippet, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx, listSnippets, opts.Owner, opts.Owner, limit, max(opts.Offset, 0))
	if err != nil {
		return nil, snippets.NewStorageError(s.driver, "list", err)
	}
	defer rows.Close()

	list := []*snippets.Snippet{}
	for rows.Next() {
		sn, err := scanSnippet(rows)
		if err != nil {
			return nil, snippets.NewStorageError(s.driver, "scan", err)
		}
		list = append(list, sn)
	}
	if err := rows.Err(); err != nil {
		return nil, snippets.NewStorageError(s.driver, "list", err)
	}
	return list, nil
}

// Count returns the number of stored snippets.
func (s *SQLiteStorage) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, countSnippets).Scan(&n); err != nil {
		return 0, snippets.NewStorageError(s.driver, "count", err)
	}
	return n, nil
}

// Touch records a use of the snippet called name.
func (s *SQLiteStorage) Touch(ctx context.Context, name string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, touchSnippet, at.UnixNano(), at.UnixNano(), name)
	if err != nil {
		return snippets.NewStorageError(s.driver, "touch", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return snippets.ErrNotFound
	}
	return nil
}

// DeleteUnusedSince removes snippets inactive since before cutoff.
func (s *SQLiteStorage) DeleteUnusedSince(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.exec(ctx, "delete_unused", deleteUnusedSince, cutoff.UnixNano())
}

// DeleteOldest keeps the keep most recently active snippets.
func (s *SQLiteStorage) DeleteOldest(ctx context.Context, keep int64) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	return s.exec(ctx, "delete_oldest", deleteOldest, keep)
}

// Ping checks the database connection.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return snippets.NewStorageError(s.driver, "ping", err)
	}
	return nil
}

// Close releases resources held by the storage backend.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return snippets.NewStorageError(s.driver, "close", err)
	}
	s.logger.Info("SQLite storage closed")
	return nil
}

func (s *SQLiteStorage) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, snippets.NewStorageError(s.driver, op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, snippets.NewStorageError(s.driver, op, err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnippet(row rowScanner) (*snippets.Snippet, error) {
	var (
		sn               snippets.Snippet
		created, updated int64
		lastUsed         sql.NullInt64
	)
	err := row.Scan(&sn.ID, &sn.Name, &sn.Owner, &sn.Source, &created, &updated, &lastUsed, &sn.Uses)
	if err != nil {
		return nil, err
	}

	sn.CreatedAt = time.Unix(0, created).UTC()
	sn.UpdatedAt = time.Unix(0, updated).UTC()
	if lastUsed.Valid {
		t := time.Unix(0, lastUsed.Int64).UTC()
		sn.LastUsedAt = &t
	}
	return &sn, nil
}

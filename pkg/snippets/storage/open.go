package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tagbot/taglang/pkg/config"
	"tagbot/taglang/pkg/snippets"
)

// Open creates the backend selected by cfg.Driver. For the SQLite drivers
// the parent directory of the database file is created if needed.
func Open(cfg config.SnippetsConfig, logger *slog.Logger) (snippets.Storage, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemoryStorage(), nil
	case DriverCGo, DriverPure:
		if cfg.SQLite.Path != ":memory:" {
			if dir := filepath.Dir(cfg.SQLite.Path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, snippets.NewStorageError(cfg.Driver, "open", err)
				}
			}
		}
		return NewSQLiteStorage(cfg.Driver, cfg.SQLite, logger)
	default:
		return nil, fmt.Errorf("unknown snippet storage driver %q", cfg.Driver)
	}
}

package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tagbot/taglang/pkg/config"
	"tagbot/taglang/pkg/snippets"
)

var base = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sqliteConfig(t *testing.T) config.SQLiteConfig {
	t.Helper()
	return config.SQLiteConfig{
		Path:         filepath.Join(t.TempDir(), "snippets.db"),
		MaxOpenConns: 4,
		MaxIdleConns: 2,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// backends returns a fresh store of every kind.
func backends(t *testing.T) map[string]snippets.Storage {
	t.Helper()
	out := map[string]snippets.Storage{"memory": NewMemoryStorage()}
	for _, driver := range []string{DriverCGo, DriverPure} {
		s, err := NewSQLiteStorage(driver, sqliteConfig(t), quietLogger())
		if err != nil {
			t.Fatalf("NewSQLiteStorage(%s) failed: %v", driver, err)
		}
		out[driver] = s
	}
	for _, s := range out {
		t.Cleanup(func() { s.Close() })
	}
	return out
}

func snippet(name, owner, source string, at time.Time) *snippets.Snippet {
	return &snippets.Snippet{
		ID:        "id-" + name,
		Name:      name,
		Owner:     owner,
		Source:    source,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestStorage_PutGet(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			stored, err := store.Put(ctx, snippet("greet", "alice", `f("hi")`, base))
			if err != nil {
				t.Fatalf("Put failed: %v", err)
			}
			if stored.ID != "id-greet" || stored.Owner != "alice" || stored.Uses != 0 {
				t.Errorf("unexpected stored snippet %+v", stored)
			}
			if !stored.CreatedAt.Equal(base) {
				t.Errorf("CreatedAt = %v, want %v", stored.CreatedAt, base)
			}

			// Overwrite keeps the ID and creation time.
			later := base.Add(time.Hour)
			replacement := snippet("greet", "alice", `f("hello")`, later)
			replacement.ID = "another-id"
			stored, err = store.Put(ctx, replacement)
			if err != nil {
				t.Fatalf("second Put failed: %v", err)
			}
			if stored.ID != "id-greet" {
				t.Errorf("ID changed on overwrite: %q", stored.ID)
			}
			if !stored.CreatedAt.Equal(base) || !stored.UpdatedAt.Equal(later) {
				t.Errorf("timestamps = %v / %v", stored.CreatedAt, stored.UpdatedAt)
			}

			got, err := store.Get(ctx, "greet")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if got.Source != `f("hello")` {
				t.Errorf("Source = %q", got.Source)
			}

			if _, err := store.Get(ctx, "missing"); !errors.Is(err, snippets.ErrNotFound) {
				t.Errorf("Get(missing) = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStorage_DeleteAndCount(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, n := range []string{"a", "b", "c"} {
				if _, err := store.Put(ctx, snippet(n, "", "1", base)); err != nil {
					t.Fatal(err)
				}
			}
			if err := store.Delete(ctx, "b"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if err := store.Delete(ctx, "b"); !errors.Is(err, snippets.ErrNotFound) {
				t.Errorf("second Delete = %v, want ErrNotFound", err)
			}
			n, err := store.Count(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if n != 2 {
				t.Errorf("Count = %d, want 2", n)
			}
		})
	}
}

func TestStorage_List(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for i, n := range []string{"delta", "alpha", "charlie", "bravo"} {
				owner := "alice"
				if i%2 == 1 {
					owner = "bob"
				}
				if _, err := store.Put(ctx, snippet(n, owner, "1", base)); err != nil {
					t.Fatal(err)
				}
			}

			tests := []struct {
				opts snippets.ListOptions
				want []string
			}{
				{snippets.ListOptions{}, []string{"alpha", "bravo", "charlie", "delta"}},
				{snippets.ListOptions{Limit: 2}, []string{"alpha", "bravo"}},
				{snippets.ListOptions{Limit: 2, Offset: 3}, []string{"delta"}},
				{snippets.ListOptions{Offset: 10}, []string{}},
				{snippets.ListOptions{Owner: "bob"}, []string{"alpha", "bravo"}},
				{snippets.ListOptions{Owner: "alice"}, []string{"charlie", "delta"}},
			}
			for _, tt := range tests {
				list, err := store.List(ctx, tt.opts)
				if err != nil {
					t.Fatalf("List(%+v) failed: %v", tt.opts, err)
				}
				if got := names(list); strings.Join(got, ",") != strings.Join(tt.want, ",") {
					t.Errorf("List(%+v) = %v, want %v", tt.opts, got, tt.want)
				}
			}
		})
	}
}

func TestStorage_Touch(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Put(ctx, snippet("x", "", "1", base)); err != nil {
				t.Fatal(err)
			}
			used := base.Add(time.Minute)
			for range 2 {
				if err := store.Touch(ctx, "x", used); err != nil {
					t.Fatalf("Touch failed: %v", err)
				}
			}
			got, err := store.Get(ctx, "x")
			if err != nil {
				t.Fatal(err)
			}
			if got.Uses != 2 {
				t.Errorf("Uses = %d, want 2", got.Uses)
			}
			if got.LastUsedAt == nil || !got.LastUsedAt.Equal(used) {
				t.Errorf("LastUsedAt = %v, want %v", got.LastUsedAt, used)
			}
			if err := store.Touch(ctx, "nope", used); !errors.Is(err, snippets.ErrNotFound) {
				t.Errorf("Touch(nope) = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStorage_DeleteUnusedSince(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			// old: saved long ago, never used
			// revived: saved long ago, used recently
			// fresh: saved recently
			for _, sn := range []*snippets.Snippet{
				snippet("old", "", "1", base.AddDate(0, 0, -30)),
				snippet("revived", "", "1", base.AddDate(0, 0, -30)),
				snippet("fresh", "", "1", base.AddDate(0, 0, -1)),
			} {
				if _, err := store.Put(ctx, sn); err != nil {
					t.Fatal(err)
				}
			}
			if err := store.Touch(ctx, "revived", base); err != nil {
				t.Fatal(err)
			}

			n, err := store.DeleteUnusedSince(ctx, base.AddDate(0, 0, -7))
			if err != nil {
				t.Fatalf("DeleteUnusedSince failed: %v", err)
			}
			if n != 1 {
				t.Errorf("deleted %d, want 1", n)
			}
			list, _ := store.List(ctx, snippets.ListOptions{})
			if got := strings.Join(names(list), ","); got != "fresh,revived" {
				t.Errorf("remaining = %s", got)
			}
		})
	}
}

func TestStorage_DeleteOldest(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for i, n := range []string{"a", "b", "c", "d"} {
				if _, err := store.Put(ctx, snippet(n, "", "1", base.Add(time.Duration(i)*time.Hour))); err != nil {
					t.Fatal(err)
				}
			}
			// a becomes the most recently active.
			if err := store.Touch(ctx, "a", base.Add(10*time.Hour)); err != nil {
				t.Fatal(err)
			}

			n, err := store.DeleteOldest(ctx, 2)
			if err != nil {
				t.Fatalf("DeleteOldest failed: %v", err)
			}
			if n != 2 {
				t.Errorf("deleted %d, want 2", n)
			}
			list, _ := store.List(ctx, snippets.ListOptions{})
			if got := strings.Join(names(list), ","); got != "a,d" {
				t.Errorf("remaining = %s, want a,d", got)
			}

			if n, err := store.DeleteOldest(ctx, 5); err != nil || n != 0 {
				t.Errorf("DeleteOldest under limit = %d, %v", n, err)
			}
		})
	}
}

func TestStorage_Ping(t *testing.T) {
	for name, store := range backends(t) {
		if err := store.Ping(context.Background()); err != nil {
			t.Errorf("%s: Ping failed: %v", name, err)
		}
	}
}

func TestSQLiteStorage_Reopen(t *testing.T) {
	cfg := sqliteConfig(t)
	ctx := context.Background()

	s, err := NewSQLiteStorage(DriverPure, cfg, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Put(ctx, snippet("keep", "", "1", base)); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// The same file is readable through the other driver.
	s, err = NewSQLiteStorage(DriverCGo, cfg, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, err := s.Get(ctx, "keep"); err != nil {
		t.Errorf("Get after reopen failed: %v", err)
	}
}

func TestSQLiteStorage_InMemory(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Path = ":memory:"

	s, err := NewSQLiteStorage(DriverPure, cfg, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx := context.Background()
	if _, err := s.Put(ctx, snippet("m", "", "1", base)); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.Count(ctx); n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestBuildDSN(t *testing.T) {
	cfg := config.SQLiteConfig{Path: "data/s.db", WALMode: true, BusyTimeout: 2 * time.Second}

	dsn, err := buildDSN(DriverCGo, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(dsn, "_busy_timeout=2000") || !strings.Contains(dsn, "_journal_mode=WAL") {
		t.Errorf("sqlite3 DSN = %q", dsn)
	}

	dsn, err = buildDSN(DriverPure, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(dsn, "_pragma=busy_timeout%282000%29") {
		t.Errorf("sqlite DSN = %q", dsn)
	}

	if _, err := buildDSN("postgres", cfg); err == nil {
		t.Error("expected error for unknown driver")
	}
	if _, err := buildDSN(DriverCGo, config.SQLiteConfig{}); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestOpen(t *testing.T) {
	cfg := config.Default().Snippets

	cfg.Driver = "memory"
	s, err := Open(cfg, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*MemoryStorage); !ok {
		t.Errorf("Open(memory) = %T", s)
	}

	cfg.Driver = DriverPure
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "nested", "dir", "s.db")
	s, err = Open(cfg, quietLogger())
	if err != nil {
		t.Fatalf("Open(sqlite) failed: %v", err)
	}
	s.Close()

	cfg.Driver = "mongo"
	if _, err := Open(cfg, quietLogger()); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func names(list []*snippets.Snippet) []string {
	out := make([]string, 0, len(list))
	for _, sn := range list {
		out = append(out, sn.Name)
	}
	return out
}

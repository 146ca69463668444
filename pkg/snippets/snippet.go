package snippets

import (
	"context"
	"time"
)

// Snippet is a named tag program stored by the host.
type Snippet struct {
	// ID is a UUID assigned when the name is first saved. It survives
	// later overwrites of the source.
	ID string `json:"id"`

	// Name is the case-folded lookup key.
	Name string `json:"name"`

	// Owner identifies who saved the snippet. Only the owner may
	// overwrite it. Empty means anyone may.
	Owner string `json:"owner,omitempty"`

	// Source is the tag program text. It always parses.
	Source string `json:"source"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`

	// Uses counts successful compiles.
	Uses int64 `json:"uses"`
}

// LastActivity is the time retention measures age from: the last use, or
// the last update for a snippet never used.
func (s *Snippet) LastActivity() time.Time {
	if s.LastUsedAt != nil && s.LastUsedAt.After(s.UpdatedAt) {
		return *s.LastUsedAt
	}
	return s.UpdatedAt
}

// ListOptions filters and pages a listing. Results are ordered by name.
type ListOptions struct {
	// Owner restricts the listing to one owner when set.
	Owner string

	// Limit caps the number of results. Zero means no limit.
	Limit int

	// Offset skips that many results.
	Offset int
}

// Storage persists snippets. Implementations must be safe for concurrent use.
type Storage interface {
	// Put inserts s or replaces the source and owner of the snippet with the
	// same name. It returns the stored row, whose ID and CreatedAt are
	// those of the first insert.
	Put(ctx context.Context, s *Snippet) (*Snippet, error)

	// Get returns the snippet called name or ErrNotFound.
	Get(ctx context.Context, name string) (*Snippet, error)

	// Delete removes the snippet called name or returns ErrNotFound.
	Delete(ctx context.Context, name string) error

	// List returns snippets matching opts.
	List(ctx context.Context, opts ListOptions) ([]*Snippet, error)

	// Count returns the number of stored snippets.
	Count(ctx context.Context) (int64, error)

	// Touch records a use at the given time.
	Touch(ctx context.Context, name string, at time.Time) error

	// DeleteUnusedSince removes snippets whose last activity is before cutoff.
	DeleteUnusedSince(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteOldest keeps the keep most recently active snippets and removes
	// the rest.
	DeleteOldest(ctx context.Context, keep int64) (int64, error)

	// Ping reports whether the backend can serve requests.
	Ping(ctx context.Context) error

	// Close releases resources held by the backend.
	Close() error
}

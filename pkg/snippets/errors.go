package snippets

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrNotFound is returned when no snippet has the requested name.
	ErrNotFound = errors.New("snippet not found")

	// ErrInvalidName is returned for names outside [a-z0-9_-]{1,64}.
	ErrInvalidName = errors.New("invalid snippet name")

	// ErrOwnerMismatch is returned when saving over a snippet that belongs
	// to someone else.
	ErrOwnerMismatch = errors.New("snippet belongs to another owner")

	// ErrSourceTooLarge is returned when a source exceeds the configured limit.
	ErrSourceTooLarge = errors.New("snippet source too large")
)

// MaxNameLength is the longest accepted snippet name.
const MaxNameLength = 64

var namePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// NormalizeName case-folds name and checks it against the naming rules.
func NormalizeName(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" || len(n) > MaxNameLength || !namePattern.MatchString(n) {
		return "", fmt.Errorf("%w: %q (use 1-%d characters from a-z, 0-9, _ and -)", ErrInvalidName, name, MaxNameLength)
	}
	return n, nil
}

// StorageError represents an error from a storage backend.
type StorageError struct {
	Backend   string // Storage backend type ("sqlite", "sqlite3", "memory")
	Operation string // Operation that failed ("put", "get", "list", etc.)
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}

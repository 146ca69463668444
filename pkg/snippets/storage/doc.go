// Package storage provides snippet storage backends.
//
//   - "sqlite3": SQLite through github.com/mattn/go-sqlite3 (cgo)
//   - "sqlite": SQLite through modernc.org/sqlite (pure Go, no cgo)
//   - "memory": a map, for tests and throwaway runs
//
// Both SQLite drivers share one schema and one set of queries. Busy timeout
// and WAL mode are set in the connection string so every pooled connection
// gets them.
package storage

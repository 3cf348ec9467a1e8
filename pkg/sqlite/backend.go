// Package sqlite provides the public API for the SQLite showcase backend.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"github.com/mesh-intelligence/showcase/internal/sqlite"
	"github.com/mesh-intelligence/showcase/pkg/types"
)

// Backend is a local slot store that also keeps registry drafts.
type Backend interface {
	types.PersistenceAPI
	types.DraftStore

	// Attach opens the data directory described by config.
	Attach(config types.Config) error

	// Detach flushes pending writes and releases the database.
	Detach() error
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend()
//	err := backend.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".showcase",
//	})
//	defer backend.Detach()
func NewBackend() Backend {
	return sqlite.NewBackend()
}

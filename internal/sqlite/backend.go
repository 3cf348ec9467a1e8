// Package sqlite implements the local storage backend for showcase. SQLite is
// the query engine; JSONL files in the data directory are the source of
// truth and are reloaded into a fresh database on every Attach.
//
// A single Backend serves as both the slot PersistenceAPI and the registry's
// DraftStore.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

// Compile-time interface checks.
var (
	_ types.PersistenceAPI = (*Backend)(nil)
	_ types.DraftStore     = (*Backend)(nil)
)

const dbFileName = "showcase.db"

// Backend stores slots and drafts in SQLite with JSONL persistence.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	dataDir  string
	db       *sql.DB

	// Tables whose JSONL file is stale. Only used by the on_close sync
	// strategy; immediate mode rewrites the file before returning.
	dirtyMu sync.Mutex
	dirty   map[string]bool
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{dirty: make(map[string]bool)}
}

// Attach initializes the backend with the given configuration.
// Creates DataDir if it does not exist, builds the SQLite schema, and loads
// the JSONL files.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	// The database is a cache of the JSONL files; start from scratch.
	dbPath := filepath.Join(dataDir, dbFileName)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	// A single connection serializes writers and keeps the file consistent.
	db.SetMaxOpenConns(1)

	for _, ddl := range append(append([]string{}, schemaDDL...), indexDDL...) {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	if err := initJSONLFiles(dataDir); err != nil {
		db.Close()
		return err
	}
	if err := loadAllJSONL(db, dataDir); err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	b.db = db
	b.config = config
	b.dataDir = dataDir
	b.attached = true
	return nil
}

// Detach releases all resources held by the backend. For the on_close sync
// strategy, stale JSONL files are written first. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if err := b.flushDirtyLocked(); err != nil {
		return fmt.Errorf("flush pending writes: %w", err)
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	return nil
}

// commit writes table to JSONL from inside tx, or marks it for the flush on
// Detach, and then commits tx. A failed write leaves tx uncommitted for the
// caller's deferred Rollback, so the database never holds a row the file
// lacks. If the commit itself fails, the file is rewritten from the committed
// rows. The caller must hold b.mu.
func (b *Backend) commit(tx *sql.Tx, table string) error {
	immediate := b.config.EffectiveSyncStrategy() == types.SyncImmediate
	if immediate {
		if err := persistTableJSONL(tx, b.dataDir, table); err != nil {
			return fmt.Errorf("persisting %s: %w", tableFile(table), err)
		}
	} else {
		b.dirtyMu.Lock()
		b.dirty[table] = true
		b.dirtyMu.Unlock()
	}
	if err := tx.Commit(); err != nil {
		err = fmt.Errorf("committing %s: %w", table, err)
		if immediate {
			err = errors.Join(err, persistTableJSONL(b.db, b.dataDir, table))
		}
		return err
	}
	return nil
}

// flushDirtyLocked writes every stale table. The caller must hold b.mu.
func (b *Backend) flushDirtyLocked() error {
	b.dirtyMu.Lock()
	defer b.dirtyMu.Unlock()

	tables := make([]string, 0, len(b.dirty))
	for t := range b.dirty {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	for _, t := range tables {
		if err := persistTableJSONL(b.db, b.dataDir, t); err != nil {
			return fmt.Errorf("flush %s: %w", t, err)
		}
		delete(b.dirty, t)
	}
	return nil
}

// newUUID generates a UUID v7 string, falling back to v4.
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

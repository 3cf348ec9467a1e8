package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

// Get returns the draft stored under key.
func (b *Backend) Get(ctx context.Context, key string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return "", false, types.ErrDetached
	}

	var value string
	err := b.db.QueryRowContext(ctx, "SELECT value FROM drafts WHERE draft_key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading draft %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key. Each write bumps the draft's version.
func (b *Backend) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return types.ErrInvalidID
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO drafts (draft_key, value, version, updated_at) VALUES (?, ?, 1, ?)
		 ON CONFLICT(draft_key) DO UPDATE SET value = excluded.value, version = drafts.version + 1, updated_at = excluded.updated_at`,
		key, value, now,
	)
	if err != nil {
		return fmt.Errorf("writing draft %s: %w", key, err)
	}

	return b.commit(tx, "drafts")
}

// draftVersion reports how many times key has been written.
func (b *Backend) draftVersion(ctx context.Context, key string) (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return 0, types.ErrDetached
	}
	var v int64
	err := b.db.QueryRowContext(ctx, "SELECT version FROM drafts WHERE draft_key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return v, err
}

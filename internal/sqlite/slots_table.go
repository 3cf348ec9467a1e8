package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

const slotColumns = "slot_id, section_id, slot_key, url, kind, alt, title, description, metadata, updated_at"

// ListSlots returns every slot of a section ordered by key. Display order is
// the caller's concern.
func (b *Backend) ListSlots(ctx context.Context, sectionID string) ([]types.Slot, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}

	rows, err := b.db.QueryContext(ctx,
		"SELECT "+slotColumns+" FROM slots WHERE section_id = ? ORDER BY slot_key", sectionID)
	if err != nil {
		return nil, fmt.Errorf("listing slots of %s: %w", sectionID, err)
	}
	defer rows.Close()

	slots := []types.Slot{}
	for rows.Next() {
		s, err := hydrateSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating slots of %s: %w", sectionID, err)
	}
	return slots, nil
}

// UpsertSlot creates or replaces the slot addressed by (SectionID, SlotKey).
// An existing slot keeps its ID; a new one receives a UUID v7.
func (b *Backend) UpsertSlot(ctx context.Context, slot types.Slot) (types.Slot, error) {
	if err := slot.Validate(); err != nil {
		return types.Slot{}, err
	}
	metadataJSON, err := json.Marshal(nonNilMetadata(slot.Metadata))
	if err != nil {
		return types.Slot{}, fmt.Errorf("%w: marshaling metadata: %v", types.ErrInvalidData, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.Slot{}, types.ErrDetached
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Slot{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx,
		"SELECT slot_id FROM slots WHERE section_id = ? AND slot_key = ?",
		slot.SectionID, slot.SlotKey,
	).Scan(&id)
	exists := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return types.Slot{}, fmt.Errorf("checking slot existence: %w", err)
	}
	if !exists {
		id = newUUID()
	}

	slot.ID = id
	slot.UpdatedAt = time.Now().UTC()
	if slot.Kind == "" {
		slot.Kind = types.KindFromURL(slot.URL)
	}
	updatedAt := slot.UpdatedAt.Format(time.RFC3339Nano)

	if exists {
		_, err = tx.ExecContext(ctx,
			`UPDATE slots SET url = ?, kind = ?, alt = ?, title = ?, description = ?, metadata = ?, updated_at = ?
			 WHERE slot_id = ?`,
			slot.URL, string(slot.Kind), slot.Alt, slot.Title, slot.Description, string(metadataJSON), updatedAt, id,
		)
	} else {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO slots ("+slotColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			id, slot.SectionID, slot.SlotKey, slot.URL, string(slot.Kind), slot.Alt, slot.Title, slot.Description,
			string(metadataJSON), updatedAt,
		)
	}
	if err != nil {
		return types.Slot{}, fmt.Errorf("persisting slot: %w", err)
	}
	if err := b.commit(tx, "slots"); err != nil {
		return types.Slot{}, err
	}

	// Hand back the decoded form so callers see what a reload would see.
	var stored types.Metadata
	if err := json.Unmarshal(metadataJSON, &stored); err != nil {
		return types.Slot{}, fmt.Errorf("decoding metadata: %w", err)
	}
	slot.Metadata = stored
	return slot, nil
}

// DeleteSlot removes a slot by ID.
// Returns ErrInvalidID if id is empty, ErrNotFound if no slot has that ID.
func (b *Backend) DeleteSlot(ctx context.Context, id string) error {
	if id == "" {
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

	res, err := tx.ExecContext(ctx, "DELETE FROM slots WHERE slot_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting slot %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting slot %s: %w", id, err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return b.commit(tx, "slots")
}

// hydrateSlot converts a slots row into a types.Slot.
func hydrateSlot(rows *sql.Rows) (types.Slot, error) {
	var (
		s            types.Slot
		kind         string
		metadataJSON string
		updatedAt    string
	)
	if err := rows.Scan(&s.ID, &s.SectionID, &s.SlotKey, &s.URL, &kind, &s.Alt, &s.Title, &s.Description,
		&metadataJSON, &updatedAt); err != nil {
		return types.Slot{}, fmt.Errorf("scanning slot: %w", err)
	}
	s.Kind = types.AssetKind(kind)

	s.Metadata = types.Metadata{}
	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &s.Metadata); err != nil {
			return types.Slot{}, fmt.Errorf("parsing metadata of slot %s: %w", s.ID, err)
		}
	}

	t, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return types.Slot{}, fmt.Errorf("parsing slot updated_at: %w", err)
	}
	s.UpdatedAt = t
	return s, nil
}

func nonNilMetadata(m types.Metadata) types.Metadata {
	if m == nil {
		return types.Metadata{}
	}
	return m
}

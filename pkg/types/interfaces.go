package types

import "context"

// PersistenceAPI is the sole durable store of slots. Upserts are idempotent
// on (SectionID, SlotKey).
type PersistenceAPI interface {
	// ListSlots returns every slot of the section in unspecified order.
	ListSlots(ctx context.Context, sectionID string) ([]Slot, error)

	// UpsertSlot creates or replaces the slot addressed by
	// (slot.SectionID, slot.SlotKey) and returns the stored record.
	UpsertSlot(ctx context.Context, slot Slot) (Slot, error)

	// DeleteSlot removes the slot with the given ID.
	// Returns ErrNotFound if no slot has that ID.
	DeleteSlot(ctx context.Context, id string) error
}

// AssetStore accepts validated files and returns durable URLs. Resizing,
// transcoding and CDN issuance happen behind this interface.
type AssetStore interface {
	Upload(ctx context.Context, file File, folder string) (Asset, error)
}

// DraftStore is a string-keyed get/set store used to keep the schema
// registry across restarts.
type DraftStore interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}

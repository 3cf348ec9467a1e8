package sqlite

// Schema DDL for all tables.
const (
	createSlots = `CREATE TABLE slots (
    slot_id TEXT PRIMARY KEY,
    section_id TEXT NOT NULL,
    slot_key TEXT NOT NULL,
    url TEXT NOT NULL,
    kind TEXT NOT NULL,
    alt TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    metadata TEXT NOT NULL DEFAULT '{}',
    updated_at TEXT NOT NULL
);`

	createDrafts = `CREATE TABLE drafts (
    draft_key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    version INTEGER NOT NULL,
    updated_at TEXT NOT NULL
);`
)

// Index DDL for common queries.
const (
	idxSlotsSectionKey = `CREATE UNIQUE INDEX idx_slots_section_key ON slots(section_id, slot_key);`
	idxSlotsSection    = `CREATE INDEX idx_slots_section ON slots(section_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createSlots,
	createDrafts,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxSlotsSectionKey,
	idxSlotsSection,
}

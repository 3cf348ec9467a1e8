// Package types defines the entities, collaborator interfaces, and standard
// errors for the showcase content store.
//
// Sections own ordered content slots; each slot is addressed by the pair
// (section id, slot key). Persistence, asset upload, and draft storage are
// consumed through the PersistenceAPI, AssetStore, and DraftStore interfaces
// so the core never depends on a concrete backend.
package types

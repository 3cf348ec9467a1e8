package types

import "errors"

// File validation errors. These are detected locally and never reach the
// network.
var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")
)

// Collaborator errors. Callers receive these wrapped together with the
// underlying cause so they can decide whether to retry.
var (
	ErrUpload = errors.New("upload failed")
	ErrSave   = errors.New("save failed")
)

// Schema registry errors.
var (
	ErrDuplicateSection = errors.New("section already exists")
	ErrInvalidName      = errors.New("invalid name")
	ErrSectionNotFound  = errors.New("section not found")
	ErrFieldNotFound    = errors.New("field not found")
	ErrInvalidFieldType = errors.New("invalid field type")
	ErrInvalidIndex     = errors.New("index out of range")
)

// Distribution and reorder errors.
var (
	ErrNoTargets      = errors.New("no target sections")
	ErrInvalidSubtype = errors.New("invalid attribute subtype")
	ErrNoActiveDrag   = errors.New("no drag in progress")
	ErrDuplicateSlot  = errors.New("slot left duplicated after move")
	ErrNotJewelry     = errors.New("section holds no jewelry attributes")
)

// Storage errors returned by PersistenceAPI and DraftStore implementations.
var (
	ErrNotFound    = errors.New("entity not found")
	ErrInvalidID   = errors.New("invalid entity ID")
	ErrInvalidData = errors.New("invalid entity data")
)

// Backend lifecycle errors.
var (
	ErrDetached        = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
)

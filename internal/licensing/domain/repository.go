package domain

import "context"

// Slot keys used in the installation's key-value storage.
const (
	SlotLicense = "markdown-pro-license"
	SlotTheme   = "markdown-pro-theme"
	SlotDraft   = "markdown-draft"
)

// SlotStore is the durable key-value capability backing the installation.
// Each slot holds a plain string; writes are last-writer-wins.
type SlotStore interface {
	// Get returns the value stored under key.
	// Returns "", false, nil if the slot is empty.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}

// SlotDeleter is implemented by stores that can clear a slot.
// Clearing is an operator action; the state machine never revokes.
type SlotDeleter interface {
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

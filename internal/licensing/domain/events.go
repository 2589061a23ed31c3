package domain

import (
	"time"

	"github.com/google/uuid"
)

// Routing keys for entitlement events.
const (
	RoutingKeyLicenseActivated = "license.activated"
	RoutingKeyLicenseRestored  = "license.restored"
)

// Activation sources.
const (
	SourceActivate = "activate"
	SourceTrial    = "trial"
	SourceRestore  = "restore"
)

// LicenseEvent is published after a Free to Premium transition.
// Keys are always masked.
type LicenseEvent struct {
	EventID       string    `json:"event_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Type          string    `json:"type"`
	MaskedKey     string    `json:"masked_key"`
	Plan          string    `json:"plan"`
	Source        string    `json:"source"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewLicenseEvent builds an event for state.
func NewLicenseEvent(eventType string, state LicenseState, source string) LicenseEvent {
	return LicenseEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		MaskedKey:  state.MaskedKey(),
		Plan:       state.Plan.String(),
		Source:     source,
		OccurredAt: time.Now().UTC(),
	}
}

package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/markpro/internal/licensing/domain"
	"github.com/felixgeelhaar/markpro/internal/shared/infrastructure/eventbus"
)

// EventLogger writes an audit line for every entitlement event.
type EventLogger struct {
	logger *slog.Logger
}

// NewEventLogger creates an audit consumer for entitlement events.
func NewEventLogger(logger *slog.Logger) *EventLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventLogger{logger: logger.With("component", "entitlement_audit")}
}

// EventTypes implements eventbus.EventConsumer.
func (l *EventLogger) EventTypes() []string {
	return []string{domain.RoutingKeyLicenseActivated, domain.RoutingKeyLicenseRestored}
}

// Handle implements eventbus.EventConsumer.
func (l *EventLogger) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var e domain.LicenseEvent
	if err := event.Decode(&e); err != nil {
		return fmt.Errorf("decode %s: %w", event.RoutingKey, err)
	}

	l.logger.InfoContext(ctx, "entitlement changed",
		"event", event.RoutingKey,
		"event_id", e.EventID,
		"key", e.MaskedKey,
		"plan", e.Plan,
		"source", e.Source,
	)
	return nil
}

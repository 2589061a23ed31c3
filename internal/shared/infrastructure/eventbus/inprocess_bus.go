package eventbus

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// InProcessEventBus is a Publisher that delivers events synchronously to
// registered consumers, for installs without a broker.
type InProcessEventBus struct {
	registry *ConsumerRegistry
	logger   *slog.Logger
}

// NewInProcessEventBus creates a new in-process event bus.
func NewInProcessEventBus(logger *slog.Logger) *InProcessEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessEventBus{
		registry: NewConsumerRegistry(logger),
		logger:   logger,
	}
}

// RegisterConsumer registers an event consumer.
func (b *InProcessEventBus) RegisterConsumer(consumer EventConsumer) error {
	b.registry.Register(consumer)
	return nil
}

// Publish dispatches payload to every consumer of routingKey before returning.
// Consumer failures are logged, never returned: publishing is best-effort.
func (b *InProcessEventBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	event := &ConsumedEvent{
		MessageID:  uuid.NewString(),
		RoutingKey: routingKey,
		ReceivedAt: time.Now().UTC(),
		Payload:    append([]byte(nil), payload...),
	}

	start := time.Now()
	if err := b.registry.Dispatch(ctx, event); err != nil {
		b.logger.ErrorContext(ctx, "event dispatch failed",
			"routing_key", routingKey,
			"message_id", event.MessageID,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return nil
	}

	b.logger.DebugContext(ctx, "event dispatched",
		"routing_key", routingKey,
		"message_id", event.MessageID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Close is a no-op for the in-process bus.
func (b *InProcessEventBus) Close() error {
	return nil
}

// Registry returns the underlying consumer registry.
func (b *InProcessEventBus) Registry() *ConsumerRegistry {
	return b.registry
}

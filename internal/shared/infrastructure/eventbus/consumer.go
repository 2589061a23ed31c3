package eventbus

import (
	"context"
	"encoding/json"
	"time"
)

// AllEvents is the routing key pattern a consumer registers to receive every event.
const AllEvents = "#"

// EventConsumer handles specific event types.
type EventConsumer interface {
	// EventTypes returns the routing keys this consumer handles,
	// e.g. ["license.activated"], or [AllEvents].
	EventTypes() []string

	// Handle processes the event.
	Handle(ctx context.Context, event *ConsumedEvent) error
}

// ConsumedEvent is a message received from the bus. Payload is the
// published JSON body, left for the consumer to decode.
type ConsumedEvent struct {
	MessageID  string          `json:"message_id,omitempty"`
	RoutingKey string          `json:"routing_key"`
	ReceivedAt time.Time       `json:"received_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Decode unmarshals the payload into v.
func (e *ConsumedEvent) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// Consumer defines the interface for consuming events from a message broker.
type Consumer interface {
	// Start begins consuming messages. This is a blocking call.
	Start(ctx context.Context) error

	// RegisterConsumer registers an event consumer.
	RegisterConsumer(consumer EventConsumer) error

	// Close closes the consumer connection.
	Close() error
}

// ConsumerFunc adapts a function to EventConsumer.
type ConsumerFunc struct {
	Types []string
	Fn    func(ctx context.Context, event *ConsumedEvent) error
}

// EventTypes implements EventConsumer.
func (c ConsumerFunc) EventTypes() []string { return c.Types }

// Handle implements EventConsumer.
func (c ConsumerFunc) Handle(ctx context.Context, event *ConsumedEvent) error {
	return c.Fn(ctx, event)
}

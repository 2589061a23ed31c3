package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/markpro/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/markpro/pkg/config"
	"github.com/spf13/cobra"
)

var eventsQueue string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect entitlement events",
}

var eventsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream entitlement events from RabbitMQ",
	Long: `Subscribe to the entitlement exchange and print each event as a JSON line.

Requires MARKPRO_EVENTS=rabbitmq on the publishing installations.
Without --queue a temporary queue is used and removed on exit.`,
	RunE: runEventsWatch,
}

func init() {
	eventsWatchCmd.Flags().StringVar(&eventsQueue, "queue", "", "durable queue name to consume from")
	eventsCmd.AddCommand(eventsWatchCmd)
	rootCmd.AddCommand(eventsCmd)
}

func runEventsWatch(cmd *cobra.Command, args []string) error {
	a := GetApp()
	if a == nil || a.Config == nil {
		return fmt.Errorf("configuration not available")
	}
	if a.Config.Events != config.EventsRabbitMQ {
		return fmt.Errorf("events watch requires MARKPRO_EVENTS=%s", config.EventsRabbitMQ)
	}

	consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
		URL:       a.Config.RabbitMQURL,
		Exchange:  a.Config.EventsExchange,
		QueueName: eventsQueue,
		Logger:    logger,
	}, nil)
	if err != nil {
		return err
	}
	defer consumer.Close()

	if err := consumer.RegisterConsumer(newEventPrinter(cmd)); err != nil {
		return err
	}

	err = consumer.Start(cmd.Context())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

type eventLine struct {
	RoutingKey string          `json:"routing_key"`
	MessageID  string          `json:"message_id,omitempty"`
	ReceivedAt string          `json:"received_at"`
	Event      json.RawMessage `json:"event"`
}

func newEventPrinter(cmd *cobra.Command) eventbus.EventConsumer {
	enc := json.NewEncoder(cmd.OutOrStdout())
	return eventbus.ConsumerFunc{
		Types: []string{eventbus.AllEvents},
		Fn: func(ctx context.Context, event *eventbus.ConsumedEvent) error {
			body := event.Payload
			if !json.Valid(body) {
				quoted, err := json.Marshal(string(body))
				if err != nil {
					return err
				}
				body = quoted
			}
			return enc.Encode(eventLine{
				RoutingKey: event.RoutingKey,
				MessageID:  event.MessageID,
				ReceivedAt: event.ReceivedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
				Event:      body,
			})
		},
	}
}

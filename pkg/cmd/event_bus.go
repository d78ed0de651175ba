// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/docflow/pkg/channels/gochannel"
	"github.com/dukex/docflow/pkg/channels/kafka"
	"github.com/dukex/docflow/pkg/eventbus"
)

// EventBusProviders lists the accepted --event-bus values.
var EventBusProviders = []string{"gochannel", "kafka"}

// NewEventBus creates the event bus for provider. Kafka needs at least one broker.
func NewEventBus(provider string, brokers []string, serviceName string, logger *slog.Logger) (*eventbus.WatermillEventBus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	switch provider {
	case "", "gochannel":
		pub, sub := gochannel.CreateChannel(wmLogger)

		return eventbus.NewWatermillEventBus(pub, sub, logger), nil
	case "kafka":
		pub, sub, err := kafka.CreateChannel(wmLogger, brokers, serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub, logger), nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider: %s", provider)
	}
}

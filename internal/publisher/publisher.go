package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/lifecycle/internal/config"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/pubsub"
)

// EventPublisher dispatches lifecycle events to downstream consumers
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
}

type eventPublisher struct {
	pubSub pubsub.Publisher
	topic  string
	logger *logger.Logger
}

// NewEventPublisher creates a publisher writing to the configured events topic
func NewEventPublisher(pubSub pubsub.Publisher, cfg *config.Configuration, logger *logger.Logger) EventPublisher {
	return &eventPublisher{
		pubSub: pubSub,
		topic:  cfg.Events.Topic,
		logger: logger,
	}
}

func (p *eventPublisher) Publish(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set(pubsub.MetadataEventName, string(event.EventName))
	msg.Metadata.Set(pubsub.MetadataSubscriptionID, event.SubscriptionID)
	msg.Metadata.Set(pubsub.MetadataPartitionKey, event.SubscriptionID)

	p.logger.Debugw("publishing lifecycle event",
		"event_id", event.ID,
		"event_name", event.EventName,
		"subscription_id", event.SubscriptionID,
		"topic", p.topic,
	)

	if err := p.pubSub.Publish(ctx, p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.ID, err)
	}
	return nil
}

package pubsub

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Metadata keys set on every lifecycle event message
const (
	MetadataEventName      = "event_name"
	MetadataSubscriptionID = "subscription_id"
	// MetadataPartitionKey keeps the events of one subscription on one
	// kafka partition, and so in order
	MetadataPartitionKey = "partition_key"
)

// Publisher writes lifecycle event messages to a topic
type Publisher interface {
	Publish(ctx context.Context, topic string, msg *message.Message) error
	Close() error
}

// Subscriber reads lifecycle event messages from a topic. The engine only
// publishes; subscribing backs the tests and downstream tooling.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}

type PubSub interface {
	Publisher
	Subscriber
}

// PartitionKey returns the key a broker should partition msg by.
func PartitionKey(_ string, msg *message.Message) (string, error) {
	return msg.Metadata.Get(MetadataPartitionKey), nil
}

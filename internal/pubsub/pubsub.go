// Package pubsub abstracts the message broker carrying write notifications,
// so the in-memory engine and NATS JetStream can be swapped by configuration.
package pubsub

import (
	"context"
	"io"
	"time"
)

// Message is a received message with acknowledgment controls.
type Message interface {
	// Data returns the raw payload.
	Data() []byte

	// Subject returns the subject the message was published on.
	Subject() string

	// Ack acknowledges successful processing.
	Ack() error

	// Nak signals processing failure, requesting redelivery.
	Nak() error

	// Metadata returns delivery metadata.
	Metadata() (MessageMetadata, error)
}

// MessageMetadata describes a delivery.
type MessageMetadata struct {
	NumDelivered uint64
	Timestamp    time.Time
	Subject      string
	Stream       string
	Consumer     string
}

// Publisher publishes messages to subjects.
type Publisher interface {
	// Publish sends a message to the given subject.
	Publish(ctx context.Context, subject string, data []byte) error

	// Close releases resources.
	Close() error
}

// Consumer consumes messages matching a subject filter.
type Consumer interface {
	// Subscribe starts delivery and returns the message channel. The
	// channel closes when the context is cancelled. Callers must Ack or
	// Nak every message.
	Subscribe(ctx context.Context) (<-chan Message, error)
}

// Provider builds publishers and consumers for one broker backend.
type Provider interface {
	io.Closer

	NewPublisher(opts PublisherOptions) (Publisher, error)
	NewConsumer(opts ConsumerOptions) (Consumer, error)
}

// Connectable is implemented by providers that must establish a connection
// before use. The in-memory engine does not need it.
type Connectable interface {
	Connect(ctx context.Context) error
}

// PublisherOptions configures a publisher.
type PublisherOptions struct {
	// StreamName is the stream to publish into.
	StreamName string

	// SubjectPrefix is prepended to every published subject.
	SubjectPrefix string
}

// ConsumerOptions configures a consumer.
type ConsumerOptions struct {
	// StreamName is the stream to consume from.
	StreamName string

	// ConsumerName is the durable consumer name.
	ConsumerName string

	// FilterSubject restricts delivery to matching subjects. Empty means
	// everything in the stream.
	FilterSubject string

	// ChannelBufSize is the delivery channel buffer. Defaults to 64.
	ChannelBufSize int
}

// DefaultChannelBufSize is used when ConsumerOptions leaves the buffer unset.
const DefaultChannelBufSize = 64

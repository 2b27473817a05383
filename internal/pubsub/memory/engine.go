// Package memory provides the in-memory pubsub engine for single-process
// deployments. It mirrors the NATS engine's behavior, including NATS-style
// subject wildcards, so the two can be swapped by configuration.
package memory

import (
	"context"
	"errors"

	"doodledocs/internal/pubsub"
)

var (
	// ErrEngineClosed is returned when operating on a closed engine.
	ErrEngineClosed = errors.New("pubsub engine is closed")

	// ErrPatternSubscribed is returned when a filter already has a subscriber.
	ErrPatternSubscribed = errors.New("pattern already has a subscriber")
)

// Engine is the in-memory pubsub provider.
type Engine struct {
	broker *broker
}

var _ pubsub.Provider = (*Engine)(nil)

// New creates a new in-memory engine.
func New() *Engine {
	return &Engine{broker: newBroker()}
}

// NewPublisher creates a publisher routing through the engine's broker.
func (e *Engine) NewPublisher(opts pubsub.PublisherOptions) (pubsub.Publisher, error) {
	if e.broker.isClosed() {
		return nil, ErrEngineClosed
	}
	return &publisher{broker: e.broker, opts: opts}, nil
}

// NewConsumer creates a consumer fed by the engine's broker.
func (e *Engine) NewConsumer(opts pubsub.ConsumerOptions) (pubsub.Consumer, error) {
	if e.broker.isClosed() {
		return nil, ErrEngineClosed
	}
	return &consumer{broker: e.broker, opts: opts}, nil
}

// Close shuts down the broker and every subscription.
func (e *Engine) Close() error {
	return e.broker.close()
}

type publisher struct {
	broker *broker
	opts   pubsub.PublisherOptions
}

func (p *publisher) Publish(ctx context.Context, subject string, data []byte) error {
	if p.opts.SubjectPrefix != "" {
		subject = p.opts.SubjectPrefix + "." + subject
	}
	return p.broker.publish(ctx, subject, data)
}

func (p *publisher) Close() error {
	return nil
}

type consumer struct {
	broker *broker
	opts   pubsub.ConsumerOptions
}

func (c *consumer) Subscribe(ctx context.Context) (<-chan pubsub.Message, error) {
	pattern := c.opts.FilterSubject
	if pattern == "" {
		if c.opts.StreamName != "" {
			pattern = c.opts.StreamName + ".>"
		} else {
			pattern = ">"
		}
	}

	bufSize := c.opts.ChannelBufSize
	if bufSize <= 0 {
		bufSize = pubsub.DefaultChannelBufSize
	}

	msgCh, unsubscribe, err := c.broker.subscribe(ctx, pattern, bufSize)
	if err != nil {
		return nil, err
	}

	go func() {
		<-ctx.Done()
		unsubscribe()
	}()

	return msgCh, nil
}

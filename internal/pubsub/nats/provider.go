// Package nats provides the NATS JetStream pubsub backend, used when
// notifications must reach subscribers in other processes.
package nats

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"doodledocs/internal/pubsub"
)

// Provider implements pubsub.Provider on top of NATS JetStream.
type Provider struct {
	url string
	nc  *nats.Conn
	js  jetstream.JetStream
}

var (
	_ pubsub.Provider    = (*Provider)(nil)
	_ pubsub.Connectable = (*Provider)(nil)
)

// NewProvider creates a provider for the given NATS URL. Connect must be
// called before building publishers or consumers.
func NewProvider(url string) *Provider {
	return &Provider{url: url}
}

// Connect establishes the NATS connection and initializes JetStream.
func (p *Provider) Connect(ctx context.Context) error {
	nc, err := nats.Connect(p.url)
	if err != nil {
		return fmt.Errorf("connect to NATS at %s: %w", p.url, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return fmt.Errorf("create JetStream context: %w", err)
	}

	p.nc = nc
	p.js = js
	slog.Info("Connected to NATS", "url", p.url)
	return nil
}

// NewPublisher creates a JetStream-backed publisher, ensuring the stream.
func (p *Provider) NewPublisher(opts pubsub.PublisherOptions) (pubsub.Publisher, error) {
	if p.js == nil {
		return nil, fmt.Errorf("NATS not connected, call Connect first")
	}
	return newPublisher(p.js, opts)
}

// NewConsumer creates a durable JetStream consumer.
func (p *Provider) NewConsumer(opts pubsub.ConsumerOptions) (pubsub.Consumer, error) {
	if p.js == nil {
		return nil, fmt.Errorf("NATS not connected, call Connect first")
	}
	return &consumer{js: p.js, opts: opts}, nil
}

// Close drains the NATS connection.
func (p *Provider) Close() error {
	if p.nc != nil {
		p.nc.Close()
		p.nc = nil
		p.js = nil
	}
	return nil
}

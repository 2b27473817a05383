package nats

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"

	"doodledocs/internal/pubsub"
)

type consumer struct {
	js   jetstream.JetStream
	opts pubsub.ConsumerOptions
}

func (c *consumer) Subscribe(ctx context.Context) (<-chan pubsub.Message, error) {
	stream, err := c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     c.opts.StreamName,
		Subjects: []string{c.opts.StreamName + ".>"},
		Storage:  jetstream.MemoryStorage,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure stream %s: %w", c.opts.StreamName, err)
	}

	cons, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:       c.opts.ConsumerName,
		FilterSubject: c.opts.FilterSubject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure consumer %s: %w", c.opts.ConsumerName, err)
	}

	bufSize := c.opts.ChannelBufSize
	if bufSize <= 0 {
		bufSize = pubsub.DefaultChannelBufSize
	}
	msgCh := make(chan pubsub.Message, bufSize)

	cc, err := cons.Consume(func(msg jetstream.Msg) {
		select {
		case msgCh <- &message{msg: msg}:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return nil, fmt.Errorf("start consuming: %w", err)
	}

	go func() {
		<-ctx.Done()
		cc.Stop()
		close(msgCh)
	}()

	return msgCh, nil
}

type message struct {
	msg jetstream.Msg
}

func (m *message) Data() []byte {
	return m.msg.Data()
}

func (m *message) Subject() string {
	return m.msg.Subject()
}

func (m *message) Ack() error {
	return m.msg.Ack()
}

func (m *message) Nak() error {
	return m.msg.Nak()
}

func (m *message) Metadata() (pubsub.MessageMetadata, error) {
	md, err := m.msg.Metadata()
	if err != nil {
		return pubsub.MessageMetadata{}, err
	}
	return pubsub.MessageMetadata{
		NumDelivered: md.NumDelivered,
		Timestamp:    md.Timestamp,
		Subject:      m.msg.Subject(),
		Stream:       md.Stream,
		Consumer:     md.Consumer,
	}, nil
}

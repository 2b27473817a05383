package memory

import (
	"context"
	"sync"
	"time"

	"doodledocs/internal/pubsub"
)

type message struct {
	data         []byte
	subject      string
	timestamp    time.Time
	numDelivered uint64

	redelivery chan pubsub.Message
	ctx        context.Context

	mu      sync.Mutex
	settled bool
}

func (m *message) Data() []byte {
	return m.data
}

func (m *message) Subject() string {
	return m.subject
}

func (m *message) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settled = true
	return nil
}

// Nak requeues the message without blocking; if the channel is full or the
// subscription is gone, the message is dropped.
func (m *message) Nak() error {
	m.mu.Lock()
	if m.settled {
		m.mu.Unlock()
		return nil
	}
	m.settled = true
	m.numDelivered++
	m.mu.Unlock()

	defer func() {
		_ = recover() // send on a channel closed by unsubscribe
	}()

	redelivered := &message{
		data:         m.data,
		subject:      m.subject,
		timestamp:    m.timestamp,
		numDelivered: m.numDelivered,
		redelivery:   m.redelivery,
		ctx:          m.ctx,
	}
	select {
	case m.redelivery <- redelivered:
	case <-m.ctx.Done():
	default:
	}
	return nil
}

func (m *message) Metadata() (pubsub.MessageMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return pubsub.MessageMetadata{
		NumDelivered: m.numDelivered,
		Timestamp:    m.timestamp,
		Subject:      m.subject,
	}, nil
}

package document

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"doodledocs/internal/pubsub"
)

// NotificationKind labels the three externally visible write outcomes.
type NotificationKind string

const (
	NotificationCreated NotificationKind = "created"
	NotificationUpdated NotificationKind = "updated"
	NotificationDeleted NotificationKind = "deleted"
)

// Notification is the record handed to the realtime transport: exactly one
// per successful write, none for no-ops or failures.
type Notification struct {
	Kind       NotificationKind `json:"kind"`
	DocumentID string           `json:"documentId"`
	Title      string           `json:"title,omitempty"`
}

// Outbox buffers notifications produced by the write path. The write
// enqueues while it still holds the stream lock; a Dispatcher delivers
// later, so transport trouble can never roll back a durable write.
type Outbox struct {
	mu     sync.Mutex
	queue  []Notification
	signal chan struct{}
}

// NewOutbox creates an empty outbox.
func NewOutbox() *Outbox {
	return &Outbox{signal: make(chan struct{}, 1)}
}

// Enqueue records a notification for delivery.
func (o *Outbox) Enqueue(n Notification) {
	o.mu.Lock()
	o.queue = append(o.queue, n)
	o.mu.Unlock()

	select {
	case o.signal <- struct{}{}:
	default:
	}
}

func (o *Outbox) drain() []Notification {
	o.mu.Lock()
	defer o.mu.Unlock()
	queue := o.queue
	o.queue = nil
	return queue
}

// Dispatcher drains the outbox and publishes each notification on
// "<prefix>.<kind>". Publish failures are logged and dropped; delivery is
// fire-and-forget relative to the write.
type Dispatcher struct {
	outbox    *Outbox
	publisher pubsub.Publisher
	logger    *slog.Logger
}

// NewDispatcher creates a dispatcher for the given outbox and transport.
func NewDispatcher(outbox *Outbox, publisher pubsub.Publisher, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{outbox: outbox, publisher: publisher, logger: logger}
}

// Run delivers notifications until the context is cancelled. A final drain
// on shutdown flushes anything enqueued but not yet delivered.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.deliver(context.Background())
			return
		case <-d.outbox.signal:
			d.deliver(ctx)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context) {
	for _, n := range d.outbox.drain() {
		data, err := json.Marshal(n)
		if err != nil {
			d.logger.Error("Failed to encode notification", "error", err)
			continue
		}
		if err := d.publisher.Publish(ctx, string(n.Kind), data); err != nil {
			d.logger.Error("Failed to publish notification",
				"kind", n.Kind,
				"document_id", n.DocumentID,
				"error", err,
			)
		}
	}
}

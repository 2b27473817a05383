package document

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doodledocs/internal/pubsub"
	pubsubmem "doodledocs/internal/pubsub/memory"
)

type failingPublisher struct {
	mu    sync.Mutex
	calls int
}

func (p *failingPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return errors.New("transport down")
}

func (p *failingPublisher) Close() error { return nil }

func TestDispatcher_DeliversEnqueuedNotifications(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := pubsubmem.New()
	defer engine.Close()

	consumer, err := engine.NewConsumer(pubsub.ConsumerOptions{FilterSubject: "doodledocs.notifications.>"})
	require.NoError(t, err)
	msgCh, err := consumer.Subscribe(ctx)
	require.NoError(t, err)

	publisher, err := engine.NewPublisher(pubsub.PublisherOptions{SubjectPrefix: "doodledocs.notifications"})
	require.NoError(t, err)

	outbox := NewOutbox()
	dispatcher := NewDispatcher(outbox, publisher, nil)
	go dispatcher.Run(ctx)

	outbox.Enqueue(Notification{Kind: NotificationCreated, DocumentID: "doc-1", Title: "T"})
	outbox.Enqueue(Notification{Kind: NotificationUpdated, DocumentID: "doc-1"})

	var got []Notification
	for len(got) < 2 {
		select {
		case msg := <-msgCh:
			var n Notification
			require.NoError(t, json.Unmarshal(msg.Data(), &n))
			got = append(got, n)
			require.NoError(t, msg.Ack())
		case <-time.After(time.Second):
			t.Fatalf("only %d notifications delivered", len(got))
		}
	}

	assert.Equal(t, NotificationCreated, got[0].Kind)
	assert.Equal(t, "T", got[0].Title)
	assert.Equal(t, NotificationUpdated, got[1].Kind)
}

func TestDispatcher_TransportFailureIsAbsorbed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	publisher := &failingPublisher{}
	outbox := NewOutbox()
	dispatcher := NewDispatcher(outbox, publisher, nil)
	go dispatcher.Run(ctx)

	outbox.Enqueue(Notification{Kind: NotificationDeleted, DocumentID: "doc-1"})

	assert.Eventually(t, func() bool {
		publisher.mu.Lock()
		defer publisher.mu.Unlock()
		return publisher.calls == 1
	}, time.Second, 10*time.Millisecond)

	// The failed notification is dropped, not retried forever.
	outbox.Enqueue(Notification{Kind: NotificationUpdated, DocumentID: "doc-2"})
	assert.Eventually(t, func() bool {
		publisher.mu.Lock()
		defer publisher.mu.Unlock()
		return publisher.calls == 2
	}, time.Second, 10*time.Millisecond)
}

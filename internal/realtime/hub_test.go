package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doodledocs/internal/document"
	"doodledocs/internal/pubsub"
	pubsubmem "doodledocs/internal/pubsub/memory"
)

func newTestClient(hub *Hub, subs map[string]SubscribePayload) *Client {
	return &Client{
		hub:           hub,
		send:          make(chan BaseMessage, 16),
		subscriptions: subs,
	}
}

func recvEvent(t *testing.T, c *Client) EventPayload {
	t.Helper()
	select {
	case msg := <-c.send:
		require.Equal(t, TypeEvent, msg.Type)
		var payload EventPayload
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		return payload
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
		return EventPayload{}
	}
}

func TestHub_BroadcastReachesAllSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	all := newTestClient(hub, map[string]SubscribePayload{"sub-all": {}})
	one := newTestClient(hub, map[string]SubscribePayload{"sub-one": {DocumentID: "doc-1"}})
	hub.register <- all
	hub.register <- one

	hub.Broadcast(document.Notification{Kind: document.NotificationUpdated, DocumentID: "doc-1"})

	got := recvEvent(t, all)
	assert.Equal(t, "sub-all", got.SubID)
	assert.Equal(t, "doc-1", got.Notification.DocumentID)

	got = recvEvent(t, one)
	assert.Equal(t, "sub-one", got.SubID)
}

func TestHub_DocumentFilter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	client := newTestClient(hub, map[string]SubscribePayload{"sub": {DocumentID: "doc-1"}})
	hub.register <- client

	hub.Broadcast(document.Notification{Kind: document.NotificationCreated, DocumentID: "doc-2"})
	hub.Broadcast(document.Notification{Kind: document.NotificationDeleted, DocumentID: "doc-1"})

	// Only the doc-1 notification arrives.
	got := recvEvent(t, client)
	assert.Equal(t, document.NotificationDeleted, got.Notification.Kind)
	assert.Empty(t, client.send)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	client := newTestClient(hub, map[string]SubscribePayload{})
	hub.register <- client
	hub.unregister <- client

	select {
	case _, ok := <-client.send:
		assert.False(t, ok, "send channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
}

func TestServer_BridgesNotificationsIntoHub(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := pubsubmem.New()
	defer engine.Close()

	consumer, err := engine.NewConsumer(pubsub.ConsumerOptions{FilterSubject: "doodledocs.notifications.>"})
	require.NoError(t, err)

	srv := NewServer(consumer, nil)
	require.NoError(t, srv.StartBackgroundTasks(ctx))

	client := newTestClient(srv.Hub(), map[string]SubscribePayload{"sub": {}})
	srv.Hub().register <- client

	publisher, err := engine.NewPublisher(pubsub.PublisherOptions{SubjectPrefix: "doodledocs.notifications"})
	require.NoError(t, err)
	data, err := json.Marshal(document.Notification{Kind: document.NotificationCreated, DocumentID: "doc-1", Title: "T"})
	require.NoError(t, err)
	require.NoError(t, publisher.Publish(ctx, "created", data))

	got := recvEvent(t, client)
	assert.Equal(t, document.NotificationCreated, got.Notification.Kind)
	assert.Equal(t, "T", got.Notification.Title)
}

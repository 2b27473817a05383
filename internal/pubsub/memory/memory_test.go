package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doodledocs/internal/pubsub"
)

func TestMatchSubject(t *testing.T) {
	cases := []struct {
		pattern, subject string
		want             bool
	}{
		{"docs.notifications.created", "docs.notifications.created", true},
		{"docs.notifications.*", "docs.notifications.updated", true},
		{"docs.notifications.*", "docs.notifications.updated.extra", false},
		{"docs.>", "docs.notifications.deleted", true},
		{"docs.>", "docs", false},
		{">", "anything.at.all", true},
		{"docs.*", "other.created", false},
		{"", "docs", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, matchSubject(tc.pattern, tc.subject),
			"pattern=%q subject=%q", tc.pattern, tc.subject)
	}
}

func TestEngine_PublishSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := New()
	defer engine.Close()

	consumer, err := engine.NewConsumer(pubsub.ConsumerOptions{FilterSubject: "docs.notifications.*"})
	require.NoError(t, err)

	msgCh, err := consumer.Subscribe(ctx)
	require.NoError(t, err)

	publisher, err := engine.NewPublisher(pubsub.PublisherOptions{SubjectPrefix: "docs.notifications"})
	require.NoError(t, err)

	require.NoError(t, publisher.Publish(ctx, "created", []byte(`{"id":"doc-1"}`)))

	select {
	case msg := <-msgCh:
		assert.Equal(t, "docs.notifications.created", msg.Subject())
		assert.JSONEq(t, `{"id":"doc-1"}`, string(msg.Data()))
		assert.NoError(t, msg.Ack())
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}

func TestEngine_NonMatchingSubjectNotDelivered(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := New()
	defer engine.Close()

	consumer, err := engine.NewConsumer(pubsub.ConsumerOptions{FilterSubject: "docs.notifications.created"})
	require.NoError(t, err)
	msgCh, err := consumer.Subscribe(ctx)
	require.NoError(t, err)

	publisher, err := engine.NewPublisher(pubsub.PublisherOptions{})
	require.NoError(t, err)
	require.NoError(t, publisher.Publish(ctx, "docs.notifications.deleted", nil))

	select {
	case msg := <-msgCh:
		t.Fatalf("unexpected delivery on %s", msg.Subject())
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEngine_ClosedEngineRejectsPublish(t *testing.T) {
	engine := New()
	publisher, err := engine.NewPublisher(pubsub.PublisherOptions{})
	require.NoError(t, err)

	require.NoError(t, engine.Close())
	assert.ErrorIs(t, publisher.Publish(context.Background(), "x", nil), ErrEngineClosed)
}

func TestEngine_DuplicatePatternRejected(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := New()
	defer engine.Close()

	c1, err := engine.NewConsumer(pubsub.ConsumerOptions{FilterSubject: "a.b"})
	require.NoError(t, err)
	_, err = c1.Subscribe(ctx)
	require.NoError(t, err)

	c2, err := engine.NewConsumer(pubsub.ConsumerOptions{FilterSubject: "a.b"})
	require.NoError(t, err)
	_, err = c2.Subscribe(ctx)
	assert.ErrorIs(t, err, ErrPatternSubscribed)
}

package memory

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"doodledocs/internal/pubsub"
)

type broker struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription
	closed        atomic.Bool
}

type subscription struct {
	pattern string
	msgCh   chan pubsub.Message
	ctx     context.Context
	cancel  context.CancelFunc
}

func newBroker() *broker {
	return &broker{subscriptions: make(map[string]*subscription)}
}

func (b *broker) publish(ctx context.Context, subject string, data []byte) error {
	if b.closed.Load() {
		return ErrEngineClosed
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for pattern, sub := range b.subscriptions {
		if !matchSubject(pattern, subject) {
			continue
		}
		msg := &message{
			data:         data,
			subject:      subject,
			timestamp:    time.Now(),
			numDelivered: 1,
			redelivery:   sub.msgCh,
			ctx:          sub.ctx,
		}
		select {
		case sub.msgCh <- msg:
		case <-ctx.Done():
			return ctx.Err()
		case <-sub.ctx.Done():
			// Subscription went away, skip it.
		}
	}
	return nil
}

func (b *broker) subscribe(ctx context.Context, pattern string, bufSize int) (<-chan pubsub.Message, func(), error) {
	if b.closed.Load() {
		return nil, nil, ErrEngineClosed
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subscriptions[pattern] != nil {
		return nil, nil, ErrPatternSubscribed
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{
		pattern: pattern,
		msgCh:   make(chan pubsub.Message, bufSize),
		ctx:     subCtx,
		cancel:  cancel,
	}
	b.subscriptions[pattern] = sub

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.subscriptions[pattern] == sub {
			delete(b.subscriptions, pattern)
			cancel()
			close(sub.msgCh)
		}
	}

	return sub.msgCh, unsubscribe, nil
}

func (b *broker) close() error {
	if b.closed.Swap(true) {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subscriptions {
		sub.cancel()
		close(sub.msgCh)
	}
	b.subscriptions = nil
	return nil
}

func (b *broker) isClosed() bool {
	return b.closed.Load()
}

// matchSubject matches NATS-style patterns: "*" is one token, ">" is one or
// more trailing tokens.
func matchSubject(pattern, subject string) bool {
	if pattern == "" || subject == "" {
		return false
	}

	pp := strings.Split(pattern, ".")
	sp := strings.Split(subject, ".")

	for i, tok := range pp {
		if tok == ">" {
			return i < len(sp)
		}
		if i >= len(sp) {
			return false
		}
		if tok != "*" && tok != sp[i] {
			return false
		}
	}
	return len(pp) == len(sp)
}

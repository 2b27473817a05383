package nats

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"

	"doodledocs/internal/pubsub"
)

type publisher struct {
	js   jetstream.JetStream
	opts pubsub.PublisherOptions
}

func newPublisher(js jetstream.JetStream, opts pubsub.PublisherOptions) (pubsub.Publisher, error) {
	if opts.StreamName != "" {
		subjects := []string{opts.StreamName + ".>"}
		if opts.SubjectPrefix != "" && opts.SubjectPrefix != opts.StreamName {
			subjects = []string{opts.SubjectPrefix + ".>"}
		}

		_, err := js.CreateOrUpdateStream(context.Background(), jetstream.StreamConfig{
			Name:     opts.StreamName,
			Subjects: subjects,
			Storage:  jetstream.MemoryStorage,
		})
		if err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", opts.StreamName, err)
		}
	}

	return &publisher{js: js, opts: opts}, nil
}

func (p *publisher) Publish(ctx context.Context, subject string, data []byte) error {
	if p.opts.SubjectPrefix != "" {
		subject = p.opts.SubjectPrefix + "." + subject
	}

	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	return nil
}

func (p *publisher) Close() error {
	// JetStream contexts need no explicit close.
	return nil
}

package services

import (
	"context"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"doodledocs/internal/api"
	"doodledocs/internal/document"
	"doodledocs/internal/eventstore"
	eventmem "doodledocs/internal/eventstore/memory"
	eventmongo "doodledocs/internal/eventstore/mongo"
	"doodledocs/internal/projection"
	projmem "doodledocs/internal/projection/memory"
	projmongo "doodledocs/internal/projection/mongo"
	"doodledocs/internal/pubsub"
	pubsubmem "doodledocs/internal/pubsub/memory"
	pubsubnats "doodledocs/internal/pubsub/nats"
	"doodledocs/internal/realtime"
)

func (m *Manager) Init(ctx context.Context) error {
	eventLog, readModel, err := m.initStorage(ctx)
	if err != nil {
		return err
	}
	m.eventLog = eventLog

	if err := m.initPubSub(ctx); err != nil {
		return err
	}

	publisher, err := m.provider.NewPublisher(pubsub.PublisherOptions{
		StreamName:    m.cfg.PubSub.StreamName,
		SubjectPrefix: m.cfg.PubSub.SubjectPrefix,
	})
	if err != nil {
		return fmt.Errorf("create notification publisher: %w", err)
	}

	projector := projection.NewProjector(readModel, nil)
	outbox := document.NewOutbox()
	m.docService = document.NewService(eventLog, readModel, projector, outbox, nil)
	m.dispatcher = document.NewDispatcher(outbox, publisher, nil)

	if m.cfg.Projection.RebuildOnStart {
		if err := m.docService.Rebuild(ctx); err != nil {
			return fmt.Errorf("rebuild read model: %w", err)
		}
	}

	if m.opts.RunAPI {
		m.addServer("API server", m.cfg.Server.APIAddr, api.NewServer(m.docService, nil))
	}

	if m.opts.RunRealtime {
		consumer, err := m.provider.NewConsumer(pubsub.ConsumerOptions{
			StreamName:    m.cfg.PubSub.StreamName,
			ConsumerName:  "realtime",
			FilterSubject: m.cfg.PubSub.SubjectPrefix + ".>",
		})
		if err != nil {
			return fmt.Errorf("create notification consumer: %w", err)
		}
		m.rtServer = realtime.NewServer(consumer, nil)
		m.addServer("Realtime server", m.cfg.Server.RealtimeAddr, m.rtServer)
	}

	return nil
}

func (m *Manager) initStorage(ctx context.Context) (eventstore.Store, projection.Store, error) {
	switch m.cfg.Storage.Backend {
	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.cfg.Storage.Mongo.URI))
		if err != nil {
			return nil, nil, fmt.Errorf("connect to MongoDB: %w", err)
		}
		m.mongoClient = client

		db := client.Database(m.cfg.Storage.Mongo.Database)
		eventLog, err := eventmongo.NewStore(ctx, client, db)
		if err != nil {
			return nil, nil, fmt.Errorf("init event store: %w", err)
		}
		readModel, err := projmongo.NewStore(ctx, db)
		if err != nil {
			return nil, nil, fmt.Errorf("init read model store: %w", err)
		}
		return eventLog, readModel, nil
	default:
		return eventmem.NewStore(), projmem.NewStore(), nil
	}
}

func (m *Manager) initPubSub(ctx context.Context) error {
	switch m.cfg.PubSub.Backend {
	case "nats":
		m.provider = pubsubnats.NewProvider(m.cfg.PubSub.NATS.URL)
	default:
		m.provider = pubsubmem.New()
	}

	if c, ok := m.provider.(pubsub.Connectable); ok {
		if err := c.Connect(ctx); err != nil {
			return fmt.Errorf("connect pubsub provider: %w", err)
		}
	}
	return nil
}

func (m *Manager) addServer(name, addr string, handler http.Handler) {
	m.servers = append(m.servers, &http.Server{Addr: addr, Handler: handler})
	m.serverNames = append(m.serverNames, name)
}

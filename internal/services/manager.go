// Package services wires the application together: storage, notification
// transport, the document service, and the HTTP servers.
package services

import (
	"net/http"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	"doodledocs/internal/config"
	"doodledocs/internal/document"
	"doodledocs/internal/eventstore"
	"doodledocs/internal/pubsub"
	"doodledocs/internal/realtime"
)

// Options selects which frontends this process runs. Both may be enabled in
// a single process.
type Options struct {
	RunAPI      bool
	RunRealtime bool
}

type Manager struct {
	cfg  *config.Config
	opts Options

	servers     []*http.Server
	serverNames []string

	mongoClient *mongo.Client
	eventLog    eventstore.Store
	provider    pubsub.Provider

	docService document.Service
	dispatcher *document.Dispatcher
	rtServer   *realtime.Server

	wg sync.WaitGroup
}

func NewManager(cfg *config.Config, opts Options) *Manager {
	return &Manager{
		cfg:  cfg,
		opts: opts,
	}
}

// DocumentService returns the wired document service, mainly for tests.
func (m *Manager) DocumentService() document.Service {
	return m.docService
}

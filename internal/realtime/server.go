package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"doodledocs/internal/document"
	"doodledocs/internal/pubsub"
)

// Server exposes the realtime endpoints and bridges the notification
// transport into the hub.
type Server struct {
	hub      *Hub
	consumer pubsub.Consumer
	mux      *http.ServeMux
	logger   *slog.Logger
}

// NewServer creates the realtime server. The consumer must be filtered to
// the notification subjects.
func NewServer(consumer pubsub.Consumer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	h := NewHub()
	s := &Server{
		hub:      h,
		consumer: consumer,
		mux:      http.NewServeMux(),
		logger:   logger,
	}
	s.mux.HandleFunc("GET /v1/realtime", func(w http.ResponseWriter, r *http.Request) {
		ServeWs(h, w, r)
	})
	s.mux.HandleFunc("GET /v1/realtime/sse", func(w http.ResponseWriter, r *http.Request) {
		ServeSSE(h, w, r)
	})
	return s
}

// Hub returns the fan-out hub, mainly for tests.
func (s *Server) Hub() *Hub {
	return s.hub
}

// StartBackgroundTasks starts the hub and the notification bridge. The
// background tasks run until ctx is cancelled.
func (s *Server) StartBackgroundTasks(ctx context.Context) error {
	go s.hub.Run(ctx)

	msgCh, err := s.consumer.Subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgCh:
				if !ok {
					s.logger.Info("Notification stream closed")
					return
				}
				var n document.Notification
				if err := json.Unmarshal(msg.Data(), &n); err != nil {
					s.logger.Warn("Dropping malformed notification", "error", err)
					_ = msg.Ack()
					continue
				}
				s.hub.Broadcast(n)
				if err := msg.Ack(); err != nil {
					s.logger.Warn("Failed to ack notification", "error", err)
				}
			}
		}
	}()

	return nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

package services

import (
	"context"
	"log/slog"
)

// Shutdown stops the HTTP servers, waits for background tasks, and closes
// storage and transport connections. The context bounds how long it waits.
func (m *Manager) Shutdown(ctx context.Context) {
	for i, srv := range m.servers {
		slog.Info("Stopping server", "name", m.serverNames[i])
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("Error shutting down server", "name", m.serverNames[i], "error", err)
		}
	}

	// The dispatcher observes context cancellation and flushes the outbox;
	// wait for it and the server goroutines here.
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		slog.Warn("Timeout waiting for background tasks")
	}

	if m.provider != nil {
		if err := m.provider.Close(); err != nil {
			slog.Error("Error closing pubsub provider", "error", err)
		}
	}

	if m.eventLog != nil {
		if err := m.eventLog.Close(ctx); err != nil {
			slog.Error("Error closing event log", "error", err)
		}
	}

	if m.mongoClient != nil {
		if err := m.mongoClient.Disconnect(ctx); err != nil {
			slog.Error("Error disconnecting from MongoDB", "error", err)
		}
	}
}

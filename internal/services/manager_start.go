package services

import (
	"context"
	"log/slog"
	"net/http"
)

// Start launches the HTTP servers, the notification dispatcher, and the
// realtime background tasks. It returns immediately; everything runs until
// bgCtx is cancelled.
func (m *Manager) Start(bgCtx context.Context) {
	for i, srv := range m.servers {
		m.wg.Add(1)
		go func(s *http.Server, name string) {
			defer m.wg.Done()
			slog.Info("Server listening", "name", name, "addr", s.Addr)
			if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("Server stopped", "name", name, "error", err)
			}
		}(srv, m.serverNames[i])
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.dispatcher.Run(bgCtx)
	}()

	if m.rtServer != nil {
		if err := m.rtServer.StartBackgroundTasks(bgCtx); err != nil {
			slog.Error("Failed to start realtime background tasks", "error", err)
		}
	}
}

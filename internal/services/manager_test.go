package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doodledocs/internal/config"
	"doodledocs/internal/document"
)

func memoryConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Server.APIAddr = "localhost:0"
	cfg.Server.RealtimeAddr = "localhost:0"
	return cfg
}

func TestManager_InitWiresMemoryBackends(t *testing.T) {
	mgr := NewManager(memoryConfig(), Options{RunAPI: true, RunRealtime: true})

	require.NoError(t, mgr.Init(context.Background()))
	require.NotNil(t, mgr.DocumentService())
	assert.Len(t, mgr.servers, 2)
	assert.Equal(t, "API server", mgr.serverNames[0])
	assert.Equal(t, "Realtime server", mgr.serverNames[1])
}

func TestManager_InitAPIOnly(t *testing.T) {
	mgr := NewManager(memoryConfig(), Options{RunAPI: true})

	require.NoError(t, mgr.Init(context.Background()))
	assert.Len(t, mgr.servers, 1)
	assert.Nil(t, mgr.rtServer)
}

func TestManager_RebuildOnStart(t *testing.T) {
	cfg := memoryConfig()
	cfg.Projection.RebuildOnStart = true

	mgr := NewManager(cfg, Options{RunAPI: true})
	require.NoError(t, mgr.Init(context.Background()))
}

func TestManager_ServiceRoundTrip(t *testing.T) {
	mgr := NewManager(memoryConfig(), Options{RunAPI: true})
	require.NoError(t, mgr.Init(context.Background()))

	bgCtx, bgCancel := context.WithCancel(context.Background())
	mgr.Start(bgCtx)

	svc := mgr.DocumentService()
	doc, err := svc.Create(context.Background(), "Wired")
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wired", got.Title)

	_, err = svc.Update(context.Background(), doc.ID, document.UpdateRequest{Title: "Wired", Content: "Body"})
	require.NoError(t, err)

	bgCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mgr.Shutdown(shutdownCtx)
}

func TestManager_InvalidBackendFallsBackToMemory(t *testing.T) {
	// Validation rejects unknown backends before the manager sees them, so
	// Init treats anything that is not "mongo" or "nats" as memory.
	cfg := memoryConfig()
	cfg.Storage.Backend = "memory"
	cfg.PubSub.Backend = "memory"

	mgr := NewManager(cfg, Options{})
	require.NoError(t, mgr.Init(context.Background()))
	assert.Empty(t, mgr.servers)
}

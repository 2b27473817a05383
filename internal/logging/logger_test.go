package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doodledocs/internal/config"
)

func TestNewLogger_ConsoleOnly(t *testing.T) {
	cfg := config.DefaultLoggingConfig()

	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestNewLogger_FileOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultLoggingConfig()
	cfg.Console.Enabled = false
	cfg.File.Enabled = true
	cfg.Dir = filepath.Join(dir, "logs")

	logger, err := NewLogger(cfg)
	require.NoError(t, err)

	logger.Info("hello")
	logger.Error("boom")
	require.NoError(t, Shutdown())

	main, err := os.ReadFile(filepath.Join(cfg.Dir, "doodledocs.log"))
	require.NoError(t, err)
	assert.Contains(t, string(main), "hello")
	assert.Contains(t, string(main), "boom")

	// The errors file only receives warn and above.
	errs, err := os.ReadFile(filepath.Join(cfg.Dir, "errors.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(errs), "hello")
	assert.Contains(t, string(errs), "boom")
}

func TestNewLogger_AllOutputsDisabled(t *testing.T) {
	cfg := config.DefaultLoggingConfig()
	cfg.Console.Enabled = false

	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	logger.Info("goes nowhere")
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	filtered := NewLevelFilter(inner, slog.LevelWarn)
	logger := slog.New(filtered)

	logger.Info("quiet")
	logger.Warn("loud")

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}

func TestMultiHandler_FansOut(t *testing.T) {
	var a, b bytes.Buffer
	logger := slog.New(NewMultiHandler(
		slog.NewTextHandler(&a, nil),
		slog.NewJSONHandler(&b, nil),
	))

	logger.Info("fan out")

	assert.Contains(t, a.String(), "fan out")
	assert.Contains(t, b.String(), "fan out")
}

func TestMultiHandler_RespectsPerHandlerLevels(t *testing.T) {
	var verbose, quiet bytes.Buffer
	logger := slog.New(NewMultiHandler(
		slog.NewTextHandler(&verbose, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&quiet, &slog.HandlerOptions{Level: slog.LevelError}),
	))

	logger.Debug("detail")

	assert.Contains(t, verbose.String(), "detail")
	assert.Empty(t, quiet.String())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("info"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

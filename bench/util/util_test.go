package util

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInfoRoundTrip(t *testing.T) {
	dir := t.TempDir()
	version, err := LoadVersion(dir)
	require.NoError(t, err)
	require.Zero(t, version)

	require.NoError(t, SaveInfo(dir, Info{Version: 7, Hash: "ABCD"}))
	info, err := LoadInfo(dir)
	require.NoError(t, err)
	require.Equal(t, Info{Version: 7, Hash: "ABCD"}, info)
	version, err = LoadVersion(dir)
	require.NoError(t, err)
	require.Equal(t, int64(7), version)
}

func TestSlogWrapper(t *testing.T) {
	out := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo, AddSource: true}))
	wrapper := NewSlogWrapper(logger)

	wrapper.Debug("hidden")
	require.Zero(t, out.Len())

	wrapper.With("store", "bank").Info("committed", "version", 3)
	require.Contains(t, out.String(), "msg=committed")
	require.Contains(t, out.String(), "store=bank")
	require.Contains(t, out.String(), "version=3")
	require.Contains(t, out.String(), "util_test.go")
	require.Same(t, logger, wrapper.Impl())
}

func TestNewLogger(t *testing.T) {
	file := filepath.Join(t.TempDir(), "out.log")
	for _, logType := range []string{"text", "json", "plain"} {
		logger, treeLogger, closer, err := NewLogger(LoggerConfig{Type: logType, Level: "debug", File: file})
		require.NoError(t, err, logType)
		require.NotNil(t, logger)
		require.NotNil(t, treeLogger)
		treeLogger.Debug("committed version", "version", 1)
		require.NoError(t, closer.Close())
	}

	_, _, _, err := NewLogger(LoggerConfig{Type: "xml"})
	require.Error(t, err)
	_, _, _, err = NewLogger(LoggerConfig{Level: "loud"})
	require.Error(t, err)
}

func TestNewLoggerInvalidConfigOpensNoFile(t *testing.T) {
	for _, cfg := range []LoggerConfig{
		{Type: "xml", Level: "info"},
		{Type: "text", Level: "loud"},
		{Type: "plain", Level: "loud"},
	} {
		cfg.File = filepath.Join(t.TempDir(), "out.log")
		_, _, closer, err := NewLogger(cfg)
		require.Error(t, err, cfg)
		require.Nil(t, closer)
		_, statErr := os.Stat(cfg.File)
		require.True(t, os.IsNotExist(statErr), "log file was opened for %+v", cfg)
	}
}

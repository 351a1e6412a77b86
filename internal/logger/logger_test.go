package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/apple-clash/internal/config"
)

func TestRotatingWriter_RotatesWhenFull(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "server.log")
	w, err := newRotatingWriter(path, 1)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	chunk := make([]byte, 512*1024)
	for range 3 {
		_, err := w.Write(chunk)
		require.NoError(t, err)
	}

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.LessOrEqual(t, info.Size(), int64(1024*1024))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "one live file plus one backup")
}

func TestRotatingWriter_ReopensAfterClose(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "server.log")
	w, err := newRotatingWriter(path, 1)
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "double close is a no-op")

	_, err = w.Write([]byte("hello\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}

func TestInit_WritesToFile(t *testing.T) {
	// Not parallel: mutates the global logger
	defer Close()

	path := filepath.Join(t.TempDir(), "logs", "server.log")
	require.NoError(t, Init(config.LogConfig{Level: "debug", File: path, MaxMB: 1}))
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	log.Debug().Str("room", "1234").Msg("probe")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"room":"1234"`)
	assert.NotNil(t, Writer())
}

func TestInit_InvalidLevel(t *testing.T) {
	err := Init(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

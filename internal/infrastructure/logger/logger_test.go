package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	t.Run("json entries carry level, message and fields", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "posting.log")
		log, err := New(&Config{Level: "info", Format: "json", Output: path})
		require.NoError(t, err)

		log.Info("order posted", zap.String("number", "42"), zap.Int("lines", 3))
		require.NoError(t, Sync(log))

		raw, err := os.ReadFile(path)
		require.NoError(t, err)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(raw, &entry))
		assert.Equal(t, "info", entry["level"])
		assert.Equal(t, "order posted", entry["msg"])
		assert.Equal(t, "42", entry["number"])
		assert.Equal(t, float64(3), entry["lines"])
		assert.Contains(t, entry, "time")
		assert.Contains(t, entry, "caller")
	})

	t.Run("entries below the configured level are dropped", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "posting.log")
		log, err := New(&Config{Level: "warn", Format: "json", Output: path})
		require.NoError(t, err)

		log.Info("posting batch accepted")
		log.Warn("order rejected")
		require.NoError(t, Sync(log))

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "posting batch accepted")
		assert.Contains(t, string(raw), "order rejected")
	})

	t.Run("empty level defaults to info", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "posting.log")
		log, err := New(&Config{Format: "json", Output: path})
		require.NoError(t, err)

		log.Debug("sequencer lock acquired")
		log.Info("order posted")
		require.NoError(t, Sync(log))

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "sequencer lock acquired")
		assert.Contains(t, string(raw), "order posted")
	})

	t.Run("misspelled level fails at startup", func(t *testing.T) {
		_, err := New(&Config{Level: "verbose", Format: "json", Output: "stdout"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "verbose")
	})

	t.Run("console format stays human readable", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "posting.log")
		log, err := New(&Config{Level: "info", Format: "console", Output: path})
		require.NoError(t, err)

		log.Info("order posted")
		require.NoError(t, Sync(log))

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		line := string(raw)
		assert.Contains(t, line, "order posted")
		assert.False(t, strings.HasPrefix(strings.TrimSpace(line), "{"))
	})

	t.Run("error entries include a stacktrace", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "posting.log")
		log, err := New(&Config{Level: "info", Format: "json", Output: path})
		require.NoError(t, err)

		log.Error("posting failed")
		require.NoError(t, Sync(log))

		var entry map[string]any
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &entry))
		assert.Contains(t, entry, "stacktrace")
	})
}

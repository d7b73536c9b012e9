package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuildRejectsUnknownLevel(t *testing.T) {
	_, err := Build(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestBuildWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "joes.log")
	l, err := Build(Options{Level: "debug", FilePath: path, MaxSize: 1})
	require.NoError(t, err)
	l.Info("hello")
	require.NoError(t, l.Sync())
	assert.FileExists(t, path)
}

func TestNamedAddsComponentField(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	restore := ReplaceForTest(zap.New(core))
	defer restore()

	Named("article.handler").Infow("published", "article", "a1")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "article.handler", entries[0].ContextMap()["component"])
	assert.Equal(t, "a1", entries[0].ContextMap()["article"])
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_FILE", "-")
	t.Setenv("LOG_MAX_SIZE", "nope")
	opts := optionsFromEnv()
	assert.Equal(t, "warn", opts.Level)
	assert.Empty(t, opts.FilePath)
	assert.Equal(t, 20, opts.MaxSize)
}

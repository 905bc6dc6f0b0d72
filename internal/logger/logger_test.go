package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugOnlyInVerbose(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(nil)
	})

	SetVerbose(false)
	Debug("hidden", "k", 1)
	Info("shown", "generation", 3)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "generation=3")
	assert.False(t, Enabled(slog.LevelDebug))

	buf.Reset()
	SetVerbose(true)
	assert.True(t, IsVerbose())
	Debug("visible", "path", "/x")
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "path=/x")
}

func TestOpenFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scopefind.log")
	f, err := OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { SetOutput(nil) })

	Warn("first")
	Error("second")
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=first")
	assert.Contains(t, string(data), "level=ERROR")
}

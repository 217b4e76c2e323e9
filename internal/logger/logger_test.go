package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l := New(path, true)
	l.Info("hello", zap.String("stage", "ingest"))
	_ = l.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"message":"hello"`)
	assert.Contains(t, string(raw), `"stage":"ingest"`)
}

func TestInstallRestoresGlobal(t *testing.T) {
	before := zap.L()
	l, restore := Install("", false)
	assert.Same(t, l, zap.L())

	restore()
	assert.Same(t, before, zap.L())
}

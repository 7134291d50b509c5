package logger_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/farmbook/internal/logger"
)

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := logger.New("chatty")
	assert.Error(t, err)

	_, err = logger.NewFile("chatty", filepath.Join(t.TempDir(), "farmbook.log"))
	assert.Error(t, err)
}

func TestNewFile_WritesJSONAtLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "farmbook.log")

	log, err := logger.NewFile("warn", path)
	require.NoError(t, err)

	log.Info("dropped")
	log.Warn("kept", zap.String("pool", "Maize"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(data, &line))

	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "Maize", line["pool"])
	assert.Contains(t, line, "timestamp")
}

func TestNamed_NilBase(t *testing.T) {
	assert.NotNil(t, logger.Named(nil, "books"))
}

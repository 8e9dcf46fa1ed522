package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("info"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestProductionCoreWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := zap.New(newCore("info", "production", zapcore.AddSync(&buf)))

	log.Info("video viewed", zap.String("video_id", "abc"))
	require.NoError(t, log.Sync())

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "INFO", line["level"])
	assert.Equal(t, "video viewed", line["msg"])
	assert.Equal(t, "abc", line["video_id"])
	assert.Contains(t, line, "timestamp")
}

func TestCoreRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := zap.New(newCore("warn", "development", zapcore.AddSync(&buf)))

	log.Info("dropped")
	log.Warn("kept")
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
}

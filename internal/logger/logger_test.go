package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func withBuffer(t *testing.T, level zapcore.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := log
	Set(NewJSON(&buf, level))
	t.Cleanup(func() { Set(old) })
	return &buf
}

func TestInit(t *testing.T) {
	old := log
	defer Set(old)

	InitWithEnv("production")
	assert.NotNil(t, log)

	InitWithEnv("development")
	assert.NotNil(t, log)
}

func TestInfo(t *testing.T) {
	buf := withBuffer(t, zapcore.InfoLevel)

	Info("test message", "booking_id", 42)

	output := buf.String()
	assert.Contains(t, output, "test message")
	assert.Contains(t, output, `"booking_id":42`)
	assert.Contains(t, output, `"level":"info"`)
}

func TestError(t *testing.T) {
	buf := withBuffer(t, zapcore.InfoLevel)

	Error("test error", "error", "boom")

	output := buf.String()
	assert.Contains(t, output, "test error")
	assert.Contains(t, output, `"error":"boom"`)
}

func TestDebugFilteredByLevel(t *testing.T) {
	buf := withBuffer(t, zapcore.InfoLevel)

	Debug("hidden")
	assert.Empty(t, buf.String())

	buf = withBuffer(t, zapcore.DebugLevel)
	Debug("test debug")
	assert.Contains(t, buf.String(), "test debug")
}

func TestFormatted(t *testing.T) {
	buf := withBuffer(t, zapcore.DebugLevel)

	Infof("test %s", "message")
	Warnf("warn %d", 1)
	Errorf("error %d", 2)
	Debugf("debug %d", 3)

	output := buf.String()
	assert.Contains(t, output, "test message")
	assert.Contains(t, output, "warn 1")
	assert.Contains(t, output, "error 2")
	assert.Contains(t, output, "debug 3")
}

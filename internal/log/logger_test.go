package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bufferLogger(level slog.Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(Config{Level: level, Component: ComponentApp, Output: &buf}), &buf
}

func TestLoggerAddsComponentOnce(t *testing.T) {
	l, buf := bufferLogger(slog.LevelInfo)
	l.WithComponent(ComponentTracker).Info("hello", "k", "v")

	line := buf.String()
	assert.Equal(t, 1, strings.Count(line, "component="), line)
	assert.Contains(t, line, "component=tracker")
	assert.Contains(t, line, "k=v")
}

func TestLoggerRespectsLevel(t *testing.T) {
	l, buf := bufferLogger(slog.LevelWarn)
	l.Info("hidden")
	l.Debug("hidden")
	l.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewContextAndFromContext(t *testing.T) {
	l, buf := bufferLogger(slog.LevelInfo)

	ctx := NewContext(context.Background(), l.With(FieldRequestID, "req_1"))
	FromContext(ctx).Info("inside")

	assert.Contains(t, buf.String(), "request_id=req_1")
	assert.Contains(t, buf.String(), "inside")
	assert.Equal(t, "unknown", FromContext(context.Background()).Component())
}

func TestStructuredLoggerLevels(t *testing.T) {
	l, buf := bufferLogger(slog.LevelInfo)
	sl := NewStructuredLogger(l)
	r := httptest.NewRequest(http.MethodPost, "/expenses?x=1", nil)

	sl.LogHTTPStart(context.Background(), r, "req_2", "10.0.0.1")
	sl.LogHTTPEnd(context.Background(), r, "req_2", http.StatusUnprocessableEntity, 3, "10.0.0.1")
	sl.LogError(context.Background(), "boom", errors.New("bad"), ComponentHTTP, OpCreate, nil)

	out := buf.String()
	assert.Contains(t, out, "HTTP request started")
	assert.Contains(t, out, "level=WARN msg=\"HTTP request completed\"")
	assert.Contains(t, out, "status_code=422")
	assert.Contains(t, out, "level=ERROR msg=boom")
	assert.Contains(t, out, "error=bad")
}

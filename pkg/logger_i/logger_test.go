package logger_i

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceIDIsAttached(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, false, "debug")
	t.Cleanup(func() { slog.SetDefault(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))) })

	ctx := WithTraceID(context.Background(), "abc-123")
	NewLogger("ingest").FromContext(ctx).Warn("retrying", "attempt", 2)

	out := buf.String()
	assert.Contains(t, out, "component=ingest")
	assert.Contains(t, out, "traceId=abc-123")
	assert.Contains(t, out, "attempt=2")
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, true, "warn")
	t.Cleanup(func() { slog.SetDefault(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))) })

	l := NewLogger("test")
	l.Debug("hidden")
	l.Info("hidden too")
	l.Error("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

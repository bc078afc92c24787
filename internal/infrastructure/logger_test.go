package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"opsanalytics/internal/config"
)

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "logs", "test.log")

	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	})
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Info("expansion complete", "rows", 3)
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(content, &entry))
	assert.Equal(t, "expansion complete", entry["msg"])
	assert.Equal(t, float64(3), entry["rows"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Same(t, logger, GetLogger())
}

func TestTraceIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, "debug")

	ctx := WithTraceID(context.Background(), "trace-123")
	logger.With("component", "occupancy").InfoContext(ctx, "with trace")
	logger.InfoContext(context.Background(), "without trace")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	assert.Equal(t, "trace-123", first["trace_id"])
	assert.Equal(t, "occupancy", first["component"])
	assert.NotContains(t, second, "trace_id")
	assert.NotContains(t, second, "otel_trace_id")
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level      string
		debugShown bool
		warnShown  bool
	}{
		{level: "debug", debugShown: true, warnShown: true},
		{level: "info", debugShown: false, warnShown: true},
		{level: "error", debugShown: false, warnShown: false},
		{level: "bogus", debugShown: false, warnShown: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewJSONLogger(&buf, tt.level)

			logger.Debug("debug line")
			assert.Equal(t, tt.debugShown, strings.Contains(buf.String(), "debug line"))

			logger.Warn("warn line")
			assert.Equal(t, tt.warnShown, strings.Contains(buf.String(), "warn line"))
		})
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	ctx = EnsureTraceID(ctx)
	id := GetTraceID(ctx)
	assert.Len(t, id, 36)

	assert.Equal(t, id, GetTraceID(EnsureTraceID(ctx)))
	assert.NotEqual(t, id, GetTraceID(ContextWithTraceID(ctx)))
	assert.NotNil(t, LoggerWithContext(ctx))
	assert.NotNil(t, WithComponent(nil, "picking"))
}

func TestSpanIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, "info")

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "expand")
	logger.InfoContext(ctx, "stage_completed")
	span.End()

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, span.SpanContext().SpanID().String(), entry["span_id"])
	assert.Equal(t, span.SpanContext().TraceID().String(), entry["otel_trace_id"])
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "text", "info", false)

	logger.InfoContext(WithTraceID(context.Background(), "t-1"), "picking_completed", "deliveries", 2)

	line := buf.String()
	assert.Contains(t, line, "msg=picking_completed")
	assert.Contains(t, line, "deliveries=2")
	assert.Contains(t, line, "trace_id=t-1")
	assert.NotContains(t, line, "source=")
}

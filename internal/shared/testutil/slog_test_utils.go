package testutil

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// LogRecord is one captured log event
type LogRecord struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

type recordStore struct {
	mu      sync.Mutex
	records []LogRecord
}

// BufferedSlogHandler captures log records for testing. Handlers derived
// through WithAttrs/WithGroup share the parent's record buffer.
type BufferedSlogHandler struct {
	*recordStore
	attrs  []slog.Attr
	prefix string
	t      *testing.T
}

// NewBufferedSlogHandler creates a new buffered handler for testing
func NewBufferedSlogHandler(t *testing.T) *BufferedSlogHandler {
	return &BufferedSlogHandler{
		recordStore: &recordStore{},
		t:           t,
	}
}

// NewTestLogger creates a logger with a buffered handler for testing
func NewTestLogger(t *testing.T) (*slog.Logger, *BufferedSlogHandler) {
	handler := NewBufferedSlogHandler(t)
	return slog.New(handler), handler
}

// Handle implements slog.Handler
func (h *BufferedSlogHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[h.prefix+a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	h.records = append(h.records, LogRecord{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	h.mu.Unlock()

	if h.t != nil {
		h.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

// Enabled implements slog.Handler; every level is captured.
func (h *BufferedSlogHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

// WithAttrs implements slog.Handler
func (h *BufferedSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]slog.Attr{}, h.attrs...)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
	}
	return &clone
}

// WithGroup implements slog.Handler
func (h *BufferedSlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

// Records returns the captured records matching filter; a nil filter
// returns all of them.
func (h *BufferedSlogHandler) Records(filter func(LogRecord) bool) []LogRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []LogRecord
	for _, r := range h.records {
		if filter == nil || filter(r) {
			out = append(out, r)
		}
	}
	return out
}

// Events returns the records whose message is exactly event.
func (h *BufferedSlogHandler) Events(event string) []LogRecord {
	return h.Records(func(r LogRecord) bool { return r.Message == event })
}

// AssertLogContains fails unless event was logged at level.
func AssertLogContains(t *testing.T, handler *BufferedSlogHandler, level slog.Level, event string) {
	t.Helper()

	found := handler.Records(func(r LogRecord) bool {
		return r.Level == level && r.Message == event
	})
	if len(found) > 0 {
		return
	}

	t.Errorf("log event %q not found at level %s", event, level)
	for _, r := range handler.Records(nil) {
		t.Logf("  - [%s] %s", r.Level, r.Message)
	}
}

// AssertLogCount fails unless event was logged exactly n times.
func AssertLogCount(t *testing.T, handler *BufferedSlogHandler, event string, n int) {
	t.Helper()

	if got := len(handler.Events(event)); got != n {
		t.Errorf("log event %q: got %d records, want %d", event, got, n)
	}
}

// AssertLogAttr fails unless some record carries key=expected.
func AssertLogAttr(t *testing.T, handler *BufferedSlogHandler, key string, expected any) {
	t.Helper()

	found := handler.Records(func(r LogRecord) bool {
		val, ok := r.Attrs[key]
		return ok && val == expected
	})
	if len(found) > 0 {
		return
	}

	t.Errorf("log attribute not found: %s=%v", key, expected)
	for _, r := range handler.Records(nil) {
		t.Logf("  - %s: %v", r.Message, r.Attrs)
	}
}

// AssertNoErrors fails if any error-level record was captured.
func AssertNoErrors(t *testing.T, handler *BufferedSlogHandler) {
	t.Helper()

	for _, r := range handler.Records(func(r LogRecord) bool { return r.Level >= slog.LevelError }) {
		t.Errorf("unexpected error log: %s: %v", r.Message, r.Attrs)
	}
}

package errors

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

const (
	// maxCapturedBody bounds the request body kept for failure logs
	maxCapturedBody = 1 << 20
	// maxLoggedBody bounds the logged excerpt of a failed request body
	maxLoggedBody = 500
)

// redactedFields are replaced at any depth before a body is logged.
var redactedFields = map[string]bool{
	"password":  true,
	"token":     true,
	"secret":    true,
	"api_key":   true,
	"picker_id": true,
	"PICKER_ID": true,
}

// ErrorMiddleware recovers panics and writes one access log line per request.
// Failed requests also log a redacted excerpt of their JSON body.
type ErrorMiddleware struct {
	handler *ErrorHandler
	logger  *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(handler *ErrorHandler, logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		handler: handler,
		logger:  logger.With(slog.String("component", "error_middleware")),
	}
}

// Handler returns the middleware handler function
func (m *ErrorMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		body := captureBody(r)
		start := time.Now()

		defer func() {
			if rec := recover(); rec != nil {
				m.handler.HandlePanic(ww, r, rec)
			}
			m.logRequest(r, ww, time.Since(start), body)
		}()

		next.ServeHTTP(ww, r)
	})
}

func (m *ErrorMiddleware) logRequest(r *http.Request, ww middleware.WrapResponseWriter, elapsed time.Duration, body []byte) {
	status := ww.Status()
	if status == 0 {
		status = http.StatusOK
	}

	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}

	attrs := []slog.Attr{
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.Duration("duration", elapsed),
		slog.Int("bytes", ww.BytesWritten()),
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	}
	if r.URL.RawQuery != "" {
		attrs = append(attrs, slog.String("query", r.URL.RawQuery))
	}
	if status >= 400 && len(body) > 0 {
		excerpt := sanitizeRequestBody(string(body))
		if len(excerpt) > maxLoggedBody {
			excerpt = excerpt[:maxLoggedBody] + "..."
		}
		attrs = append(attrs, slog.String("request_body", excerpt))
	}

	m.logger.LogAttrs(r.Context(), level, "http_request", attrs...)
}

// captureBody reads small JSON bodies and puts an identical reader back.
func captureBody(r *http.Request) []byte {
	if r.Body == nil || r.ContentLength <= 0 || r.ContentLength > maxCapturedBody {
		return nil
	}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return nil
	}
	body, err := io.ReadAll(r.Body)
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))
	if err != nil {
		return nil
	}
	return body
}

// sanitizeRequestBody redacts sensitive keys in nested JSON. Non-JSON input
// is returned unchanged.
func sanitizeRequestBody(body string) string {
	var data interface{}
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return body
	}
	sanitized, err := json.Marshal(redact(data))
	if err != nil {
		return body
	}
	return string(sanitized)
}

func redact(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			if redactedFields[k] {
				t[k] = "[REDACTED]"
				continue
			}
			t[k] = redact(val)
		}
	case []interface{}:
		for i, val := range t {
			t[i] = redact(val)
		}
	}
	return v
}

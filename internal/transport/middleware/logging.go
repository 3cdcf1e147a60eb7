package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/training-management/pkg/logger"
)

// maxLoggedBody caps how much of a body reaches the log.
const maxLoggedBody = 2048

const (
	omitted  = "[omitted]"
	filtered = "[FILTERED]"
)

// sensitiveFields match header names and JSON keys by substring.
var sensitiveFields = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"api_key",
	"session",
	"credential",
	"cookie",
}

func isSensitive(name string) bool {
	name = strings.ToLower(name)
	for _, field := range sensitiveFields {
		if strings.Contains(name, field) {
			return true
		}
	}
	return false
}

// LoggingMiddleware writes one line per request and one per response. JSON
// bodies are logged with credentials masked. Uploads, exports and anything
// longer than maxLoggedBody are left out.
func LoggingMiddleware(base *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := middleware.GetReqID(r.Context())
			lg := logger.FromOr(r.Context(), base).With("request_id", reqID)

			lg.InfoContext(r.Context(), "incoming request",
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"headers", maskHeaders(r.Header),
				"body", requestBody(r),
			)

			captured := &cappedBuffer{limit: maxLoggedBody}
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(captured)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			body := omitted
			if loggableBody(ww.Header().Get("Content-Type")) {
				body = captured.String()
			}

			lg.Log(r.Context(), levelFor(status), "response",
				"status_code", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"response_size", ww.BytesWritten(),
				"body", body,
			)
		})
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// loggableBody reports whether a body of this content type is worth reading
// into the log. Uploads and spreadsheets are not.
func loggableBody(contentType string) bool {
	ct := strings.ToLower(contentType)
	return !strings.HasPrefix(ct, "multipart/") &&
		!strings.Contains(ct, "spreadsheetml") &&
		!strings.HasPrefix(ct, "text/csv") &&
		!strings.HasPrefix(ct, "application/octet-stream")
}

// requestBody reads a small body for the log and puts it back for the
// handler. Chunked bodies have an unknown length and are not read.
func requestBody(r *http.Request) string {
	if r.Body == nil || r.ContentLength < 0 || r.ContentLength > maxLoggedBody || !loggableBody(r.Header.Get("Content-Type")) {
		return omitted
	}
	raw, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(raw))
	return maskBody(raw)
}

// cappedBuffer keeps the first limit bytes written and counts the rest.
type cappedBuffer struct {
	buf   bytes.Buffer
	limit int
	total int
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	c.total += len(p)
	if room := c.limit - c.buf.Len(); room > 0 {
		if len(p) > room {
			c.buf.Write(p[:room])
		} else {
			c.buf.Write(p)
		}
	}
	return len(p), nil
}

func (c *cappedBuffer) String() string {
	if c.total > c.limit {
		return fmt.Sprintf("[truncated %d bytes]", c.total)
	}
	return maskBody(c.buf.Bytes())
}

func maskHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSensitive(name) {
			out[name] = filtered
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// maskBody masks sensitive keys of a JSON body. Text that is not JSON is
// dropped entirely when it mentions a sensitive field.
func maskBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		if isSensitive(string(body)) {
			return "[FILTERED - Contains sensitive data]"
		}
		return string(body)
	}

	masked, err := json.Marshal(maskJSON(doc))
	if err != nil {
		return "[ERROR - Failed to marshal filtered JSON]"
	}
	return string(masked)
}

func maskJSON(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isSensitive(key) {
				out[key] = filtered
				continue
			}
			out[key] = maskJSON(value)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = maskJSON(item)
		}
		return out
	default:
		return v
	}
}

package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
)

const filtered = "[FILTERED]"

// secretKeys never reach the log. Matching is by substring on the lowered key.
var secretKeys = []string{
	"password",
	"token",
	"authorization",
	"cookie",
	"secret",
	"credential",
	"session",
}

// contactKeys carry lead and customer contact details. They are logged masked
// so a line can still be matched to a record without exposing the value.
var contactKeys = map[string]func(string) string{
	"email": maskEmail,
	"phone": maskPhone,
}

// freeTextKeys hold notes and call summaries; only their length is logged.
var freeTextKeys = map[string]bool{
	"notes":   true,
	"summary": true,
}

// quietPaths are polled by infrastructure and only logged on failure.
var quietPaths = map[string]bool{
	"/metrics":       true,
	"/api/v1/health": true,
	"/api/v1/ping":   true,
	"/openapi.yml":   true,
}

// LoggingMiddleware logs each request and its response with secrets removed
// and contact details masked.
func LoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := middleware.GetReqID(r.Context())
			quiet := quietPaths[r.URL.Path]

			if !quiet {
				logRequest(logger, r, reqID)
			}

			rec := &recorder{ResponseWriter: w, body: &bytes.Buffer{}}
			next.ServeHTTP(rec, r)

			if quiet && rec.status() < 400 {
				return
			}
			logResponse(logger, r, rec, time.Since(start), reqID)
		})
	}
}

type recorder struct {
	http.ResponseWriter
	code int
	body *bytes.Buffer
}

func (rw *recorder) WriteHeader(code int) {
	rw.code = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recorder) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

func (rw *recorder) status() int {
	if rw.code == 0 {
		return http.StatusOK
	}
	return rw.code
}

func logRequest(logger *slog.Logger, r *http.Request, reqID string) {
	var body []byte
	if r.Body != nil {
		body, _ = io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
	}

	logger.InfoContext(r.Context(), "incoming request",
		"request_id", reqID,
		"method", r.Method,
		"path", r.URL.Path,
		"query", r.URL.RawQuery,
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
		"headers", redactHeaders(r.Header),
		"body", redactBody(body),
	)
}

func logResponse(logger *slog.Logger, r *http.Request, rw *recorder, duration time.Duration, reqID string) {
	code := rw.status()
	level := slog.LevelInfo
	switch {
	case code >= 500:
		level = slog.LevelError
	case code >= 400:
		level = slog.LevelWarn
	}

	logger.Log(r.Context(), level, "response",
		"request_id", reqID,
		"trace_id", rw.Header().Get("X-Trace-ID"),
		"status_code", code,
		"duration_ms", duration.Milliseconds(),
		"response_size", rw.body.Len(),
		"body", redactBody(rw.body.Bytes()),
	)
}

func isSecret(key string) bool {
	key = strings.ToLower(key)
	for _, s := range secretKeys {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}

func redactHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSecret(name) {
			out[name] = filtered
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// redactBody renders a JSON body for the log. Anything that is not JSON is
// dropped entirely since its fields cannot be told apart.
func redactBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return "[NON-JSON BODY]"
	}
	out, err := json.Marshal(redactValue("", data))
	if err != nil {
		return "[UNLOGGABLE BODY]"
	}
	return string(out)
}

func redactValue(key string, v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = redactValue(k, val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = redactValue(key, item)
		}
		return out
	case string:
		return redactString(key, t)
	default:
		if key != "" && isSecret(key) {
			return filtered
		}
		return v
	}
}

func redactString(key, s string) string {
	if key == "" || s == "" {
		return s
	}
	if isSecret(key) {
		return filtered
	}
	lower := strings.ToLower(key)
	if freeTextKeys[lower] {
		return "[" + strconv.Itoa(len(s)) + " chars]"
	}
	for name, mask := range contactKeys {
		if strings.Contains(lower, name) {
			return mask(s)
		}
	}
	return s
}

// maskEmail keeps the first letter of the local part and the domain.
func maskEmail(s string) string {
	at := strings.LastIndex(s, "@")
	if at <= 0 {
		return filtered
	}
	return s[:1] + "***" + s[at:]
}

// maskPhone keeps the last two digits.
func maskPhone(s string) string {
	var digits []byte
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits = append(digits, s[i])
		}
	}
	if len(digits) <= 2 {
		return filtered
	}
	return "***" + string(digits[len(digits)-2:])
}

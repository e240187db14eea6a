package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func statusHandler(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})
}

// serveLogged runs one request through the middleware and returns its log entry.
func serveLogged(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, observer.LoggedEntry) {
	t.Helper()
	obs, logs := observer.New(zapcore.DebugLevel)

	w := httptest.NewRecorder()
	LoggingMiddleware(zap.New(obs))(h).ServeHTTP(w, req)

	require.Equal(t, 1, logs.Len())
	return w, logs.All()[0]
}

func TestLoggingMiddleware_Fields(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/report", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	_, entry := serveLogged(t, statusHandler(http.StatusOK), req)
	fields := entry.ContextMap()

	assert.Equal(t, "http request", entry.Message)
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/api/report", fields["path"])
	assert.EqualValues(t, 200, fields["status"])
	assert.Equal(t, "192.168.1.1:12345", fields["client_ip"])
	assert.Contains(t, fields, "duration_ms")
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	w, entry := serveLogged(t, statusHandler(http.StatusOK), httptest.NewRequest("GET", "/api/stats", nil))

	id := w.Header().Get("X-Request-ID")
	require.NotEmpty(t, id)
	assert.Equal(t, id, entry.ContextMap()["request_id"])

	req := httptest.NewRequest("GET", "/api/stats", nil)
	req.Header.Set("X-Request-ID", "scan-42")
	w, entry = serveLogged(t, statusHandler(http.StatusOK), req)

	assert.Equal(t, "scan-42", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "scan-42", entry.ContextMap()["request_id"])
}

func TestLoggingMiddleware_XForwardedFor(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/report", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.50, 10.0.0.2")
	req.RemoteAddr = "10.0.0.1:54321"

	_, entry := serveLogged(t, statusHandler(http.StatusOK), req)

	assert.Equal(t, "203.0.113.50", entry.ContextMap()["client_ip"])
}

func TestLoggingMiddleware_LevelByStatus(t *testing.T) {
	tests := []struct {
		status int
		want   zapcore.Level
	}{
		{http.StatusOK, zapcore.InfoLevel},
		{http.StatusCreated, zapcore.InfoLevel},
		{http.StatusNotFound, zapcore.WarnLevel},
		{http.StatusUnauthorized, zapcore.WarnLevel},
		{http.StatusBadGateway, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			_, entry := serveLogged(t, statusHandler(tt.status), httptest.NewRequest("GET", "/api/report", nil))
			assert.Equal(t, tt.want, entry.Level)
		})
	}
}

func TestLoggingMiddleware_RouteLabel(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("GET /api/reports/{id}", statusHandler(http.StatusOK))

	_, entry := serveLogged(t, mux, httptest.NewRequest("GET", "/api/reports/abc", nil))

	assert.Equal(t, "/api/reports/abc", entry.ContextMap()["path"])
	assert.Equal(t, "/api/reports/{id}", entry.ContextMap()["route"])
}

package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/marivaldojunior/ProductManagement/pkg/logger"
)

// serveAndCapture runs one request through RequestLogger with a handler that
// emits a single log line, and returns the decoded line.
func serveAndCapture(t *testing.T, req *http.Request) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	base := logger.NewWithWriter("identity", "info", &buf)

	handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("handled")
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotZero(t, buf.Len(), "expected a log line")
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestRequestLogger_StoresLoggerInContext(t *testing.T) {
	var got *slog.Logger
	handler := RequestLogger(slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = logger.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, got)
}

func TestRequestLogger_CorrelationID(t *testing.T) {
	ctx := logger.WithCorrelationID(context.Background(), "corr-test-123")
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)

	out := serveAndCapture(t, req)
	assert.Equal(t, "corr-test-123", out["correlation_id"])
}

func TestRequestLogger_UserIDFromAuthContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), userIDKey, "user-from-auth")
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)

	out := serveAndCapture(t, req)
	assert.Equal(t, "user-from-auth", out["user_id"])
}

func TestRequestLogger_UserIDFromHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-ID", "user-from-header")

	out := serveAndCapture(t, req)
	assert.Equal(t, "user-from-header", out["user_id"])
}

func TestRequestLogger_AuthContextBeatsHeader(t *testing.T) {
	ctx := context.WithValue(context.Background(), userIDKey, "auth-user")
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	req.Header.Set("X-User-ID", "header-user")

	out := serveAndCapture(t, req)
	assert.Equal(t, "auth-user", out["user_id"])
}

func TestRequestLogger_NoUserIDOmitsField(t *testing.T) {
	out := serveAndCapture(t, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotContains(t, out, "user_id")
}

func TestRequestLogger_TraceFields(t *testing.T) {
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)

	out := serveAndCapture(t, req)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", out["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", out["span_id"])
}

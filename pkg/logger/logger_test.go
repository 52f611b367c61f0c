package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func spanContext(t *testing.T, traceHex, spanHex string) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex(traceHex)
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex(spanHex)
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestNewWithWriter_ServiceField(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("identity", "info", &buf)
	l.Info("hello")

	out := logLine(t, &buf)
	assert.Equal(t, "identity", out["service"])
	assert.Equal(t, "hello", out["msg"])
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("identity", "warn", &buf)

	l.Info("dropped")
	assert.Zero(t, buf.Len())

	l.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestNewWithWriter_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("identity", "chatty", &buf)

	l.Debug("dropped")
	assert.Zero(t, buf.Len())

	l.Info("kept")
	assert.NotZero(t, buf.Len())
}

func TestWithContext_CorrelationID(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("identity", "info", &buf)

	ctx := WithCorrelationID(context.Background(), "req-123")
	WithContext(ctx, l).Info("hello")

	out := logLine(t, &buf)
	assert.Equal(t, "req-123", out["correlation_id"])
}

func TestWithContext_UserID(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("identity", "info", &buf)

	ctx := WithUserID(context.Background(), "user-789")
	WithContext(ctx, l).Info("with user")

	out := logLine(t, &buf)
	assert.Equal(t, "user-789", out["user_id"])
}

func TestWithContext_EmptyContextAddsNothing(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("identity", "info", &buf)

	WithContext(context.Background(), l).Info("bare")

	out := logLine(t, &buf)
	assert.NotContains(t, out, "correlation_id")
	assert.NotContains(t, out, "user_id")
	assert.NotContains(t, out, "trace_id")
	assert.NotContains(t, out, "span_id")
}

func TestWithContext_TraceIDs(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("identity", "info", &buf)

	ctx := spanContext(t, "4bf92f3577b34da6a3ce929d0e0e4736", "00f067aa0ba902b7")
	WithContext(ctx, l).Info("with span")

	out := logLine(t, &buf)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", out["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", out["span_id"])
}

func TestWithContext_AllFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("identity", "info", &buf)

	ctx := spanContext(t, "abcdef1234567890abcdef1234567890", "1234567890abcdef")
	ctx = WithCorrelationID(ctx, "corr-all")
	ctx = WithUserID(ctx, "user-all")
	WithContext(ctx, l).Info("all fields")

	out := logLine(t, &buf)
	assert.Equal(t, "corr-all", out["correlation_id"])
	assert.Equal(t, "user-all", out["user_id"])
	assert.Equal(t, "abcdef1234567890abcdef1234567890", out["trace_id"])
	assert.Equal(t, "1234567890abcdef", out["span_id"])
}

func TestFromContext(t *testing.T) {
	l := NewWithWriter("identity", "info", &bytes.Buffer{})

	ctx := NewContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))

	assert.NotNil(t, FromContext(context.Background()))
}

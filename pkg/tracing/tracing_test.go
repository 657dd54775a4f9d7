package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))

	return recorder
}

func TestDatabaseSpanWrapper(t *testing.T) {
	recorder := newRecorder(t)
	boom := errors.New("connection refused")

	err := DatabaseSpanWrapper(context.Background(), "sqlite", "todos", "ping", func(ctx context.Context) error {
		assert.NotEmpty(t, GetTraceID(ctx))
		assert.NotEmpty(t, GetSpanID(ctx))
		return boom
	})

	assert.ErrorIs(t, err, boom)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "db.todos.ping", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String("db.system", "sqlite"))
	assert.Contains(t, spans[0].Attributes(), attribute.String("db.operation", "ping"))
}

func TestChildSpanHelpers(t *testing.T) {
	recorder := newRecorder(t)

	_, span := CreateChildSpan(context.Background(), "handler.todo.GetAllTodos", []attribute.KeyValue{
		attribute.String("handler.name", "GetAllTodos"),
	})
	AddHTTPAttributes(span, "GET", "/todos", 200)
	AddSpanEvent(span, "auth.rejected", nil)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Attributes(), attribute.Int("http.status_code", 200))
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "auth.rejected", spans[0].Events()[0].Name)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
	assert.Empty(t, GetSpanID(context.Background()))
}

package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "todoapi"

// AddSpanError marks the span as failed.
func AddSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func AddSpanEvent(span trace.Span, name string, attrs []attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

func AddDatabaseAttributes(span trace.Span, system, collection, operation string) {
	span.SetAttributes(
		attribute.String("db.system", system),
		attribute.String("db.collection", collection),
		attribute.String("db.operation", operation),
	)
}

func AddHTTPAttributes(span trace.Span, method string, route string, statusCode int) {
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", statusCode),
	)
}

func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}

func GetSpanID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().SpanID().String()
	}
	return ""
}

func CreateChildSpan(ctx context.Context, name string, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// DatabaseSpanWrapper runs fn inside a db span and records its error, if any.
func DatabaseSpanWrapper(ctx context.Context, system, collection, operation string, fn func(context.Context) error) error {
	ctx, span := CreateChildSpan(ctx, fmt.Sprintf("db.%s.%s", collection, operation), nil)
	defer span.End()

	AddDatabaseAttributes(span, system, collection, operation)

	err := fn(ctx)
	if err != nil {
		AddSpanError(span, err)
	}

	return err
}

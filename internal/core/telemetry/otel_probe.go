package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
)

const tracerName = "todoapi"

// OTELProbe implements port.Telemetry with OpenTelemetry spans, prometheus
// counters and zap logs.
type OTELProbe struct {
	logger  *zap.Logger
	metrics *AppMetrics
	tracer  trace.Tracer
}

func NewOTELProbe(logger *zap.Logger, metrics *AppMetrics) port.Telemetry {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OTELProbe{
		logger:  logger,
		metrics: metrics,
		tracer:  otel.Tracer(tracerName),
	}
}

func (p *OTELProbe) StartRepositorySpan(ctx context.Context, operation string, entity string, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	spanName := fmt.Sprintf("repository.%s.%s", entity, operation)

	standardAttrs := []attribute.KeyValue{
		attribute.String("repository.entity", entity),
		attribute.String("repository.operation", operation),
		attribute.String("component", "repository"),
	}

	return p.tracer.Start(ctx, spanName, trace.WithAttributes(append(standardAttrs, attrs...)...))
}

func (p *OTELProbe) StartServiceSpan(ctx context.Context, service string, operation string, ownerID string, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	spanName := fmt.Sprintf("service.%s.%s", service, operation)

	standardAttrs := []attribute.KeyValue{
		attribute.String("service.name", service),
		attribute.String("service.operation", operation),
		attribute.String("owner.id", ownerID),
		attribute.String("component", "service"),
	}

	return p.tracer.Start(ctx, spanName, trace.WithAttributes(append(standardAttrs, attrs...)...))
}

func (p *OTELProbe) RecordRepositoryOperation(ctx context.Context, operation string, entity string, duration time.Duration, err error) {
	span := trace.SpanFromContext(ctx)

	span.SetAttributes(
		attribute.Int64("duration_ns", duration.Nanoseconds()),
		attribute.Bool("has_error", err != nil),
	)

	if p.metrics != nil {
		p.metrics.RecordDatabaseOperation(ctx, operation, entity, err)
	}

	if operationResult(err) == "not_found" {
		p.logger.Info("Repository record not found",
			zap.String("operation", operation),
			zap.String("entity", entity),
			zap.Duration("duration", duration))

		return
	}

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)

		p.logger.Error("Repository operation failed",
			zap.String("operation", operation),
			zap.String("entity", entity),
			zap.Duration("duration", duration),
			zap.Error(err))

		return
	}

	span.SetStatus(codes.Ok, "")
}

func (p *OTELProbe) RecordServiceOperation(ctx context.Context, service string, operation string, ownerID string, duration time.Duration, err error) {
	span := trace.SpanFromContext(ctx)

	span.SetAttributes(
		attribute.Int64("duration_ns", duration.Nanoseconds()),
		attribute.Bool("has_error", err != nil),
	)

	if isClientError(err) {
		p.logger.Info("Service operation rejected",
			zap.String("service", service),
			zap.String("operation", operation),
			zap.String("owner_id", ownerID),
			zap.Error(err))

		return
	}

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)

		p.logger.Warn("Service operation failed",
			zap.String("service", service),
			zap.String("operation", operation),
			zap.String("owner_id", ownerID),
			zap.Duration("duration", duration),
			zap.Error(err))

		return
	}

	span.SetStatus(codes.Ok, "")
}

func (p *OTELProbe) RecordBusinessEvent(ctx context.Context, event string, entity string, entityID string, ownerID string) {
	trace.SpanFromContext(ctx).AddEvent(event, trace.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("entity.id", entityID),
		attribute.String("owner.id", ownerID),
	))

	if p.metrics != nil {
		p.metrics.RecordTodoOperation(ctx, event)
	}

	p.logger.Info("Business event recorded",
		zap.String("event", event),
		zap.String("entity", entity),
		zap.String("entity_id", entityID),
		zap.String("owner_id", ownerID))
}

func (p *OTELProbe) RecordAuthFailure(ctx context.Context, reason string) {
	if p.metrics != nil {
		p.metrics.RecordAuthFailure(ctx, reason)
	}
}

// RecordError marks the active span as failed and counts the server error.
// Logging is left to the caller, which has the request fields.
func (p *OTELProbe) RecordError(ctx context.Context, operation string, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	if p.metrics != nil {
		p.metrics.RecordServerError(ctx, operation)
	}
}

// isClientError reports errors caused by the caller's request rather than
// by the backend.
func isClientError(err error) bool {
	code, ok := domain.CodeOf(err)
	return ok && code != domain.ErrCodeStorage
}

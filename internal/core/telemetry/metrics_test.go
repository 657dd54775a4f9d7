package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestAppMetrics(t *testing.T) {
	ctx := context.Background()
	metrics := NewAppMetrics(prometheus.NewRegistry())

	metrics.RecordRequest(ctx, "GET", "/todos", "200", 15*time.Millisecond)
	metrics.RecordRequest(ctx, "GET", "/todos", "200", 5*time.Millisecond)
	metrics.RecordDatabaseOperation(ctx, "Create", "todo", nil)
	metrics.RecordDatabaseOperation(ctx, "Create", "todo", errors.New("boom"))
	metrics.RecordAuthFailure(ctx, "invalid_token")

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.requestTotal.WithLabelValues("GET", "/todos", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.databaseOperations.WithLabelValues("Create", "todo", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.databaseOperations.WithLabelValues("Create", "todo", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.authFailures.WithLabelValues("invalid_token")))
}

func TestOTELProbe_RecordsIntoMetrics(t *testing.T) {
	ctx := context.Background()
	metrics := NewAppMetrics(prometheus.NewRegistry())
	probe := NewOTELProbe(zap.NewNop(), metrics)

	ctx, span := probe.StartRepositorySpan(ctx, "Create", "todo", nil)
	probe.RecordRepositoryOperation(ctx, "Create", "todo", time.Millisecond, nil)
	probe.RecordBusinessEvent(ctx, "todo.created", "todo", "abc", "uid-1")
	probe.RecordAuthFailure(ctx, "missing_token")
	span.End()

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.databaseOperations.WithLabelValues("Create", "todo", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.todoOperations.WithLabelValues("todo.created")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.authFailures.WithLabelValues("missing_token")))
}

package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
	tel "todoapi/internal/core/telemetry"
)

// TodoRepository keeps todos in process memory. Insertion order is preserved
// so listing is stable across calls.
type TodoRepository struct {
	mu        sync.RWMutex
	items     map[string]domain.Todo
	order     []string
	telemetry port.Telemetry
}

func NewTodoRepository(telemetry port.Telemetry) *TodoRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoRepository{
		items:     make(map[string]domain.Todo),
		telemetry: telemetry,
	}
}

func (tr *TodoRepository) Create(ctx context.Context, todo domain.Todo) (created domain.Todo, err error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Create", "todo", []attribute.KeyValue{
		attribute.String("db.system", "memory"),
		attribute.String("user.id", todo.OwnerID),
	})
	defer span.End()

	op := tel.StartOperation(ctx, tr.telemetry, "Create", "todo")
	defer func() { op.End(err) }()

	if err = ctx.Err(); err != nil {
		return domain.Todo{}, domain.StorageError("failed to create todo", err)
	}

	tr.mu.Lock()
	defer tr.mu.Unlock()

	todo.ID = uuid.NewString()

	if todo.CreatedAt.IsZero() {
		todo.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	tr.items[todo.ID] = todo
	tr.order = append(tr.order, todo.ID)

	return todo, nil
}

func (tr *TodoRepository) ListByOwner(ctx context.Context, ownerID string) (todos []domain.Todo, err error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "ListByOwner", "todo", []attribute.KeyValue{
		attribute.String("db.system", "memory"),
		attribute.String("user.id", ownerID),
	})
	defer span.End()

	op := tel.StartOperation(ctx, tr.telemetry, "ListByOwner", "todo")
	defer func() { op.End(err) }()

	if err = ctx.Err(); err != nil {
		return nil, domain.StorageError("failed to list todos", err)
	}

	tr.mu.RLock()
	defer tr.mu.RUnlock()

	todos = make([]domain.Todo, 0)

	for _, id := range tr.order {
		if todo := tr.items[id]; todo.BelongsTo(ownerID) {
			todos = append(todos, todo)
		}
	}

	return todos, nil
}

func (tr *TodoRepository) Update(ctx context.Context, scope domain.TodoScope, input domain.TodoInput) (todo domain.Todo, err error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Update", "todo", []attribute.KeyValue{
		attribute.String("db.system", "memory"),
		attribute.String("todo.id", scope.ID),
	})
	defer span.End()

	op := tel.StartOperation(ctx, tr.telemetry, "Update", "todo")
	defer func() { op.End(err) }()

	if err = ctx.Err(); err != nil {
		return domain.Todo{}, domain.StorageError("failed to update todo", err)
	}

	tr.mu.Lock()
	defer tr.mu.Unlock()

	todo, ok := tr.items[scope.ID]

	if !ok || (scope.IsOwned() && !todo.BelongsTo(scope.OwnerID)) {
		return domain.Todo{}, domain.ErrTodoNotFound
	}

	todo.Apply(input)
	tr.items[scope.ID] = todo

	return todo, nil
}

func (tr *TodoRepository) Delete(ctx context.Context, scope domain.TodoScope) (err error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Delete", "todo", []attribute.KeyValue{
		attribute.String("db.system", "memory"),
		attribute.String("todo.id", scope.ID),
	})
	defer span.End()

	op := tel.StartOperation(ctx, tr.telemetry, "Delete", "todo")
	defer func() { op.End(err) }()

	if err = ctx.Err(); err != nil {
		return domain.StorageError("failed to delete todo", err)
	}

	tr.mu.Lock()
	defer tr.mu.Unlock()

	todo, ok := tr.items[scope.ID]

	if !ok || (scope.IsOwned() && !todo.BelongsTo(scope.OwnerID)) {
		return nil
	}

	delete(tr.items, scope.ID)

	for i, id := range tr.order {
		if id == scope.ID {
			tr.order = append(tr.order[:i], tr.order[i+1:]...)
			break
		}
	}

	return nil
}

func (tr *TodoRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

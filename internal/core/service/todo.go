package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
	"todoapi/internal/core/telemetry"
)

const todoServiceName = "todo"

// TodoService scopes every todo operation to the verified owner. It holds
// no todo state between calls; each call is resolved against the repository.
type TodoService struct {
	repo      port.TodoRepository
	telemetry port.Telemetry
	policy    domain.OwnershipPolicy
	now       func() time.Time
}

func NewTodoService(repo port.TodoRepository, probe port.Telemetry, policy domain.OwnershipPolicy) *TodoService {
	if probe == nil {
		probe = telemetry.NewNoOpProbe()
	}

	if policy == "" {
		policy = domain.OwnershipStrict
	}

	return &TodoService{
		repo:      repo,
		telemetry: probe,
		policy:    policy,
		now:       time.Now,
	}
}

func (ts *TodoService) Policy() domain.OwnershipPolicy {
	return ts.policy
}

func (ts *TodoService) Create(ctx context.Context, owner domain.Identity, input domain.TodoInput) (todo domain.Todo, err error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, todoServiceName, "Create", owner.Subject, nil)
	defer span.End()

	startTime := time.Now()
	defer func() {
		ts.telemetry.RecordServiceOperation(ctx, todoServiceName, "Create", owner.Subject, time.Since(startTime), err)
	}()

	newTodo, err := domain.NewTodo(owner, input, ts.now())

	if err != nil {
		return domain.Todo{}, err
	}

	todo, err = ts.repo.Create(ctx, newTodo)

	if err != nil {
		return domain.Todo{}, err
	}

	ts.telemetry.RecordBusinessEvent(ctx, "todo.created", "todo", todo.ID, owner.Subject)

	return todo, nil
}

func (ts *TodoService) List(ctx context.Context, owner domain.Identity) (todos []domain.Todo, err error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, todoServiceName, "List", owner.Subject, nil)
	defer span.End()

	startTime := time.Now()
	defer func() {
		ts.telemetry.RecordServiceOperation(ctx, todoServiceName, "List", owner.Subject, time.Since(startTime), err)
	}()

	if owner.IsZero() {
		return nil, domain.ErrUnauthenticated
	}

	todos, err = ts.repo.ListByOwner(ctx, owner.Subject)

	if err != nil {
		return nil, err
	}

	if todos == nil {
		todos = make([]domain.Todo, 0)
	}

	span.SetAttributes(attribute.Int("todo.count", len(todos)))

	return todos, nil
}

func (ts *TodoService) Update(ctx context.Context, owner domain.Identity, id string, input domain.TodoInput) (todo domain.Todo, err error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, todoServiceName, "Update", owner.Subject, []attribute.KeyValue{
		attribute.String("todo.id", id),
		attribute.String("todo.ownership_policy", string(ts.policy)),
	})
	defer span.End()

	startTime := time.Now()
	defer func() {
		ts.telemetry.RecordServiceOperation(ctx, todoServiceName, "Update", owner.Subject, time.Since(startTime), err)
	}()

	if owner.IsZero() {
		return domain.Todo{}, domain.ErrUnauthenticated
	}

	if id == "" {
		return domain.Todo{}, domain.ErrTodoNotFound
	}

	todo, err = ts.repo.Update(ctx, ts.policy.Scope(owner, id), input)

	if err != nil {
		return domain.Todo{}, err
	}

	ts.telemetry.RecordBusinessEvent(ctx, "todo.updated", "todo", todo.ID, owner.Subject)

	return todo, nil
}

// Delete succeeds whether or not a matching todo existed.
func (ts *TodoService) Delete(ctx context.Context, owner domain.Identity, id string) (err error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, todoServiceName, "Delete", owner.Subject, []attribute.KeyValue{
		attribute.String("todo.id", id),
		attribute.String("todo.ownership_policy", string(ts.policy)),
	})
	defer span.End()

	startTime := time.Now()
	defer func() {
		ts.telemetry.RecordServiceOperation(ctx, todoServiceName, "Delete", owner.Subject, time.Since(startTime), err)
	}()

	if owner.IsZero() {
		return domain.ErrUnauthenticated
	}

	if id == "" {
		return nil
	}

	if err = ts.repo.Delete(ctx, ts.policy.Scope(owner, id)); err != nil {
		return err
	}

	ts.telemetry.RecordBusinessEvent(ctx, "todo.deleted", "todo", id, owner.Subject)

	return nil
}

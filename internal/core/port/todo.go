package port

import (
	"context"

	"todoapi/internal/core/domain"
)

// TodoRepository persists todos. Implementations assign ids on Create,
// return todos in insertion order and report domain.ErrTodoNotFound from
// Update when the scope matches nothing. Delete never reports a missing todo.
type TodoRepository interface {
	Create(ctx context.Context, todo domain.Todo) (domain.Todo, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Todo, error)
	Update(ctx context.Context, scope domain.TodoScope, input domain.TodoInput) (domain.Todo, error)
	Delete(ctx context.Context, scope domain.TodoScope) error
	Ping(ctx context.Context) error
}

type TodoService interface {
	Create(ctx context.Context, owner domain.Identity, input domain.TodoInput) (domain.Todo, error)
	List(ctx context.Context, owner domain.Identity) ([]domain.Todo, error)
	Update(ctx context.Context, owner domain.Identity, id string, input domain.TodoInput) (domain.Todo, error)
	Delete(ctx context.Context, owner domain.Identity, id string) error
}

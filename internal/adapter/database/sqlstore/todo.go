// Package sqlstore is the todo repository shared by the SQL backends. The
// dialect only changes the placeholder format and the db.system label.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
	tel "todoapi/internal/core/telemetry"
)

const table = "todos"

var columns = []string{"id", "title", "description", "user_id", "completed", "created_at"}

type Dialect struct {
	System      string
	Placeholder sq.PlaceholderFormat
}

var (
	SQLite   = Dialect{System: "sqlite", Placeholder: sq.Question}
	Postgres = Dialect{System: "postgresql", Placeholder: sq.Dollar}
)

type TodoRepository struct {
	db        *sql.DB
	builder   sq.StatementBuilderType
	system    string
	telemetry port.Telemetry
}

func NewTodoRepository(db *sql.DB, dialect Dialect, telemetry port.Telemetry) *TodoRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoRepository{
		db:        db,
		builder:   sq.StatementBuilder.PlaceholderFormat(dialect.Placeholder),
		system:    dialect.System,
		telemetry: telemetry,
	}
}

func (tr *TodoRepository) spanAttrs(operation string, extra ...attribute.KeyValue) []attribute.KeyValue {
	return append([]attribute.KeyValue{
		attribute.String("db.system", tr.system),
		attribute.String("db.table", table),
		attribute.String("db.operation", operation),
	}, extra...)
}

func (tr *TodoRepository) Create(ctx context.Context, todo domain.Todo) (created domain.Todo, err error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Create", "todo", tr.spanAttrs("INSERT",
		attribute.String("user.id", todo.OwnerID),
	))
	defer span.End()

	op := tel.StartOperation(ctx, tr.telemetry, "Create", "todo")
	defer func() { op.End(err) }()

	todo.ID = uuid.NewString()

	query, args, err := tr.builder.Insert(table).
		Columns(columns...).
		Values(todo.ID, todo.Title, todo.Description, todo.OwnerID, todo.Completed, todo.CreatedAt.UTC()).
		ToSql()

	if err != nil {
		return domain.Todo{}, domain.StorageError("failed to build insert", err)
	}

	if _, err = tr.db.ExecContext(ctx, query, args...); err != nil {
		return domain.Todo{}, domain.StorageError("failed to create todo", err)
	}

	return todo, nil
}

func (tr *TodoRepository) ListByOwner(ctx context.Context, ownerID string) (todos []domain.Todo, err error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "ListByOwner", "todo", tr.spanAttrs("SELECT",
		attribute.String("user.id", ownerID),
	))
	defer span.End()

	op := tel.StartOperation(ctx, tr.telemetry, "ListByOwner", "todo")
	defer func() { op.End(err) }()

	query, args, err := tr.builder.Select(columns...).
		From(table).
		Where(sq.Eq{"user_id": ownerID}).
		OrderBy("seq ASC").
		ToSql()

	if err != nil {
		return nil, domain.StorageError("failed to build select", err)
	}

	rows, err := tr.db.QueryContext(ctx, query, args...)

	if err != nil {
		return nil, domain.StorageError("failed to list todos", err)
	}

	defer rows.Close()

	todos = make([]domain.Todo, 0)

	for rows.Next() {
		todo, scanErr := scanTodo(rows)

		if scanErr != nil {
			err = domain.StorageError("failed to read todo", scanErr)
			return nil, err
		}

		todos = append(todos, todo)
	}

	if err = rows.Err(); err != nil {
		return nil, domain.StorageError("failed to list todos", err)
	}

	span.SetAttributes(attribute.Int("db.rows_returned", len(todos)))

	return todos, nil
}

// Update writes the new fields and reads the row back inside one transaction.
func (tr *TodoRepository) Update(ctx context.Context, scope domain.TodoScope, input domain.TodoInput) (todo domain.Todo, err error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Update", "todo", tr.spanAttrs("UPDATE",
		attribute.String("todo.id", scope.ID),
		attribute.Bool("todo.owner_scoped", scope.IsOwned()),
	))
	defer span.End()

	op := tel.StartOperation(ctx, tr.telemetry, "Update", "todo")
	defer func() { op.End(err) }()

	where := scopeFilter(scope)

	query, args, err := tr.builder.Update(table).
		Set("title", input.Title).
		Set("description", input.Description).
		Where(where).
		ToSql()

	if err != nil {
		return domain.Todo{}, domain.StorageError("failed to build update", err)
	}

	tx, err := tr.db.BeginTx(ctx, nil)

	if err != nil {
		return domain.Todo{}, domain.StorageError("failed to begin transaction", err)
	}

	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, query, args...)

	if err != nil {
		return domain.Todo{}, domain.StorageError("failed to update todo", err)
	}

	affected, err := result.RowsAffected()

	if err != nil {
		return domain.Todo{}, domain.StorageError("failed to update todo", err)
	}

	if affected == 0 {
		return domain.Todo{}, domain.ErrTodoNotFound
	}

	selectQuery, selectArgs, err := tr.builder.Select(columns...).
		From(table).
		Where(sq.Eq{"id": scope.ID}).
		ToSql()

	if err != nil {
		return domain.Todo{}, domain.StorageError("failed to build select", err)
	}

	todo, err = scanTodo(tx.QueryRowContext(ctx, selectQuery, selectArgs...))

	if errors.Is(err, sql.ErrNoRows) {
		return domain.Todo{}, domain.ErrTodoNotFound
	}

	if err != nil {
		return domain.Todo{}, domain.StorageError("failed to read todo", err)
	}

	if err = tx.Commit(); err != nil {
		return domain.Todo{}, domain.StorageError("failed to commit update", err)
	}

	return todo, nil
}

func (tr *TodoRepository) Delete(ctx context.Context, scope domain.TodoScope) (err error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Delete", "todo", tr.spanAttrs("DELETE",
		attribute.String("todo.id", scope.ID),
		attribute.Bool("todo.owner_scoped", scope.IsOwned()),
	))
	defer span.End()

	op := tel.StartOperation(ctx, tr.telemetry, "Delete", "todo")
	defer func() { op.End(err) }()

	query, args, err := tr.builder.Delete(table).Where(scopeFilter(scope)).ToSql()

	if err != nil {
		return domain.StorageError("failed to build delete", err)
	}

	result, err := tr.db.ExecContext(ctx, query, args...)

	if err != nil {
		return domain.StorageError("failed to delete todo", err)
	}

	if affected, affErr := result.RowsAffected(); affErr == nil {
		span.SetAttributes(attribute.Int64("db.rows_affected", affected))
	}

	return nil
}

func (tr *TodoRepository) Ping(ctx context.Context) error {
	if err := tr.db.PingContext(ctx); err != nil {
		return domain.StorageError("database unreachable", err)
	}

	return nil
}

func scopeFilter(scope domain.TodoScope) sq.Eq {
	where := sq.Eq{"id": scope.ID}

	if scope.IsOwned() {
		where["user_id"] = scope.OwnerID
	}

	return where
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (domain.Todo, error) {
	var (
		todo      domain.Todo
		createdAt timestamp
	)

	if err := row.Scan(&todo.ID, &todo.Title, &todo.Description, &todo.OwnerID, &todo.Completed, &createdAt); err != nil {
		return domain.Todo{}, err
	}

	todo.CreatedAt = createdAt.Time

	return todo, nil
}

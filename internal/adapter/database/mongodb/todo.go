package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/otel/attribute"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
	tel "todoapi/internal/core/telemetry"
)

const DefaultCollection = "todos"

type todoDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	UserID      string             `bson:"userId"`
	Completed   bool               `bson:"completed"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d todoDocument) toDomain() domain.Todo {
	return domain.Todo{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		OwnerID:     d.UserID,
		Completed:   d.Completed,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

type TodoRepository struct {
	col       *mongo.Collection
	telemetry port.Telemetry
}

func NewTodoRepository(col *mongo.Collection, telemetry port.Telemetry) *TodoRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoRepository{col: col, telemetry: telemetry}
}

// EnsureIndexes creates the owner index used by listing.
func (tr *TodoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := tr.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "_id", Value: 1}},
	})

	if err != nil {
		return domain.StorageError("failed to create todo indexes", err)
	}

	return nil
}

func (tr *TodoRepository) spanAttrs(operation string, extra ...attribute.KeyValue) []attribute.KeyValue {
	return append([]attribute.KeyValue{
		attribute.String("db.system", "mongodb"),
		attribute.String("db.collection", tr.col.Name()),
		attribute.String("db.operation", operation),
	}, extra...)
}

func (tr *TodoRepository) Create(ctx context.Context, todo domain.Todo) (created domain.Todo, err error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Create", "todo", tr.spanAttrs("insertOne",
		attribute.String("user.id", todo.OwnerID),
	))
	defer span.End()

	op := tel.StartOperation(ctx, tr.telemetry, "Create", "todo")
	defer func() { op.End(err) }()

	doc := todoDocument{
		ID:          primitive.NewObjectID(),
		Title:       todo.Title,
		Description: todo.Description,
		UserID:      todo.OwnerID,
		Completed:   todo.Completed,
		CreatedAt:   todo.CreatedAt.UTC(),
	}

	if _, err = tr.col.InsertOne(ctx, doc); err != nil {
		return domain.Todo{}, domain.StorageError("failed to create todo", err)
	}

	return doc.toDomain(), nil
}

func (tr *TodoRepository) ListByOwner(ctx context.Context, ownerID string) (todos []domain.Todo, err error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "ListByOwner", "todo", tr.spanAttrs("find",
		attribute.String("user.id", ownerID),
	))
	defer span.End()

	op := tel.StartOperation(ctx, tr.telemetry, "ListByOwner", "todo")
	defer func() { op.End(err) }()

	cur, err := tr.col.Find(ctx, bson.M{"userId": ownerID}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))

	if err != nil {
		return nil, domain.StorageError("failed to list todos", err)
	}

	defer cur.Close(ctx)

	todos = make([]domain.Todo, 0)

	for cur.Next(ctx) {
		var doc todoDocument

		if err = cur.Decode(&doc); err != nil {
			return nil, domain.StorageError("failed to decode todo", err)
		}

		todos = append(todos, doc.toDomain())
	}

	if err = cur.Err(); err != nil {
		return nil, domain.StorageError("failed to list todos", err)
	}

	span.SetAttributes(attribute.Int("db.documents_returned", len(todos)))

	return todos, nil
}

func (tr *TodoRepository) Update(ctx context.Context, scope domain.TodoScope, input domain.TodoInput) (todo domain.Todo, err error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Update", "todo", tr.spanAttrs("findOneAndUpdate",
		attribute.String("todo.id", scope.ID),
		attribute.Bool("todo.owner_scoped", scope.IsOwned()),
	))
	defer span.End()

	op := tel.StartOperation(ctx, tr.telemetry, "Update", "todo")
	defer func() { op.End(err) }()

	filter, ok := scopeFilter(scope)

	if !ok {
		return domain.Todo{}, domain.ErrTodoNotFound
	}

	update := bson.M{"$set": bson.M{"title": input.Title, "description": input.Description}}

	var doc todoDocument

	err = tr.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Todo{}, domain.ErrTodoNotFound
	}

	if err != nil {
		return domain.Todo{}, domain.StorageError("failed to update todo", err)
	}

	return doc.toDomain(), nil
}

func (tr *TodoRepository) Delete(ctx context.Context, scope domain.TodoScope) (err error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Delete", "todo", tr.spanAttrs("deleteOne",
		attribute.String("todo.id", scope.ID),
		attribute.Bool("todo.owner_scoped", scope.IsOwned()),
	))
	defer span.End()

	op := tel.StartOperation(ctx, tr.telemetry, "Delete", "todo")
	defer func() { op.End(err) }()

	filter, ok := scopeFilter(scope)

	// An id that is not an ObjectID cannot match any document.
	if !ok {
		return nil
	}

	res, err := tr.col.DeleteOne(ctx, filter)

	if err != nil {
		return domain.StorageError("failed to delete todo", err)
	}

	span.SetAttributes(attribute.Int64("db.documents_deleted", res.DeletedCount))

	return nil
}

func (tr *TodoRepository) Ping(ctx context.Context) error {
	if err := tr.col.Database().Client().Ping(ctx, readpref.Primary()); err != nil {
		return domain.StorageError("database unreachable", err)
	}

	return nil
}

func scopeFilter(scope domain.TodoScope) (bson.M, bool) {
	oid, err := primitive.ObjectIDFromHex(scope.ID)

	if err != nil {
		return nil, false
	}

	filter := bson.M{"_id": oid}

	if scope.IsOwned() {
		filter["userId"] = scope.OwnerID
	}

	return filter, true
}

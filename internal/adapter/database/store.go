package database

import (
	"context"
	"database/sql"
	"fmt"

	"todoapi/internal/adapter/database/memory"
	"todoapi/internal/adapter/database/mongodb"
	"todoapi/internal/adapter/database/postgres"
	"todoapi/internal/adapter/database/sqlite"
	"todoapi/internal/adapter/database/sqlstore"
	"todoapi/internal/config"
	"todoapi/internal/core/port"
	"todoapi/pkg/tracing"
)

// Store is the todo repository selected by configuration together with
// whatever connection it owns.
type Store struct {
	Todos  port.TodoRepository
	driver string
	close  func(context.Context) error
}

func (s *Store) Driver() string {
	return s.driver
}

func (s *Store) Ping(ctx context.Context) error {
	return tracing.DatabaseSpanWrapper(ctx, s.driver, "todos", "ping", s.Todos.Ping)
}

func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}

	return s.close(ctx)
}

func Open(ctx context.Context, cfg config.StoreConfig, telemetry port.Telemetry) (*Store, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		return openMongo(ctx, cfg.Mongo, telemetry)
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, postgres.Options{URL: cfg.Postgres.URL})

		if err != nil {
			return nil, err
		}

		return sqlStore(cfg.Driver, db, sqlstore.Postgres, telemetry), nil
	case config.DriverSQLite:
		db, err := sqlite.Open(sqlite.Options{Path: cfg.SQLite.Path, LogQueries: cfg.LogQueries})

		if err != nil {
			return nil, err
		}

		return sqlStore(cfg.Driver, db, sqlstore.SQLite, telemetry), nil
	case config.DriverMemory:
		return &Store{Todos: memory.NewTodoRepository(telemetry), driver: cfg.Driver}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func openMongo(ctx context.Context, cfg config.MongoConfig, telemetry port.Telemetry) (*Store, error) {
	client, err := mongodb.Connect(ctx, mongodb.Options{
		URI:            cfg.URI,
		ConnectTimeout: cfg.Timeout,
	})

	if err != nil {
		return nil, err
	}

	collection := cfg.Collection

	if collection == "" {
		collection = mongodb.DefaultCollection
	}

	repo := mongodb.NewTodoRepository(client.Database(cfg.Database).Collection(collection), telemetry)

	if err := repo.EnsureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	return &Store{
		Todos:  repo,
		driver: config.DriverMongo,
		close:  client.Disconnect,
	}, nil
}

func sqlStore(driver string, db *sql.DB, dialect sqlstore.Dialect, telemetry port.Telemetry) *Store {
	return &Store{
		Todos:  sqlstore.NewTodoRepository(db, dialect, telemetry),
		driver: driver,
		close: func(context.Context) error {
			return db.Close()
		},
	}
}

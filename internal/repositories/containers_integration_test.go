//go:build integration

package repositories

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BradenHooton/teamup-users/internal/database"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// testStore is a running backend plus a reset hook for test isolation.
type testStore struct {
	name     string
	repo     userStore
	reset    func(ctx context.Context) error
	teardown func(ctx context.Context) error
}

// setupPostgresStore starts PostgreSQL, applies the embedded migrations and
// returns a repository on top of it.
func setupPostgresStore(ctx context.Context) (*testStore, error) {
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("teamup"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	repo := NewPostgresUserRepository(database.NewFromPool(pool, discardLogger), 5*time.Second, discardLogger)
	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &testStore{
		name: "postgres",
		repo: repo,
		reset: func(ctx context.Context) error {
			_, err := pool.Exec(ctx, "TRUNCATE TABLE users RESTART IDENTITY")
			return err
		},
		teardown: func(ctx context.Context) error {
			pool.Close()
			return container.Terminate(ctx)
		},
	}, nil
}

// setupMongoStore starts MongoDB and returns a repository with its indexes
// in place.
func setupMongoStore(ctx context.Context) (*testStore, error) {
	container, err := mongodb.RunContainer(ctx, testcontainers.WithImage("mongo:7"))
	if err != nil {
		return nil, fmt.Errorf("failed to start mongo container: %w", err)
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	coll := client.Database("TeamUp").Collection("Users")
	repo := NewMongoUserRepository(&database.MongoDB{Client: client, Collection: coll}, 5*time.Second, discardLogger)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = client.Disconnect(ctx)
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return &testStore{
		name: "mongo",
		repo: repo,
		reset: func(ctx context.Context) error {
			_, err := coll.DeleteMany(ctx, bson.M{})
			return err
		},
		teardown: func(ctx context.Context) error {
			_ = client.Disconnect(ctx)
			return container.Terminate(ctx)
		},
	}, nil
}

package cmd

import (
	"context"
	"fmt"

	"github.com/BradenHooton/teamup-users/internal/config"
	"github.com/BradenHooton/teamup-users/internal/database"
	"github.com/BradenHooton/teamup-users/internal/repositories"
	"github.com/BradenHooton/teamup-users/internal/services"
)

// userStore is the selected backend: the repository plus its connection.
type userStore struct {
	repo interface {
		services.UserRepository
		EnsureSchema(ctx context.Context) error
	}
	health interface {
		HealthCheck(ctx context.Context) error
	}
	closeFn func()
}

func (s *userStore) Close() { s.closeFn() }

func openStore(ctx context.Context) (*userStore, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		db, err := database.NewConnection(ctx, &cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return &userStore{
			repo:    repositories.NewPostgresUserRepository(db, cfg.Store.Timeout, logger),
			health:  db,
			closeFn: db.Close,
		}, nil

	case config.DriverMongo:
		db, err := database.NewMongoConnection(ctx, &cfg.Mongo, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		return &userStore{
			repo:    repositories.NewMongoUserRepository(db, cfg.Store.Timeout, logger),
			health:  db,
			closeFn: db.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

// Package store opens the configured record store and hands out its repositories.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oksasatya/go-ddd-todo/config"
	repo "github.com/oksasatya/go-ddd-todo/internal/domain/repository"
	mongoinfra "github.com/oksasatya/go-ddd-todo/internal/infrastructure/mongodb"
	pginfra "github.com/oksasatya/go-ddd-todo/internal/infrastructure/postgres"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Store struct {
	Driver string
	Users  repo.UserRepository
	Lists  repo.ListRepository
	Tasks  repo.TaskRepository

	PG    *pgxpool.Pool
	Mongo *mongo.Database

	mongoClient *mongo.Client
}

// Open connects to the store selected by cfg.StoreDriver. Postgres migrations
// run only when migrate is true.
func Open(ctx context.Context, cfg *config.Config, logger *logrus.Logger, migrate bool) (*Store, error) {
	switch cfg.StoreDriver {
	case DriverMongo:
		client, err := mongoinfra.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		db := client.Database(cfg.MongoDB)
		if err := mongoinfra.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		return &Store{
			Driver:      DriverMongo,
			Users:       mongoinfra.NewUserRepository(db),
			Lists:       mongoinfra.NewListRepository(db),
			Tasks:       mongoinfra.NewTaskRepository(db),
			Mongo:       db,
			mongoClient: client,
		}, nil
	case DriverPostgres, "":
		pool, err := pginfra.NewPool(ctx, pginfra.PoolOptions{
			DSN:         cfg.PostgresDSN(),
			AppName:     cfg.AppName,
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if migrate {
			if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrations: %w", err)
			}
		}
		return &Store{
			Driver: DriverPostgres,
			Users:  pginfra.NewUserRepository(pool),
			Lists:  pginfra.NewListRepository(pool),
			Tasks:  pginfra.NewTaskRepository(pool),
			PG:     pool,
		}, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

// Ping checks the underlying connection.
func (s *Store) Ping(ctx context.Context) error {
	if s.PG != nil {
		return s.PG.Ping(ctx)
	}
	if s.mongoClient != nil {
		return s.mongoClient.Ping(ctx, nil)
	}
	return fmt.Errorf("store not open")
}

func (s *Store) Close() {
	if s == nil {
		return
	}
	if s.PG != nil {
		s.PG.Close()
	}
	if s.mongoClient != nil {
		_ = s.mongoClient.Disconnect(context.Background())
	}
}

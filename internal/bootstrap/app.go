package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/civicbook/config"
	"github.com/Domenick1991/civicbook/internal/cache"
	"github.com/Domenick1991/civicbook/internal/kafka"
	"github.com/Domenick1991/civicbook/internal/logger"
	"github.com/Domenick1991/civicbook/internal/refcode"
	"github.com/Domenick1991/civicbook/internal/repository"
	"github.com/Domenick1991/civicbook/internal/service/catalog"
	"github.com/Domenick1991/civicbook/internal/service/submission"
	"github.com/Domenick1991/civicbook/internal/validation"
	"github.com/Domenick1991/civicbook/internal/workflow"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// App holds the wired services of one process.
type App struct {
	Config      *config.Config
	Log         *logger.Logger
	Store       repository.RecordStore
	Locker      cache.Locker
	Producer    *kafka.Producer
	Registry    *catalog.Registry
	Workflows   *workflow.Table
	Submissions *submission.Service
	Catalog     *catalog.CatalogService

	redis *redis.Client
}

func NewLogger(cfg *config.Config) *logger.Logger {
	return logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.Service,
	})
}

// Build wires every component from cfg. Any error is a startup failure.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (_ *App, err error) {
	app := &App{Config: cfg, Log: log}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	app.Workflows, err = workflow.NewTable(cfg.Workflows())
	if err != nil {
		return nil, fmt.Errorf("workflows: %w", err)
	}
	tariffs, err := cfg.Tariffs()
	if err != nil {
		return nil, fmt.Errorf("tariffs: %w", err)
	}
	app.Registry, err = catalog.NewRegistry(cfg.DomainResources())
	if err != nil {
		return nil, fmt.Errorf("resources: %w", err)
	}
	refs, err := refcode.NewGenerator(nil, cfg.Reference.SuffixLength)
	if err != nil {
		return nil, fmt.Errorf("reference generator: %w", err)
	}
	v, err := validation.NewRequestValidator(log)
	if err != nil {
		return nil, err
	}

	if cfg.Store.Driver == config.StoreRedis || cfg.Booking.Lock == config.LockRedis {
		app.redis = cache.NewRedisClient(cache.RedisOptions{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := app.redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
	}

	app.Store, err = openStore(ctx, cfg, app.redis)
	if err != nil {
		return nil, err
	}

	switch cfg.Booking.Lock {
	case config.LockRedis:
		app.Locker = cache.NewRedisLocker(app.redis, nil)
	default:
		app.Locker = cache.NewLocalLocker()
	}

	opts := []submission.ServiceOption{
		submission.WithLocker(app.Locker),
		submission.WithKeyPrefix(cfg.Store.KeyPrefix),
		submission.WithHistoryLimit(cfg.Store.HistoryLimit),
		submission.WithLockPolicy(cfg.Booking.LockTTL(), cfg.Booking.LockRetries, cfg.Booking.LockRetryDelay()),
	}
	if cfg.Kafka.Enabled {
		app.Producer = kafka.NewProducer(cfg.Kafka.Brokers, log)
		opts = append(opts, submission.WithProducer(app.Producer, cfg.Kafka.EventsTopic))
	}

	policy := submission.Policy{
		Workflows: app.Workflows,
		Tariffs:   tariffs,
		Prefixes:  cfg.Prefixes(),
	}
	app.Submissions = submission.NewService(app.Store, app.Registry, policy, refs, v, log, opts...)
	app.Catalog = catalog.NewCatalogService(app.Registry, app.Store, app.Workflows.Occupying, cfg.Store.KeyPrefix)

	log.Info("Application wired",
		"store", cfg.Store.Driver,
		"lock", cfg.Booking.Lock,
		"categories", len(cfg.Categories),
		"resources", len(cfg.Resources),
		"events", cfg.Kafka.Enabled,
	)
	return app, nil
}

func openStore(ctx context.Context, cfg *config.Config, client *redis.Client) (repository.RecordStore, error) {
	switch cfg.Store.Driver {
	case config.StoreMemory:
		return repository.NewMemoryStore(), nil
	case config.StoreSQLite:
		store, err := repository.OpenSQLite(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StoreRedis:
		return repository.NewRedisStore(client), nil
	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		store := repository.NewPGRecordStore(pool)
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func (a *App) Close() error {
	var errs []error
	if a.Producer != nil {
		errs = append(errs, a.Producer.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	return errors.Join(errs...)
}

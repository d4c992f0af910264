// Package app builds the long-lived collaborators from configuration and
// owns their lifetimes.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"go-join-pipeline/internal/archive"
	"go-join-pipeline/internal/config"
	"go-join-pipeline/internal/pipeline"
	"go-join-pipeline/internal/queue"
	"go-join-pipeline/internal/store"
	"go-join-pipeline/internal/taskstatus"
)

// memoryQueueSize is the buffer of the in-process broker.
const memoryQueueSize = 1024

type App struct {
	Config  config.Config
	Logger  *log.Logger
	Store   store.Store
	Broker  queue.Broker
	Backend queue.Backend
	Tasks   *queue.Client
	Status  *taskstatus.Gateway
	Archive archive.Archiver
	Joiner  *pipeline.Joiner
}

// New connects everything cfg selects. On error whatever was already opened
// is closed again.
func New(ctx context.Context, cfg config.Config, logger *log.Logger) (_ *App, err error) {
	if logger == nil {
		logger = log.Default()
	}
	a := &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if a.Store, err = openStore(cfg); err != nil {
		return nil, err
	}
	logger.Printf("🗄️ dataset store: %s", cfg.StoreDriver)

	if a.Backend, err = openBackend(ctx, cfg); err != nil {
		return nil, err
	}
	if a.Broker, err = openBroker(cfg); err != nil {
		return nil, err
	}
	logger.Printf("📬 task queue: broker=%s backend=%s", cfg.QueueBroker, cfg.ResultBackend)

	a.Archive = archive.Nop{}
	if cfg.ArchiveEnabled() {
		s3, err := archive.NewS3Archive(archive.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
		})
		if err != nil {
			return nil, err
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			// uploads still work, only the copy is lost
			logger.Printf("⚠️ upload archive unavailable: %v", err)
		}
		a.Archive = s3
		logger.Printf("🪣 upload archive: %s/%s", cfg.S3Endpoint, cfg.S3Bucket)
	}

	a.Tasks = queue.NewClient(a.Broker, a.Backend, queue.RetryConfig{})
	a.Status = taskstatus.NewGateway(a.Tasks)
	a.Joiner = pipeline.NewJoiner(a.Store, pipeline.NewHTTPFetcher(http.DefaultClient), logger)
	return a, nil
}

// NewWorker returns a worker pool with the join handler registered.
func (a *App) NewWorker() *queue.Worker {
	w := queue.NewWorker(a.Broker, a.Backend, a.Config.WorkerConcurrency, a.Logger)
	w.Register(pipeline.JoinTaskName, a.Joiner.Handle)
	return w
}

// Close releases the broker, then the result backend, then the store. The
// HTTP server and workers must already be stopped.
func (a *App) Close() error {
	var errs []error
	if a.Broker != nil {
		if err := a.Broker.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close broker: %w", err))
		}
	}
	if a.Backend != nil {
		if err := a.Backend.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close result backend: %w", err))
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	return errors.Join(errs...)
}

func openStore(cfg config.Config) (store.Store, error) {
	// avoid handing back a typed nil inside the interface
	if cfg.StoreDriver == config.DriverPostgres {
		s, err := store.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := store.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openBackend(ctx context.Context, cfg config.Config) (queue.Backend, error) {
	switch cfg.ResultBackend {
	case config.BackendRedis:
		client, err := queue.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return queue.NewRedisBackend(client, cfg.TaskResultTTL), nil
	default:
		return queue.NewMemoryBackend(cfg.TaskResultTTL), nil
	}
}

func openBroker(cfg config.Config) (queue.Broker, error) {
	if cfg.QueueBroker != config.BrokerRabbitMQ {
		return queue.NewMemoryBroker(memoryQueueSize), nil
	}
	b, err := queue.DialRabbit(queue.RabbitConfig{
		URL:        cfg.RabbitMQURL,
		Exchange:   cfg.RabbitMQExchange,
		RoutingKey: pipeline.JoinTaskName,
		Queue:      cfg.RabbitMQQueue,
		Prefetch:   cfg.WorkerConcurrency,
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Package server assembles the store, sinks, service and router from config.
package server

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"demo/interview/internal/aws"
	"demo/interview/internal/config"
	"demo/interview/internal/events"
	"demo/interview/internal/handlers"
	"demo/interview/internal/metrics"
	"demo/interview/internal/service"
	"demo/interview/internal/store"
	"demo/interview/internal/store/dynamo"
)

type backend interface {
	store.Repository
	store.ProfileRepository
}

type App struct {
	Service *service.Service
	Router  *gin.Engine
	closers []func()
}

// Build connects everything cfg selects. Call Close when done.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{}

	var clients *aws.AWSClients
	if cfg.NeedsAWS() {
		var err error
		clients, err = aws.NewAWSClients(ctx, cfg.AWSRegion, cfg.AWSEndpoint)
		if err != nil {
			return nil, err
		}
	}

	repo, err := app.openBackend(ctx, cfg, clients)
	if err != nil {
		app.Close()
		return nil, err
	}

	opts := []service.Option{
		service.WithPublisher(app.publisher(cfg, clients)),
		service.WithMetrics(metricsRecorder(cfg, clients)),
	}
	app.Service = service.New(repo, repo, opts...)
	app.Router = handlers.NewRouter(app.Service, app.Service, log.Default())
	return app, nil
}

func (a *App) openBackend(ctx context.Context, cfg config.Config, clients *aws.AWSClients) (backend, error) {
	switch cfg.Backend {
	case config.BackendDynamoDB:
		log.Printf("store: dynamodb tables=%s,%s,%s", cfg.OrdersTable, cfg.TagsTable, cfg.ProfilesTable)
		return dynamo.NewStore(clients.DynamoDB, dynamo.Tables{
			Orders:   cfg.OrdersTable,
			Tags:     cfg.TagsTable,
			Profiles: cfg.ProfilesTable,
		}), nil
	default:
		if err := store.Migrate(cfg.DBDSN); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		pool, err := pgxpool.New(ctx, cfg.DBDSN)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("db ping: %w", err)
		}
		log.Printf("store: postgres")
		return store.New(pool), nil
	}
}

func (a *App) publisher(cfg config.Config, clients *aws.AWSClients) events.Publisher {
	switch cfg.EventSink {
	case config.SinkKafka:
		w := events.NewKafkaWriter(cfg.KafkaBrokers, cfg.EventsTopic)
		a.closers = append(a.closers, func() {
			if err := w.Close(); err != nil {
				log.Printf("close events writer: %v", err)
			}
		})
		log.Printf("events: kafka brokers=%v topic=%s", cfg.KafkaBrokers, cfg.EventsTopic)
		return events.NewKafkaPublisher(w, "orders-service")
	case config.SinkSQS:
		log.Printf("events: sqs queue=%s", cfg.EventsQueueURL)
		return events.NewSQSPublisher(clients.SQS, cfg.EventsQueueURL)
	default:
		return events.Nop{}
	}
}

func metricsRecorder(cfg config.Config, clients *aws.AWSClients) metrics.Recorder {
	if cfg.MetricsSink == config.SinkCloudWatch {
		return metrics.NewCloudWatch(clients.CloudWatch, cfg.MetricsNamespace)
	}
	return metrics.Nop{}
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

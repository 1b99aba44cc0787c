package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/ice-lfernandes/spring-boot-arconia/internal/books"
	"github.com/ice-lfernandes/spring-boot-arconia/internal/cache"
	"github.com/ice-lfernandes/spring-boot-arconia/internal/config"
	"github.com/ice-lfernandes/spring-boot-arconia/internal/events"
)

type App struct {
	httpServer *http.Server
	infra      *Infra
	publisher  *events.Publisher
	consumer   *events.Consumer
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, err
	}

	publisher := events.NewPublisher(infra.Broker.JS, cfg.EventsTopic)

	consumer := events.NewConsumer(infra.Broker.JS, events.ConsumerConfig{
		Stream:  cfg.EventsStream,
		Topic:   cfg.EventsTopic,
		Group:   cfg.EventsConsumerGroup,
		Handler: events.LogHandler{},
	})
	if err := consumer.Start(ctx); err != nil {
		_ = infra.Close()
		return nil, err
	}

	bookService := books.NewService(books.NewSQLRepository(infra.DB), publisher)
	cacheService := cache.NewService(
		cache.NewRedisSessionStore(infra.Redis.Client),
		cache.NewRedisValueStore(infra.Redis.Client),
	)

	server := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: newRouter(bookService, cacheService),
	}

	return &App{
		httpServer: server,
		infra:      infra,
		publisher:  publisher,
		consumer:   consumer,
	}, nil
}

func (a *App) Run() error {
	if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, stops the consumer, waits for pending
// publish acks and then closes the infrastructure.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error

	if err := a.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}

	a.consumer.Stop()

	if err := a.publisher.Close(ctx); err != nil {
		errs = append(errs, err)
	}

	if err := a.infra.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

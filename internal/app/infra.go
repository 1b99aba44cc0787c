package app

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/ice-lfernandes/spring-boot-arconia/internal/broker"
	"github.com/ice-lfernandes/spring-boot-arconia/internal/config"
	"github.com/ice-lfernandes/spring-boot-arconia/internal/db"
	"github.com/ice-lfernandes/spring-boot-arconia/internal/events"
	"github.com/ice-lfernandes/spring-boot-arconia/internal/logger"
	"github.com/ice-lfernandes/spring-boot-arconia/internal/redis"
)

type Infra struct {
	DB     *sqlx.DB
	Redis  *redis.Client
	Broker *broker.Client
}

func setupInfra(ctx context.Context, cfg config.Config) (_ *Infra, err error) {
	infra := &Infra{}
	defer func() {
		if err != nil {
			_ = infra.Close()
		}
	}()

	infra.DB, err = db.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(infra.DB, cfg.DatabaseDriver); err != nil {
		return nil, err
	}

	logger.Info("database ready", map[string]any{"driver": cfg.DatabaseDriver})

	infra.Redis, err = redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}

	logger.Info("redis ready", map[string]any{"addr": cfg.RedisAddr})

	infra.Broker, err = broker.New(cfg.NatsURL)
	if err != nil {
		return nil, err
	}

	if err := events.EnsureStream(ctx, infra.Broker.JS, cfg.EventsStream, cfg.EventsTopic); err != nil {
		return nil, err
	}

	logger.Info("event stream ready", map[string]any{
		"stream": cfg.EventsStream,
		"topic":  cfg.EventsTopic,
	})

	return infra, nil
}

// Close releases whatever was opened, broker first.
func (i *Infra) Close() error {
	var errs []error
	if i.Broker != nil {
		if err := i.Broker.Drain(); err != nil {
			errs = append(errs, err)
		}
	}
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if i.DB != nil {
		if err := i.DB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

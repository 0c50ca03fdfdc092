// Package app arma el State a partir de la configuración; lo comparten el
// servidor y la CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ecobazaarx/internal/config"
	"ecobazaarx/internal/events"
	"ecobazaarx/internal/market"
	"ecobazaarx/internal/repository"
)

// ErrEphemeralStore indica un driver que no sobrevive al proceso
var ErrEphemeralStore = errors.New("store driver does not persist across runs")

// RequireDurableStore rechaza el driver en memoria para comandos cuyo único
// efecto es escribir en el almacenamiento
func RequireDurableStore(cfg *config.Config) error {
	if cfg.StoreDriver == config.DriverMemory || cfg.StoreDriver == "" {
		return fmt.Errorf("%w: set STORE_DRIVER to %s, %s or %s",
			ErrEphemeralStore, config.DriverSQLite, config.DriverMongo, config.DriverRedis)
	}
	return nil
}

// OpenPersister abre el backend elegido por STORE_DRIVER
func OpenPersister(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.Persister, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := repository.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Warn("Mongo disconnect failed", "error", err)
			}
		}
		return repository.NewMongoPersister(client.Database(cfg.MongoDB), logger), closeFn, nil

	case config.DriverSQLite:
		p, err := repository.NewSQLitePersister(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		return p, func() { p.Close() }, nil

	case config.DriverRedis:
		client, err := repository.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRedisPersister(client, cfg.RedisKey, logger), func() { client.Close() }, nil

	case config.DriverMemory, "":
		return repository.NewMemoryPersister(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// NewPublisher usa Kafka si hay brokers configurados; si no, sólo loguea
func NewPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (events.Publisher, func(), error) {
	if len(cfg.KafkaBrokers) == 0 {
		return events.NewLogPublisher(logger), func() {}, nil
	}
	p, err := events.NewKafkaPublisher(ctx, cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := p.Close(); err != nil {
			logger.Warn("Kafka producer close failed", "error", err)
		}
	}
	return p, closeFn, nil
}

// NewState conecta persistencia y eventos, restaura el último snapshot y
// carga los datos de demo si SEED_DEMO está activo.
func NewState(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*market.State, func(), error) {
	persister, closePersister, err := OpenPersister(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	publisher, closePublisher, err := NewPublisher(ctx, cfg, logger)
	if err != nil {
		closePersister()
		return nil, nil, fmt.Errorf("connect kafka: %w", err)
	}
	closeAll := func() {
		closePublisher()
		closePersister()
	}

	state := market.New(
		market.WithPersister(persister),
		market.WithPublisher(publisher),
		market.WithLogger(logger),
		market.WithCheckoutPolicy(market.CheckoutPolicy(cfg.CheckoutPolicy)),
		market.WithBcryptCost(cfg.BcryptCost),
	)

	if err := state.Restore(ctx); err != nil {
		closeAll()
		return nil, nil, err
	}

	if cfg.SeedDemo {
		if _, err := state.SeedDemo(ctx, ""); err != nil {
			closeAll()
			return nil, nil, errors.Join(errors.New("seed demo data"), err)
		}
	}
	return state, closeAll, nil
}

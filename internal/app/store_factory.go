package app

import (
	"context"
	"fmt"
	"io"

	"github.com/felixgeelhaar/markpro/internal/licensing/domain"
	"github.com/felixgeelhaar/markpro/internal/licensing/infrastructure/persistence"
	"github.com/felixgeelhaar/markpro/pkg/config"
)

// SlotStore is the slot store the container hands to every service.
// Backends that hold connections also implement io.Closer.
type SlotStore interface {
	domain.SlotStore
	domain.Pinger
}

// NewSlotStore opens the slot store selected by cfg.Storage.
func NewSlotStore(ctx context.Context, cfg *config.Config) (SlotStore, error) {
	switch cfg.Storage {
	case config.StorageFile, "":
		return persistence.NewFileSlotStore(cfg.SlotStorePath()), nil

	case config.StorageSQLite:
		db, err := persistence.OpenSQLite(ctx, cfg.SlotStorePath())
		if err != nil {
			return nil, err
		}
		store, err := persistence.NewSQLiteSlotStore(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return store, nil

	case config.StorageRedis:
		client, err := persistence.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		store := persistence.NewRedisSlotStore(client, cfg.Namespace)
		if err := store.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		return store, nil

	case config.StoragePostgres:
		pool, err := persistence.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store, err := persistence.NewPostgresSlotStore(ctx, pool, cfg.Namespace)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Storage)
	}
}

func closeStore(store SlotStore) error {
	if c, ok := store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

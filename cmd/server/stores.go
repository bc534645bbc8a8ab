package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/config"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/database"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/logging"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/store"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/store/memstore"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/store/mongostore"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/store/pgstore"
)

// openStores connects the backend named by STORE_DRIVER. The log sink is
// only available with Postgres and is nil otherwise.
func openStores(ctx context.Context, cfg *config.Config) (store.Stores, logging.Sink, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		if err := database.Connect(cfg); err != nil {
			return store.Stores{}, nil, err
		}
		if err := database.Migrate(); err != nil {
			return store.Stores{}, nil, fmt.Errorf("migration failed: %w", err)
		}
		return pgstore.New(database.DB), logging.NewGormSink(database.DB), nil

	case config.DriverMongo:
		_, db, err := database.ConnectMongo(ctx, cfg)
		if err != nil {
			return store.Stores{}, nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			return store.Stores{}, nil, fmt.Errorf("index creation failed: %w", err)
		}
		return mongostore.New(db), nil, nil

	case config.DriverMemory:
		slog.Warn("using in-memory store, data is lost on restart")
		return memstore.New(), nil, nil
	}
	return store.Stores{}, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

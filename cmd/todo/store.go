package main

import (
	"context"
	"fmt"
	"log/slog"

	"swipetodo/internal/config"
	"swipetodo/internal/db"
	"swipetodo/internal/notes"
)

// openStore builds the record store for the configured backend. The
// returned close function releases the backend connection.
func openStore(ctx context.Context, c *config.Config, logger *slog.Logger) (*notes.Store, func(context.Context), error) {
	noop := func(context.Context) {}

	switch c.Store.Backend {
	case config.BackendMemory:
		logger.Info("using in-memory store; notes are lost on exit")
		return notes.NewStore(notes.NewMemoryKV(), c.Store.Key), noop, nil

	case config.BackendMongo:
		ctx, cancel := context.WithTimeout(ctx, c.StoreTimeout())
		defer cancel()

		logger.Info("connecting to MongoDB", "database", c.Store.MongoDatabase)
		database, err := db.Connect(ctx, c.Store.MongoURI, c.Store.MongoDatabase)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to MongoDB: %w", err)
		}
		logger.Info("connected to MongoDB")
		closeFn := func(ctx context.Context) {
			if err := db.Close(ctx, database); err != nil {
				logger.Warn("failed to disconnect from MongoDB", "error", err)
			}
		}
		return notes.NewStore(notes.NewMongoKV(database), c.Store.Key), closeFn, nil

	default:
		kv, err := notes.NewFileKV(c.Store.Dir)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using file store", "dir", c.Store.Dir)
		return notes.NewStore(kv, c.Store.Key), noop, nil
	}
}

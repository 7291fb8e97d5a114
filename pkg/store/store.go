package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xhad/shopsearch/internal/types"
	"github.com/xhad/shopsearch/pkg/config"
)

// New opens the collection store selected by cfg.Type.
func New(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (types.CollectionStore, error) {
	switch cfg.Type {
	case "pgvector":
		vs, err := NewWithConfig(ctx, VectorStoreConfig{
			ConnString: cfg.URL,
			VectorDim:  cfg.VectorDim,
			IndexLists: cfg.IndexLists,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		return vs, nil
	case "redis":
		rs, err := NewRedisStore(ctx, RedisStoreConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Logger:   logger,
		})
		if err != nil {
			return nil, err
		}
		return rs, nil
	case "memory":
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
}

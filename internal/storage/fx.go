package storage

import (
	"context"

	"github.com/heysheet/heysheet/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("storage",
	fx.Provide(provideStore),
	fx.Provide(NewUploader),
)

func provideStore(cfg config.Config, log *zap.Logger) (ObjectStore, error) {
	store, err := NewS3Store(context.Background(), cfg.Storage)
	if err != nil {
		return nil, err
	}
	if store == nil {
		log.Warn("object storage not configured; file uploads disabled")
	}
	return store, nil
}

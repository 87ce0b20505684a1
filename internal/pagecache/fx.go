package pagecache

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/billfold/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Provide(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) Cache {
	if cfg.RedisAddr == "" {
		log.Info("page cache using in-memory store")
		return NewMemory()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = ctx
			return client.Close()
		},
	})

	log.Info("page cache using redis", zap.String("addr", cfg.RedisAddr))
	return NewRedis(client)
}

var Module = fx.Module("pagecache",
	fx.Provide(Provide),
)

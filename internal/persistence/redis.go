package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bootstrap/internal/config"
)

const redisDialCheckTimeout = 2 * time.Second

var errRedisNotConfigured = errors.New("redis client not configured")

// Redis holds the client used for the readiness probe and the published
// settings snapshot.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds the client. An unreachable server is only logged: the
// snapshot is optional and readiness reports the outage.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisDialCheckTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable; settings snapshot disabled until it recovers",
			zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr))
	}

	return &Redis{Client: client}
}

func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping is used by /health/ready.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errRedisNotConfigured
	}
	return r.Client.Ping(ctx).Err()
}

// HSet writes the given fields into the hash at key.
func (r *Redis) HSet(ctx context.Context, key string, fields map[string]interface{}) error {
	if r == nil || r.Client == nil {
		return errRedisNotConfigured
	}
	return r.Client.HSet(ctx, key, fields).Err()
}

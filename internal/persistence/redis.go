package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tillwork/posadmin/internal/config"
)

// ErrRedisNotConfigured is returned by Ping when every backend is in memory.
var ErrRedisNotConfigured = errors.New("redis client not configured")

// Redis holds the one client shared by the session store and the branch
// cache, so both see the same connection pool and timeouts.
type Redis struct {
	Client *redis.Client
	addr   string
}

// NeedsRedis reports whether any configured backend lives in Redis.
func NeedsRedis(cfg *config.Config) bool {
	return cfg.Session.Backend == "redis" || cfg.BranchCache.Backend == "redis"
}

// NewRedis builds the client and pings it once within the configured
// timeout. An unreachable server is logged, not fatal: sessions fail per
// request and readiness reports it until Redis comes up.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	timeout := cfg.Timeout()
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})
	r := &Redis{Client: client, addr: cfg.Addr}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := r.Ping(ctx); err != nil {
		logger.Warn("redis unavailable at startup", zap.Error(err))
	} else {
		logger.Info("redis ready", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	}
	return r
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping checks connectivity for the readiness probe.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return ErrRedisNotConfigured
	}
	if err := r.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis %s: %w", r.addr, err)
	}
	return nil
}

// Package cache provides a Redis cache-aside layer for profile existence
// checks. A nil *ProfileCache, or one without a client, never caches.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pawelsloboda5/draft-spark-compose/internal/logging"
)

const hasProfileKeyPrefix = "draftspark:has_profile:%s"

// DefaultTTL matches how long clients treat a profile check as fresh.
const DefaultTTL = 5 * time.Minute

func HasProfileKey(userID string) string {
	return fmt.Sprintf(hasProfileKeyPrefix, userID)
}

// ProfileCache caches whether a user has a profile.
type ProfileCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewProfileCache wraps client. A nil client yields a pass-through cache.
func NewProfileCache(client *redis.Client, ttl time.Duration) *ProfileCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ProfileCache{client: client, ttl: ttl, log: logging.Named("cache")}
}

// Connect parses a redis URL (or bare host:port) and pings it. An empty
// address, or an unreachable server, returns a nil client and the service
// continues without the cache.
func Connect(ctx context.Context, addr string) *redis.Client {
	if addr == "" {
		return nil
	}
	log := logging.Named("cache")

	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			log.Warn("invalid redis url, continuing without cache", zap.Error(err))
			return nil
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unreachable, continuing without cache", zap.Error(err))
		_ = client.Close()
		return nil
	}
	log.Info("redis connected", zap.String("addr", opts.Addr))
	return client
}

// Enabled reports whether a redis client backs the cache.
func (c *ProfileCache) Enabled() bool {
	return c != nil && c.client != nil
}

// HasProfile returns the cached answer for userID, calling load on a miss
// and storing its result. Redis failures fall through to load.
func (c *ProfileCache) HasProfile(ctx context.Context, userID string, load func(context.Context) (bool, error)) (bool, error) {
	if !c.Enabled() {
		return load(ctx)
	}

	key := HasProfileKey(userID)
	val, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		return val == "1", nil
	case !errors.Is(err, redis.Nil):
		c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	has, err := load(ctx)
	if err != nil {
		return false, err
	}

	stored := "0"
	if has {
		stored = "1"
	}
	if err := c.client.Set(ctx, key, stored, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return has, nil
}

// Invalidate drops the cached answer for userID.
func (c *ProfileCache) Invalidate(ctx context.Context, userID string) {
	if !c.Enabled() {
		return
	}
	if err := c.client.Del(ctx, HasProfileKey(userID)).Err(); err != nil {
		c.log.Warn("cache invalidate failed", zap.String("user_id", userID), zap.Error(err))
	}
}

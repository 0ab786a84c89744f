// Package cache keeps positive subscription checks in Redis so repeated
// button presses do not hit the Telegram API every time.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"refcontest/internal/config"
	"refcontest/lib/sl"
)

const keyPrefix = "refcontest:sub:"

type SubscriptionChecker interface {
	IsSubscribed(ctx context.Context, userID int64) bool
}

// NewClient connects to Redis. Returns nil if the URL is empty (Redis not configured).
func NewClient(ctx context.Context, conf config.RedisConfig) (*redis.Client, error) {
	if conf.URL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(conf.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err = client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// SubscriptionCache decorates a SubscriptionChecker. Only "subscribed" answers are cached:
// a user who just joined the channel must not be told to subscribe again.
type SubscriptionCache struct {
	next   SubscriptionChecker
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

func NewSubscriptionCache(next SubscriptionChecker, client *redis.Client, ttl time.Duration, log *slog.Logger) *SubscriptionCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &SubscriptionCache{
		next:   next,
		client: client,
		ttl:    ttl,
		log:    log.With(sl.Module("cache.subscription")),
	}
}

func key(userID int64) string {
	return keyPrefix + strconv.FormatInt(userID, 10)
}

// IsSubscribed answers from Redis when possible; Redis failures fall through to the checker.
func (c *SubscriptionCache) IsSubscribed(ctx context.Context, userID int64) bool {
	_, err := c.client.Get(ctx, key(userID)).Result()
	if err == nil {
		return true
	}
	if !errors.Is(err, redis.Nil) {
		c.log.Warn("cache read", sl.Err(err))
	}

	if !c.next.IsSubscribed(ctx, userID) {
		return false
	}
	if err = c.client.Set(ctx, key(userID), "1", c.ttl).Err(); err != nil {
		c.log.Warn("cache write", sl.Err(err))
	}
	return true
}

package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"refcontest/internal/config"
	"refcontest/internal/contest/mocks"
)

func TestNewClient_Disabled(t *testing.T) {
	client, err := NewClient(context.Background(), config.RedisConfig{})
	assert.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewClient_BadURL(t *testing.T) {
	_, err := NewClient(context.Background(), config.RedisConfig{URL: "http://nope"})
	assert.Error(t, err)
}

func TestSubscriptionCache_RedisDownFallsThrough(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	ctrl := gomock.NewController(t)
	checker := mocks.NewMockSubscriptionChecker(ctrl)
	checker.EXPECT().IsSubscribed(gomock.Any(), int64(5)).Return(true)
	checker.EXPECT().IsSubscribed(gomock.Any(), int64(6)).Return(false)

	cache := NewSubscriptionCache(checker, client, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.True(t, cache.IsSubscribed(context.Background(), 5))
	assert.False(t, cache.IsSubscribed(context.Background(), 6))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "refcontest:sub:42", key(42))
}

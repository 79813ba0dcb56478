package redis

import (
	"context"
	"testing"
	"time"

	groupdomain "alianca-go/internal/domain/group"
	"alianca-go/pkg/logger"
	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unreachableClient() *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestGroupCacheTreatsUnreachableRedisAsMiss(t *testing.T) {
	client := unreachableClient()
	defer client.Close()
	cache := NewGroupCache(client, logger.Discard())
	ctx := context.Background()

	cache.SetByUserID(ctx, "u1", &groupdomain.Group{ID: "g1"}, time.Minute)
	got, ok := cache.GetByUserID(ctx, "u1")
	assert.False(t, ok)
	assert.Nil(t, got)

	cache.DeleteByUserID(ctx, "u1")
	cache.Clear(ctx)
}

func TestGroupCacheKeyPrefix(t *testing.T) {
	cache := NewGroupCache(unreachableClient(), nil)
	assert.Equal(t, "alianca:group:user:u1", cache.key("u1"))

	custom := NewGroupCache(unreachableClient(), nil, WithKeyPrefix("test:"))
	assert.Equal(t, "test:u1", custom.key("u1"))

	kept := NewGroupCache(unreachableClient(), nil, WithKeyPrefix(""))
	assert.Equal(t, defaultKeyPrefix+"u1", kept.key("u1"))
}

func TestNewClientParsesURL(t *testing.T) {
	client, err := NewClient("redis://:secret@localhost:6380/2")
	require.NoError(t, err)
	defer client.Close()

	opts := client.Options()
	assert.Equal(t, "localhost:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	_, err = NewClient("http://nope")
	assert.Error(t, err)
}

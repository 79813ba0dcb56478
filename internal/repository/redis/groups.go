package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	groupdomain "alianca-go/internal/domain/group"
	"alianca-go/pkg/logger"
	goredis "github.com/go-redis/redis/v8"
)

const defaultKeyPrefix = "alianca:group:user:"

// GroupCache stores resolved groups in Redis so several API instances share
// the same resolution. Every failure is logged and treated as a miss.
type GroupCache struct {
	client goredis.UniversalClient
	prefix string
	log    logger.Logger
}

type Option func(*GroupCache)

func WithKeyPrefix(prefix string) Option {
	return func(c *GroupCache) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

func NewGroupCache(client goredis.UniversalClient, log logger.Logger, opts ...Option) *GroupCache {
	if log == nil {
		log = logger.Discard()
	}
	c := &GroupCache{client: client, prefix: defaultKeyPrefix, log: log}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClient parses a redis:// URL.
func NewClient(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func (c *GroupCache) GetByUserID(ctx context.Context, userID string) (*groupdomain.Group, bool) {
	raw, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.log.Warn("group_cache.get: redis failed", "user_id", userID, "err", err)
		}
		return nil, false
	}

	var group groupdomain.Group
	if err := json.Unmarshal(raw, &group); err != nil {
		c.log.Warn("group_cache.get: bad payload", "user_id", userID, "err", err)
		c.DeleteByUserID(ctx, userID)
		return nil, false
	}
	return &group, true
}

func (c *GroupCache) SetByUserID(ctx context.Context, userID string, group *groupdomain.Group, ttl time.Duration) {
	if group == nil || ttl <= 0 {
		c.DeleteByUserID(ctx, userID)
		return
	}

	raw, err := json.Marshal(group)
	if err != nil {
		c.log.Warn("group_cache.set: encode failed", "user_id", userID, "err", err)
		return
	}
	if err := c.client.Set(ctx, c.key(userID), raw, ttl).Err(); err != nil {
		c.log.Warn("group_cache.set: redis failed", "user_id", userID, "err", err)
	}
}

func (c *GroupCache) DeleteByUserID(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		c.log.Warn("group_cache.delete: redis failed", "user_id", userID, "err", err)
	}
}

// Clear removes every key under the prefix with SCAN so other data in the
// same database is left alone.
func (c *GroupCache) Clear(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	keys := make([]string, 0, 100)
	flush := func() {
		if len(keys) == 0 {
			return
		}
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			c.log.Warn("group_cache.clear: redis failed", "err", err)
		}
		keys = keys[:0]
	}
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == cap(keys) {
			flush()
		}
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("group_cache.clear: scan failed", "err", err)
	}
	flush()
}

func (c *GroupCache) key(userID string) string {
	return c.prefix + userID
}

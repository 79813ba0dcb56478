package inmemory

import (
	"context"
	"sync"
	"time"

	groupdomain "alianca-go/internal/domain/group"
)

// GroupCache keeps resolved groups per user in process memory.
type GroupCache struct {
	mu    sync.RWMutex
	items map[string]groupItem
	now   func() time.Time
}

type groupItem struct {
	value     groupdomain.Group
	expiresAt time.Time
}

func NewGroupCache() *GroupCache {
	return &GroupCache{
		items: make(map[string]groupItem),
		now:   time.Now,
	}
}

func (c *GroupCache) GetByUserID(_ context.Context, userID string) (*groupdomain.Group, bool) {
	now := c.now()

	c.mu.RLock()
	item, ok := c.items[userID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !item.expiresAt.After(now) {
		c.mu.Lock()
		item, ok = c.items[userID]
		if ok && !item.expiresAt.After(now) {
			delete(c.items, userID)
		}
		c.mu.Unlock()
		return nil, false
	}

	value := item.value
	return &value, true
}

func (c *GroupCache) SetByUserID(ctx context.Context, userID string, group *groupdomain.Group, ttl time.Duration) {
	if group == nil || ttl <= 0 {
		c.DeleteByUserID(ctx, userID)
		return
	}

	c.mu.Lock()
	c.items[userID] = groupItem{
		value:     *group,
		expiresAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
}

func (c *GroupCache) DeleteByUserID(_ context.Context, userID string) {
	c.mu.Lock()
	delete(c.items, userID)
	c.mu.Unlock()
}

func (c *GroupCache) Clear(context.Context) {
	c.mu.Lock()
	c.items = make(map[string]groupItem)
	c.mu.Unlock()
}

func (c *GroupCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

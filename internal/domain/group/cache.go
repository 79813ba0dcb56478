package group

import (
	"context"
	"time"
)

// Cache remembers which group a user resolves to. Implementations are best
// effort: failures behave like misses.
type Cache interface {
	GetByUserID(ctx context.Context, userID string) (*Group, bool)
	SetByUserID(ctx context.Context, userID string, group *Group, ttl time.Duration)
	DeleteByUserID(ctx context.Context, userID string)
	Clear(ctx context.Context)
}

type noopCache struct{}

func (noopCache) GetByUserID(context.Context, string) (*Group, bool) {
	return nil, false
}

func (noopCache) SetByUserID(context.Context, string, *Group, time.Duration) {}

func (noopCache) DeleteByUserID(context.Context, string) {}

func (noopCache) Clear(context.Context) {}

package activity

import "context"

type Repository interface {
	CreateItem(ctx context.Context, item *Item) error
	GetItem(ctx context.Context, groupID, id string) (*Item, error)
	ListByCategory(ctx context.Context, groupID, category string) ([]Item, error)
	ListRecent(ctx context.Context, groupID string, limit int) ([]Item, error)
	UpdateItem(ctx context.Context, groupID, id string, changes map[string]any) (int64, error)
	DeleteItem(ctx context.Context, groupID, id string) (int64, error)
}

// GroupResolver maps a user to the group whose data they see.
type GroupResolver interface {
	ResolveGroupID(ctx context.Context, userID string) (string, error)
}

// Enricher fills metadata from outside sources. It never fails; on a miss
// it returns meta unchanged.
type Enricher interface {
	Enrich(ctx context.Context, category, name string, meta Meta) Meta
}

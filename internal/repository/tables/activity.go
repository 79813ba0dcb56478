package tables

import (
	"context"

	activitydomain "alianca-go/internal/domain/activity"
	"alianca-go/internal/gateway"
)

type ActivityRepository struct {
	gw gateway.Gateway
}

func NewActivityRepository(gw gateway.Gateway) *ActivityRepository {
	return &ActivityRepository{gw: gw}
}

func (r *ActivityRepository) CreateItem(ctx context.Context, item *activitydomain.Item) error {
	return r.gw.Insert(ctx, TableActivityItems, item)
}

func (r *ActivityRepository) GetItem(ctx context.Context, groupID, id string) (*activitydomain.Item, error) {
	item, ok, err := first[activitydomain.Item](ctx, r.gw, TableActivityItems,
		gateway.Eq("id", id),
		gateway.Eq("group_id", groupID),
	)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, activitydomain.ErrItemNotFound
	}
	return item, nil
}

func (r *ActivityRepository) ListByCategory(ctx context.Context, groupID, category string) ([]activitydomain.Item, error) {
	query := gateway.Where(gateway.Eq("group_id", groupID), gateway.Eq("category", category)).
		OrderBy("created_at", false)
	return selectAll[activitydomain.Item](ctx, r.gw, TableActivityItems, query)
}

func (r *ActivityRepository) ListRecent(ctx context.Context, groupID string, limit int) ([]activitydomain.Item, error) {
	query := gateway.Where(gateway.Eq("group_id", groupID)).
		OrderBy("created_at", true).
		WithLimit(limit)
	return selectAll[activitydomain.Item](ctx, r.gw, TableActivityItems, query)
}

func (r *ActivityRepository) UpdateItem(ctx context.Context, groupID, id string, changes map[string]any) (int64, error) {
	return r.gw.Update(ctx, TableActivityItems,
		[]gateway.Filter{gateway.Eq("id", id), gateway.Eq("group_id", groupID)},
		changes,
	)
}

func (r *ActivityRepository) DeleteItem(ctx context.Context, groupID, id string) (int64, error) {
	return r.gw.Delete(ctx, TableActivityItems,
		[]gateway.Filter{gateway.Eq("id", id), gateway.Eq("group_id", groupID)},
	)
}

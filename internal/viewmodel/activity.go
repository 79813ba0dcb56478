package viewmodel

import (
	"context"

	"alianca-go/internal/domain/activity"
)

type ActivityService interface {
	GetItems(ctx context.Context, userID, category string) ([]activity.Item, error)
	AddItem(ctx context.Context, userID string, input activity.AddInput) (*activity.Item, error)
	ToggleItem(ctx context.Context, userID, id string, currentCompleted bool) (*activity.Item, error)
	DeleteItem(ctx context.Context, userID, id string) error
}

// ActivityList is the state behind one category screen.
type ActivityList struct {
	svc      ActivityService
	userID   string
	category string
	items    *State[[]activity.Item]
	seq      Sequencer
}

func NewActivityList(svc ActivityService, userID, category string) *ActivityList {
	return &ActivityList{
		svc:      svc,
		userID:   userID,
		category: category,
		items:    NewState([]activity.Item{}),
	}
}

func (l *ActivityList) Items() []activity.Item {
	return l.items.Get()
}

// Load fetches the category. A response that arrives after a newer Load
// was started is discarded.
func (l *ActivityList) Load(ctx context.Context) error {
	ticket := l.seq.Next()
	items, err := l.svc.GetItems(ctx, l.userID, l.category)
	if err != nil {
		return err
	}
	l.seq.Publish(ticket, func() { l.items.Set(items) })
	return nil
}

// Toggle flips the item locally, then remotely using the flag the list
// showed before the flip.
func (l *ActivityList) Toggle(ctx context.Context, id string) error {
	var shown bool
	found := false
	apply := func(items []activity.Item) []activity.Item {
		next := make([]activity.Item, len(items))
		copy(next, items)
		for i := range next {
			if next[i].ID == id {
				shown = next[i].Completed
				found = true
				next[i].Completed = !shown
			}
		}
		return next
	}
	remote := func(ctx context.Context) error {
		if !found {
			return activity.ErrItemNotFound
		}
		_, err := l.svc.ToggleItem(ctx, l.userID, id, shown)
		return err
	}
	return l.items.Mutate(ctx, apply, remote)
}

func (l *ActivityList) Delete(ctx context.Context, id string) error {
	apply := func(items []activity.Item) []activity.Item {
		next := make([]activity.Item, 0, len(items))
		for _, item := range items {
			if item.ID != id {
				next = append(next, item)
			}
		}
		return next
	}
	remote := func(ctx context.Context) error {
		return l.svc.DeleteItem(ctx, l.userID, id)
	}
	return l.items.Mutate(ctx, apply, remote)
}

// Add waits for the store before showing the new item.
func (l *ActivityList) Add(ctx context.Context, name string, meta []byte) (*activity.Item, error) {
	item, err := l.svc.AddItem(ctx, l.userID, activity.AddInput{Category: l.category, Name: name, Meta: meta})
	if err != nil {
		return nil, err
	}
	current := l.items.Get()
	next := make([]activity.Item, 0, len(current)+1)
	next = append(next, current...)
	next = append(next, *item)
	l.items.Set(next)
	return item, nil
}

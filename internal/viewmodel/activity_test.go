package viewmodel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"alianca-go/internal/domain/activity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeActivityService struct {
	items      []activity.Item
	toggleErr  error
	toggledArg *bool
}

func (f *fakeActivityService) GetItems(ctx context.Context, userID, category string) ([]activity.Item, error) {
	return append([]activity.Item(nil), f.items...), nil
}

func (f *fakeActivityService) AddItem(ctx context.Context, userID string, input activity.AddInput) (*activity.Item, error) {
	item := activity.Item{ID: input.Name, Name: input.Name, Category: input.Category}
	f.items = append(f.items, item)
	return &item, nil
}

func (f *fakeActivityService) ToggleItem(ctx context.Context, userID, id string, currentCompleted bool) (*activity.Item, error) {
	f.toggledArg = &currentCompleted
	if f.toggleErr != nil {
		return nil, f.toggleErr
	}
	return &activity.Item{ID: id, Completed: !currentCompleted}, nil
}

func (f *fakeActivityService) DeleteItem(ctx context.Context, userID, id string) error {
	return errors.New("offline")
}

func TestActivityListToggle(t *testing.T) {
	svc := &fakeActivityService{items: []activity.Item{{ID: "leite", Name: "Leite"}}}
	list := NewActivityList(svc, "ana", activity.CategoryShopping)
	ctx := context.Background()
	require.NoError(t, list.Load(ctx))

	require.NoError(t, list.Toggle(ctx, "leite"))
	require.NotNil(t, svc.toggledArg)
	assert.False(t, *svc.toggledArg)
	assert.True(t, list.Items()[0].Completed)

	svc.toggleErr = errors.New("offline")
	assert.Error(t, list.Toggle(ctx, "leite"))
	assert.True(t, list.Items()[0].Completed, "failed toggle must restore the prior state")

	assert.ErrorIs(t, list.Toggle(ctx, "missing"), activity.ErrItemNotFound)
}

func TestActivityListDeleteRevertsOnFailure(t *testing.T) {
	svc := &fakeActivityService{items: []activity.Item{{ID: "a"}, {ID: "b"}}}
	list := NewActivityList(svc, "ana", activity.CategoryShopping)
	require.NoError(t, list.Load(context.Background()))

	assert.Error(t, list.Delete(context.Background(), "a"))
	assert.Len(t, list.Items(), 2)
}

func TestActivityListAddAppends(t *testing.T) {
	svc := &fakeActivityService{}
	list := NewActivityList(svc, "ana", activity.CategoryMovies)

	item, err := list.Add(context.Background(), "Up", nil)
	require.NoError(t, err)
	assert.Equal(t, activity.CategoryMovies, item.Category)
	assert.Len(t, list.Items(), 1)
}

type sequencedLoads struct {
	fakeActivityService
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (f *sequencedLoads) GetItems(ctx context.Context, userID, category string) ([]activity.Item, error) {
	if f.calls.Add(1) == 1 {
		close(f.started)
		<-f.release
		return []activity.Item{{ID: "old"}}, nil
	}
	return []activity.Item{{ID: "new"}}, nil
}

func TestActivityListDropsStaleLoad(t *testing.T) {
	svc := &sequencedLoads{started: make(chan struct{}), release: make(chan struct{})}
	list := NewActivityList(svc, "ana", activity.CategoryShopping)

	done := make(chan error)
	go func() { done <- list.Load(context.Background()) }()

	<-svc.started
	require.NoError(t, list.Load(context.Background()))

	close(svc.release)
	require.NoError(t, <-done)
	require.Len(t, list.Items(), 1)
	assert.Equal(t, "new", list.Items()[0].ID)
}

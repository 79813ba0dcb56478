package dashboard

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"alianca-go/internal/domain/activity"
	"alianca-go/internal/domain/routine"
	"alianca-go/pkg/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const today = calendar.Date("2026-03-04")

func scheduled(name, category string, completed bool, date calendar.Date) activity.Item {
	meta := `{"scheduledDate":"` + date.String() + `"}`
	return activity.Item{ID: name, Name: name, Category: category, Completed: completed, Meta: &meta}
}

type stubResolver struct{ err error }

func (r stubResolver) ResolveGroupID(ctx context.Context, userID string) (string, error) {
	return "grp-1", r.err
}

type stubRoutines struct {
	statuses []routine.Status
	streak   int64
	err      error
}

func (s stubRoutines) RoutinesForDate(ctx context.Context, userID string, date calendar.Date) ([]routine.Status, error) {
	return s.statuses, s.err
}

func (s stubRoutines) GetStreak(ctx context.Context, userID string) (int64, error) {
	return s.streak, nil
}

type stubActivities struct {
	items map[string][]activity.Item
	calls atomic.Int32
}

func (s *stubActivities) GetItems(ctx context.Context, userID, category string) ([]activity.Item, error) {
	s.calls.Add(1)
	return s.items[category], nil
}

type stubFinance struct{ balance float64 }

func (s stubFinance) GetBalance(ctx context.Context, userID string) (float64, error) {
	return s.balance, nil
}

func TestPickHighlightPriority(t *testing.T) {
	other := calendar.Date("2026-03-05")
	cases := []struct {
		name   string
		bible  []activity.Item
		movies []activity.Item
		want   string
	}{
		{
			name:   "incomplete bible wins",
			bible:  []activity.Item{scheduled("b-done", "bible", true, today), scheduled("b-open", "bible", false, today)},
			movies: []activity.Item{scheduled("m-open", "movies", false, today)},
			want:   "b-open",
		},
		{
			name:   "completed bible beats movie",
			bible:  []activity.Item{scheduled("b-done", "bible", true, today)},
			movies: []activity.Item{scheduled("m-open", "movies", false, today)},
			want:   "b-done",
		},
		{
			name:   "bible on other day is ignored",
			bible:  []activity.Item{scheduled("b-open", "bible", false, other)},
			movies: []activity.Item{scheduled("m-done", "movies", true, today), scheduled("m-open", "movies", false, today)},
			want:   "m-open",
		},
		{
			name:   "completed movie",
			movies: []activity.Item{scheduled("m-done", "movies", true, today)},
			want:   "m-done",
		},
		{
			name:   "nothing scheduled",
			bible:  []activity.Item{{ID: "no-meta", Category: "bible"}},
			movies: []activity.Item{scheduled("m-open", "movies", false, other)},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PickHighlight(tc.bible, tc.movies, today)
			if tc.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tc.want, got.ID)
		})
	}
}

func TestBuildAggregates(t *testing.T) {
	activities := &stubActivities{items: map[string][]activity.Item{
		activity.CategoryShopping: {{ID: "leite"}, {ID: "pao", Completed: true}, {ID: "cafe"}},
		activity.CategoryMovies:   {scheduled("up", "movies", false, today)},
	}}
	routines := stubRoutines{
		statuses: []routine.Status{{Completed: true}, {Completed: false}, {Completed: false}},
		streak:   12,
	}
	svc := NewService(stubResolver{}, routines, activities, stubFinance{balance: 800})

	view, err := svc.Build(context.Background(), "ana", today)
	require.NoError(t, err)
	assert.Equal(t, today, view.Date)
	assert.Equal(t, 3, view.TotalRoutines)
	assert.Equal(t, 2, view.PendingRoutines)
	assert.Equal(t, 2, view.PendingShopping)
	assert.Equal(t, 800.0, view.Balance)
	assert.Equal(t, int64(12), view.Streak)
	require.NotNil(t, view.Highlight)
	assert.Equal(t, "up", view.Highlight.ID)
	assert.Equal(t, int32(3), activities.calls.Load())
}

func TestBuildFailsWhenAnySourceFails(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(stubResolver{}, stubRoutines{err: boom}, &stubActivities{}, stubFinance{})

	_, err := svc.Build(context.Background(), "ana", today)
	assert.ErrorIs(t, err, boom)
}

func TestBuildWithoutGroup(t *testing.T) {
	noGroup := errors.New("no group")
	activities := &stubActivities{}
	svc := NewService(stubResolver{err: noGroup}, stubRoutines{}, activities, stubFinance{})

	_, err := svc.Build(context.Background(), "ana", today)
	assert.ErrorIs(t, err, noGroup)
	assert.Equal(t, int32(0), activities.calls.Load())
}

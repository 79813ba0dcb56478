// Package dashboard aggregates the per-day home view from the routine,
// activity and finance services.
package dashboard

import (
	"context"

	"alianca-go/internal/domain/activity"
	"alianca-go/internal/domain/routine"
	"alianca-go/pkg/calendar"
	"golang.org/x/sync/errgroup"
)

type Routines interface {
	RoutinesForDate(ctx context.Context, userID string, date calendar.Date) ([]routine.Status, error)
	GetStreak(ctx context.Context, userID string) (int64, error)
}

type Activities interface {
	GetItems(ctx context.Context, userID, category string) ([]activity.Item, error)
}

type Finance interface {
	GetBalance(ctx context.Context, userID string) (float64, error)
}

type GroupResolver interface {
	ResolveGroupID(ctx context.Context, userID string) (string, error)
}

type View struct {
	Date            calendar.Date  `json:"date"`
	PendingRoutines int            `json:"pending_routines"`
	TotalRoutines   int            `json:"total_routines"`
	PendingShopping int            `json:"pending_shopping"`
	Highlight       *activity.Item `json:"highlight"`
	Balance         float64        `json:"balance"`
	Streak          int64          `json:"streak"`
}

type Service struct {
	groups     GroupResolver
	routines   Routines
	activities Activities
	finance    Finance
}

func NewService(groups GroupResolver, routines Routines, activities Activities, finance Finance) *Service {
	return &Service{
		groups:     groups,
		routines:   routines,
		activities: activities,
		finance:    finance,
	}
}

// Build recomputes the view for date. The group is resolved up front so a
// user without a group gets that error once; the remaining reads run
// concurrently and any failure fails the build.
func (s *Service) Build(ctx context.Context, userID string, date calendar.Date) (*View, error) {
	if _, err := s.groups.ResolveGroupID(ctx, userID); err != nil {
		return nil, err
	}

	view := &View{Date: date}
	var (
		statuses []routine.Status
		shopping []activity.Item
		bible    []activity.Item
		movies   []activity.Item
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		statuses, err = s.routines.RoutinesForDate(gctx, userID, date)
		return err
	})
	g.Go(func() error {
		var err error
		view.Streak, err = s.routines.GetStreak(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		shopping, err = s.activities.GetItems(gctx, userID, activity.CategoryShopping)
		return err
	})
	g.Go(func() error {
		var err error
		bible, err = s.activities.GetItems(gctx, userID, activity.CategoryBible)
		return err
	})
	g.Go(func() error {
		var err error
		movies, err = s.activities.GetItems(gctx, userID, activity.CategoryMovies)
		return err
	})
	g.Go(func() error {
		var err error
		view.Balance, err = s.finance.GetBalance(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	progress := routine.ProgressOf(statuses)
	view.TotalRoutines = progress.Total
	view.PendingRoutines = progress.Pending
	for _, item := range shopping {
		if !item.Completed {
			view.PendingShopping++
		}
	}
	view.Highlight = PickHighlight(bible, movies, date)
	return view, nil
}

// PickHighlight prefers, among items scheduled on date: an incomplete bible
// item, any bible item, an incomplete movie, any movie.
func PickHighlight(bible, movies []activity.Item, date calendar.Date) *activity.Item {
	for _, candidates := range [][]activity.Item{bible, movies} {
		var fallback *activity.Item
		for i := range candidates {
			item := candidates[i]
			if activity.ScheduledDate(item) != date {
				continue
			}
			if !item.Completed {
				return &item
			}
			if fallback == nil {
				fallback = &item
			}
		}
		if fallback != nil {
			return fallback
		}
	}
	return nil
}

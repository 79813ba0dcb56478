package viewmodel

import (
	"context"
	"sync"

	"alianca-go/internal/domain/dashboard"
	"alianca-go/pkg/calendar"
)

type DashboardBuilder interface {
	Build(ctx context.Context, userID string, date calendar.Date) (*dashboard.View, error)
}

// DashboardView shows the view for the most recently selected date.
type DashboardView struct {
	builder DashboardBuilder
	userID  string
	seq     Sequencer

	mu      sync.RWMutex
	current *dashboard.View
}

func NewDashboardView(builder DashboardBuilder, userID string) *DashboardView {
	return &DashboardView{builder: builder, userID: userID}
}

func (d *DashboardView) Current() *dashboard.View {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.current
}

// Load builds the view for date and reports whether it was published. A
// build overtaken by a later Load is dropped.
func (d *DashboardView) Load(ctx context.Context, date calendar.Date) (bool, error) {
	ticket := d.seq.Next()
	view, err := d.builder.Build(ctx, d.userID, date)
	if err != nil {
		return false, err
	}
	published := d.seq.Publish(ticket, func() {
		d.mu.Lock()
		d.current = view
		d.mu.Unlock()
	})
	return published, nil
}

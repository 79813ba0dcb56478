package viewmodel

import (
	"context"
	"errors"
	"testing"

	"alianca-go/internal/domain/dashboard"
	"alianca-go/pkg/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gatedBuilder struct {
	slowDate calendar.Date
	started  chan struct{}
	release  chan struct{}
	err      error
}

func (b *gatedBuilder) Build(ctx context.Context, userID string, date calendar.Date) (*dashboard.View, error) {
	if date == b.slowDate {
		close(b.started)
		<-b.release
	}
	if b.err != nil {
		return nil, b.err
	}
	return &dashboard.View{Date: date}, nil
}

func TestDashboardViewDropsOvertakenBuild(t *testing.T) {
	builder := &gatedBuilder{slowDate: "2026-03-01", started: make(chan struct{}), release: make(chan struct{})}
	view := NewDashboardView(builder, "ana")

	type result struct {
		published bool
		err       error
	}
	done := make(chan result)
	go func() {
		published, err := view.Load(context.Background(), "2026-03-01")
		done <- result{published, err}
	}()

	<-builder.started
	published, err := view.Load(context.Background(), "2026-03-02")
	require.NoError(t, err)
	assert.True(t, published)

	close(builder.release)
	first := <-done
	require.NoError(t, first.err)
	assert.False(t, first.published)
	assert.Equal(t, calendar.Date("2026-03-02"), view.Current().Date)
}

func TestDashboardViewKeepsCurrentOnError(t *testing.T) {
	builder := &gatedBuilder{}
	view := NewDashboardView(builder, "ana")
	_, err := view.Load(context.Background(), "2026-03-01")
	require.NoError(t, err)

	builder.err = errors.New("offline")
	_, err = view.Load(context.Background(), "2026-03-02")
	assert.Error(t, err)
	assert.Equal(t, calendar.Date("2026-03-01"), view.Current().Date)
}

package viewmodel

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutateKeepsValueOnSuccess(t *testing.T) {
	state := NewState(1)
	err := state.Mutate(context.Background(), func(v int) int { return v + 1 }, func(context.Context) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 2, state.Get())
}

func TestMutateRestoresOnFailure(t *testing.T) {
	boom := errors.New("boom")
	state := NewState([]string{"a"})

	var during []string
	err := state.Mutate(context.Background(),
		func(v []string) []string { return append(append([]string(nil), v...), "b") },
		func(context.Context) error {
			during = state.Get()
			return boom
		},
	)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a", "b"}, during)
	assert.Equal(t, []string{"a"}, state.Get())
}

func TestSequencerDropsStale(t *testing.T) {
	var seq Sequencer
	first := seq.Next()
	second := seq.Next()

	assert.False(t, seq.IsCurrent(first))
	assert.False(t, seq.Publish(first, func() { t.Fatalf("stale result published") }))

	published := false
	assert.True(t, seq.Publish(second, func() { published = true }))
	assert.True(t, published)
}

func TestSequencerConcurrentTickets(t *testing.T) {
	var seq Sequencer
	var wg sync.WaitGroup
	tickets := make(chan Ticket, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tickets <- seq.Next()
		}()
	}
	wg.Wait()
	close(tickets)

	seen := make(map[Ticket]bool)
	for ticket := range tickets {
		require.False(t, seen[ticket], "duplicate ticket %d", ticket)
		seen[ticket] = true
	}
	assert.True(t, seq.IsCurrent(Ticket(100)))
}

// Package viewmodel holds client-side view state with optimistic updates
// and request sequencing. It is a library for client consumers of the
// services; the server binaries do not import it.
package viewmodel

import (
	"context"
	"sync"
)

// State guards a value shown to the user.
type State[T any] struct {
	mu    sync.Mutex
	value T
}

func NewState[T any](initial T) *State[T] {
	return &State[T]{value: initial}
}

func (s *State[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

func (s *State[T]) Set(value T) {
	s.mu.Lock()
	s.value = value
	s.mu.Unlock()
}

// Mutate applies apply optimistically and then runs remote. The value seen
// by apply is captured under the same lock and restored if remote fails.
// apply must not modify its argument in place.
func (s *State[T]) Mutate(ctx context.Context, apply func(T) T, remote func(context.Context) error) error {
	s.mu.Lock()
	previous := s.value
	s.value = apply(previous)
	s.mu.Unlock()

	if err := remote(ctx); err != nil {
		s.mu.Lock()
		s.value = previous
		s.mu.Unlock()
		return err
	}
	return nil
}

// Ticket identifies one request issued by a Sequencer.
type Ticket uint64

// Sequencer lets only the most recently issued request publish its result.
type Sequencer struct {
	mu     sync.Mutex
	latest Ticket
}

func (s *Sequencer) Next() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest++
	return s.latest
}

func (s *Sequencer) IsCurrent(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t == s.latest
}

// Publish runs fn when t is still the latest ticket and reports whether it
// did. Stale results are dropped.
func (s *Sequencer) Publish(t Ticket, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t != s.latest {
		return false
	}
	fn()
	return true
}

package routine

import "errors"

var (
	ErrRoutineNotFound    = errors.New("routine not found")
	ErrInvalidRoutine     = errors.New("invalid routine")
	ErrCompletionExists   = errors.New("routine already completed for date")
	ErrCompletionNotFound = errors.New("routine completion not found")
)

package routine

import (
	"context"

	"alianca-go/pkg/calendar"
)

type Repository interface {
	CreateRoutine(ctx context.Context, routine *Routine) error
	GetRoutine(ctx context.Context, groupID, id string) (*Routine, error)
	// ListRoutines orders by time of day.
	ListRoutines(ctx context.Context, groupID string) ([]Routine, error)
	UpdateRoutine(ctx context.Context, groupID, id string, changes map[string]any) (int64, error)
	DeleteRoutine(ctx context.Context, groupID, id string) (int64, error)

	ListCompletions(ctx context.Context, routineIDs []string, date calendar.Date) ([]Completion, error)
	// AddCompletion returns ErrCompletionExists on a duplicate (routine, user, date).
	AddCompletion(ctx context.Context, completion *Completion) error
	DeleteCompletion(ctx context.Context, routineID, userID string, date calendar.Date) (int64, error)
	DeleteCompletionsByRoutine(ctx context.Context, routineID string) error
	CountCompletions(ctx context.Context, userID string) (int64, error)
}

type GroupResolver interface {
	ResolveGroupID(ctx context.Context, userID string) (string, error)
}

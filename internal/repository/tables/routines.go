package tables

import (
	"context"
	"errors"

	routinedomain "alianca-go/internal/domain/routine"
	"alianca-go/internal/gateway"
	"alianca-go/pkg/calendar"
)

type RoutineRepository struct {
	gw gateway.Gateway
}

func NewRoutineRepository(gw gateway.Gateway) *RoutineRepository {
	return &RoutineRepository{gw: gw}
}

func (r *RoutineRepository) CreateRoutine(ctx context.Context, routine *routinedomain.Routine) error {
	return r.gw.Insert(ctx, TableRoutines, routine)
}

func (r *RoutineRepository) GetRoutine(ctx context.Context, groupID, id string) (*routinedomain.Routine, error) {
	routine, ok, err := first[routinedomain.Routine](ctx, r.gw, TableRoutines,
		gateway.Eq("id", id),
		gateway.Eq("group_id", groupID),
	)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, routinedomain.ErrRoutineNotFound
	}
	return routine, nil
}

func (r *RoutineRepository) ListRoutines(ctx context.Context, groupID string) ([]routinedomain.Routine, error) {
	query := gateway.Where(gateway.Eq("group_id", groupID)).
		OrderBy("time", false).
		OrderBy("created_at", false)
	return selectAll[routinedomain.Routine](ctx, r.gw, TableRoutines, query)
}

func (r *RoutineRepository) UpdateRoutine(ctx context.Context, groupID, id string, changes map[string]any) (int64, error) {
	return r.gw.Update(ctx, TableRoutines,
		[]gateway.Filter{gateway.Eq("id", id), gateway.Eq("group_id", groupID)},
		changes,
	)
}

func (r *RoutineRepository) DeleteRoutine(ctx context.Context, groupID, id string) (int64, error) {
	return r.gw.Delete(ctx, TableRoutines,
		[]gateway.Filter{gateway.Eq("id", id), gateway.Eq("group_id", groupID)},
	)
}

func (r *RoutineRepository) ListCompletions(ctx context.Context, routineIDs []string, date calendar.Date) ([]routinedomain.Completion, error) {
	if len(routineIDs) == 0 {
		return []routinedomain.Completion{}, nil
	}
	query := gateway.Where(gateway.In("routine_id", routineIDs), gateway.Eq("completion_date", date))
	return selectAll[routinedomain.Completion](ctx, r.gw, TableRoutineCompletions, query)
}

func (r *RoutineRepository) AddCompletion(ctx context.Context, completion *routinedomain.Completion) error {
	err := r.gw.Insert(ctx, TableRoutineCompletions, completion)
	if errors.Is(err, gateway.ErrConflict) {
		return routinedomain.ErrCompletionExists
	}
	return err
}

func (r *RoutineRepository) DeleteCompletion(ctx context.Context, routineID, userID string, date calendar.Date) (int64, error) {
	return r.gw.Delete(ctx, TableRoutineCompletions, []gateway.Filter{
		gateway.Eq("routine_id", routineID),
		gateway.Eq("user_id", userID),
		gateway.Eq("completion_date", date),
	})
}

func (r *RoutineRepository) DeleteCompletionsByRoutine(ctx context.Context, routineID string) error {
	_, err := r.gw.Delete(ctx, TableRoutineCompletions, []gateway.Filter{gateway.Eq("routine_id", routineID)})
	return err
}

func (r *RoutineRepository) CountCompletions(ctx context.Context, userID string) (int64, error) {
	return r.gw.Count(ctx, TableRoutineCompletions, []gateway.Filter{gateway.Eq("user_id", userID)})
}

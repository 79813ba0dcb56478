// Package tables maps the domain repositories onto the remote table
// gateway. Each repository only knows table and column names; the gateway
// decides how they reach the store.
package tables

import (
	"context"

	"alianca-go/internal/gateway"
	"alianca-go/internal/gateway/memory"
)

const (
	TableGroups             = "groups"
	TableGroupMembers       = "group_members"
	TableProfiles           = "profiles"
	TableActivityItems      = "activity_items"
	TableTransactions       = "transactions"
	TableRoutines           = "routines"
	TableRoutineCompletions = "routine_completions"
)

// NewMemoryGateway returns an in-process gateway with the same unique keys
// as the migrations.
func NewMemoryGateway() *memory.Gateway {
	return memory.New().
		Unique(TableGroups, "id").
		Unique(TableGroups, "code").
		Unique(TableGroupMembers, "group_id", "user_id").
		Unique(TableProfiles, "id").
		Unique(TableActivityItems, "id").
		Unique(TableTransactions, "id").
		Unique(TableRoutines, "id").
		Unique(TableRoutineCompletions, "routine_id", "user_id", "completion_date")
}

// first selects at most one row. ok is false when nothing matched.
func first[T any](ctx context.Context, gw gateway.Gateway, table string, filters ...gateway.Filter) (*T, bool, error) {
	var rows []T
	if err := gw.Select(ctx, table, gateway.Where(filters...).WithLimit(1), &rows); err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return &rows[0], true, nil
}

func selectAll[T any](ctx context.Context, gw gateway.Gateway, table string, query gateway.Query) ([]T, error) {
	rows := make([]T, 0)
	if err := gw.Select(ctx, table, query, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = make([]T, 0)
	}
	return rows, nil
}

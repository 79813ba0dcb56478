// Package memory keeps tables in process. Rows are normalized through JSON
// so they look exactly like PostgREST payloads.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"alianca-go/internal/gateway"
)

type row map[string]any

type Gateway struct {
	mu      sync.RWMutex
	tables  map[string][]row
	uniques map[string][][]string
}

func New() *Gateway {
	return &Gateway{
		tables:  make(map[string][]row),
		uniques: make(map[string][][]string),
	}
}

// Unique declares a unique key on table. Inserts that collide fail with
// gateway.ErrConflict.
func (g *Gateway) Unique(table string, columns ...string) *Gateway {
	g.mu.Lock()
	g.uniques[table] = append(g.uniques[table], columns)
	g.mu.Unlock()
	return g
}

func (g *Gateway) Select(ctx context.Context, table string, query gateway.Query, dest any) error {
	if err := gateway.ValidateIdentifier(table); err != nil {
		return err
	}
	if err := query.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.RLock()
	matched := make([]row, 0)
	for _, r := range g.tables[table] {
		if matches(r, query.Filters) {
			matched = append(matched, r)
		}
	}
	g.mu.RUnlock()

	if len(query.Orders) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			for _, order := range query.Orders {
				cmp := compare(matched[i][order.Column], matched[j][order.Column])
				if cmp == 0 {
					continue
				}
				if order.Desc {
					return cmp > 0
				}
				return cmp < 0
			}
			return false
		})
	}
	if query.Limit > 0 && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}

	data, err := json.Marshal(matched)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (g *Gateway) Insert(ctx context.Context, table string, value any) error {
	if err := gateway.ValidateIdentifier(table); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r, err := normalize(value)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if columns, taken := g.collision(table, r, -1); taken {
		return &gateway.Error{
			StatusCode: 409,
			Code:       "23505",
			Message:    fmt.Sprintf("duplicate key value violates unique constraint on %s(%s)", table, strings.Join(columns, ",")),
		}
	}
	g.tables[table] = append(g.tables[table], r)
	return nil
}

func (g *Gateway) Upsert(ctx context.Context, table string, value any, conflictColumns ...string) error {
	if err := gateway.ValidateIdentifier(table); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r, err := normalize(value)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if len(conflictColumns) > 0 {
		for i, existing := range g.tables[table] {
			if sameKey(existing, r, conflictColumns) {
				merged := make(row, len(existing)+len(r))
				for k, v := range existing {
					merged[k] = v
				}
				for k, v := range r {
					merged[k] = v
				}
				g.tables[table][i] = merged
				return nil
			}
		}
	}
	g.tables[table] = append(g.tables[table], r)
	return nil
}

func (g *Gateway) Update(ctx context.Context, table string, filters []gateway.Filter, patch map[string]any) (int64, error) {
	if err := checkMutation(table, filters); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	normalized, err := normalize(patch)
	if err != nil {
		return 0, err
	}
	for column := range normalized {
		if err := gateway.ValidateIdentifier(column); err != nil {
			return 0, err
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var affected int64
	rows := g.tables[table]
	for i, r := range rows {
		if !matches(r, filters) {
			continue
		}
		updated := make(row, len(r))
		for k, v := range r {
			updated[k] = v
		}
		for k, v := range normalized {
			updated[k] = v
		}
		if columns, taken := g.collision(table, updated, i); taken {
			return affected, &gateway.Error{
				StatusCode: 409,
				Code:       "23505",
				Message:    fmt.Sprintf("duplicate key value violates unique constraint on %s(%s)", table, strings.Join(columns, ",")),
			}
		}
		rows[i] = updated
		affected++
	}
	return affected, nil
}

func (g *Gateway) Delete(ctx context.Context, table string, filters []gateway.Filter) (int64, error) {
	if err := checkMutation(table, filters); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	kept := make([]row, 0, len(g.tables[table]))
	var affected int64
	for _, r := range g.tables[table] {
		if matches(r, filters) {
			affected++
			continue
		}
		kept = append(kept, r)
	}
	g.tables[table] = kept
	return affected, nil
}

func (g *Gateway) Count(ctx context.Context, table string, filters []gateway.Filter) (int64, error) {
	if err := gateway.ValidateIdentifier(table); err != nil {
		return 0, err
	}
	if err := gateway.ValidateFilters(filters); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	var count int64
	for _, r := range g.tables[table] {
		if matches(r, filters) {
			count++
		}
	}
	return count, nil
}

// Len reports how many rows table holds.
func (g *Gateway) Len(table string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.tables[table])
}

func (g *Gateway) collision(table string, candidate row, skip int) ([]string, bool) {
	for _, columns := range g.uniques[table] {
		for i, existing := range g.tables[table] {
			if i == skip {
				continue
			}
			if sameKey(existing, candidate, columns) {
				return columns, true
			}
		}
	}
	return nil, false
}

func checkMutation(table string, filters []gateway.Filter) error {
	if err := gateway.ValidateIdentifier(table); err != nil {
		return err
	}
	if len(filters) == 0 {
		return gateway.ErrMissingFilters
	}
	return gateway.ValidateFilters(filters)
}

func sameKey(a, b row, columns []string) bool {
	for _, column := range columns {
		av, aok := a[column]
		bv, bok := b[column]
		if !aok || !bok || av == nil || bv == nil {
			return false
		}
		if compare(av, bv) != 0 {
			return false
		}
	}
	return true
}

func matches(r row, filters []gateway.Filter) bool {
	for _, filter := range filters {
		value := r[filter.Column]
		switch filter.Op {
		case gateway.OpEq:
			if !equal(value, filter.Value) {
				return false
			}
		case gateway.OpNeq:
			if equal(value, filter.Value) {
				return false
			}
		case gateway.OpGte:
			if value == nil || compare(value, normalizeValue(filter.Value)) < 0 {
				return false
			}
		case gateway.OpLte:
			if value == nil || compare(value, normalizeValue(filter.Value)) > 0 {
				return false
			}
		case gateway.OpIn:
			found := false
			for _, candidate := range filter.Value.([]any) {
				if equal(value, candidate) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

func equal(stored, filterValue any) bool {
	want := normalizeValue(filterValue)
	if stored == nil || want == nil {
		return stored == nil && want == nil
	}
	return compare(stored, want) == 0
}

// compare orders JSON-normalized values. Timestamps are compared as
// instants, numbers numerically and everything else by string form.
func compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if af, ok := a.(float64); ok {
		if bf, ok := b.(float64); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}

	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	if at, err := time.Parse(time.RFC3339Nano, as); err == nil {
		if bt, err := time.Parse(time.RFC3339Nano, bs); err == nil {
			return at.Compare(bt)
		}
	}
	return strings.Compare(as, bs)
}

func normalize(value any) (row, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("memory: marshal row: %w", err)
	}
	var r row
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("memory: row must be an object: %w", err)
	}
	return r, nil
}

func normalizeValue(value any) any {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Sprint(value)
	}
	return out
}

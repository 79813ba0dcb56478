package metrics

import (
	"context"
	"time"

	"alianca-go/internal/gateway"
)

type instrumentedGateway struct {
	next    gateway.Gateway
	metrics *Metrics
}

// Gateway wraps next so every table operation is counted and timed.
func (m *Metrics) Gateway(next gateway.Gateway) gateway.Gateway {
	return &instrumentedGateway{next: next, metrics: m}
}

func (g *instrumentedGateway) Select(ctx context.Context, table string, query gateway.Query, dest any) error {
	start := time.Now()
	err := g.next.Select(ctx, table, query, dest)
	g.metrics.observeGateway("select", table, start, err)
	return err
}

func (g *instrumentedGateway) Insert(ctx context.Context, table string, row any) error {
	start := time.Now()
	err := g.next.Insert(ctx, table, row)
	g.metrics.observeGateway("insert", table, start, err)
	return err
}

func (g *instrumentedGateway) Upsert(ctx context.Context, table string, row any, conflictColumns ...string) error {
	start := time.Now()
	err := g.next.Upsert(ctx, table, row, conflictColumns...)
	g.metrics.observeGateway("upsert", table, start, err)
	return err
}

func (g *instrumentedGateway) Update(ctx context.Context, table string, filters []gateway.Filter, patch map[string]any) (int64, error) {
	start := time.Now()
	affected, err := g.next.Update(ctx, table, filters, patch)
	g.metrics.observeGateway("update", table, start, err)
	return affected, err
}

func (g *instrumentedGateway) Delete(ctx context.Context, table string, filters []gateway.Filter) (int64, error) {
	start := time.Now()
	affected, err := g.next.Delete(ctx, table, filters)
	g.metrics.observeGateway("delete", table, start, err)
	return affected, err
}

func (g *instrumentedGateway) Count(ctx context.Context, table string, filters []gateway.Filter) (int64, error) {
	start := time.Now()
	count, err := g.next.Count(ctx, table, filters)
	g.metrics.observeGateway("count", table, start, err)
	return count, err
}

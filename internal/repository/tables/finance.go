package tables

import (
	"context"

	financedomain "alianca-go/internal/domain/finance"
	"alianca-go/internal/gateway"
)

type TransactionRepository struct {
	gw gateway.Gateway
}

func NewTransactionRepository(gw gateway.Gateway) *TransactionRepository {
	return &TransactionRepository{gw: gw}
}

func (r *TransactionRepository) CreateTransaction(ctx context.Context, transaction *financedomain.Transaction) error {
	return r.gw.Insert(ctx, TableTransactions, transaction)
}

func (r *TransactionRepository) ListRecent(ctx context.Context, groupID string, limit int) ([]financedomain.Transaction, error) {
	query := gateway.Where(gateway.Eq("group_id", groupID)).
		OrderBy("date", true).
		OrderBy("created_at", true).
		WithLimit(limit)
	return selectAll[financedomain.Transaction](ctx, r.gw, TableTransactions, query)
}

func (r *TransactionRepository) ListAll(ctx context.Context, groupID string) ([]financedomain.Transaction, error) {
	return selectAll[financedomain.Transaction](ctx, r.gw, TableTransactions, gateway.Where(gateway.Eq("group_id", groupID)))
}

func (r *TransactionRepository) DeleteTransaction(ctx context.Context, groupID, id string) (int64, error) {
	return r.gw.Delete(ctx, TableTransactions,
		[]gateway.Filter{gateway.Eq("id", id), gateway.Eq("group_id", groupID)},
	)
}

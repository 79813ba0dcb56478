package finance

import "context"

type Repository interface {
	CreateTransaction(ctx context.Context, transaction *Transaction) error
	// ListRecent orders by date then created_at, both descending.
	ListRecent(ctx context.Context, groupID string, limit int) ([]Transaction, error)
	ListAll(ctx context.Context, groupID string) ([]Transaction, error)
	DeleteTransaction(ctx context.Context, groupID, id string) (int64, error)
}

type GroupResolver interface {
	ResolveGroupID(ctx context.Context, userID string) (string, error)
}

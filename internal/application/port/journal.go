package port

import (
	"context"

	"novatrade/internal/domain"
)

// Journal records submitted orders for the open-orders view. Journal errors
// are non-fatal to trading; callers log and move on.
type Journal interface {
	RecordOrder(ctx context.Context, rec *domain.OrderRecord) error
	ListOrders(ctx context.Context, limit int) ([]*domain.OrderRecord, error)
	UpdateOrderStatus(ctx context.Context, txID, status string) error
	Close() error
}

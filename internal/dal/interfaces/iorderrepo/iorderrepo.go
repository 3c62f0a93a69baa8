package iorderrepo

import (
	"context"

	"github.com/corray333/backend-labs/orderitems/internal/service/models/order"
)

// IOrderRepository is an interface for order repository.
type IOrderRepository interface {
	// GetOrder returns nil when the order does not exist.
	GetOrder(ctx context.Context, orderID int64) (*order.Order, error)
}

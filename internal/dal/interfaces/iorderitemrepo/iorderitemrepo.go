package iorderitemrepo

import (
	"context"

	"github.com/corray333/backend-labs/orderitems/internal/service/models/orderitem"
)

// IOrderItemRepository is an interface for order item repository.
type IOrderItemRepository interface {
	// GetOrderItem returns nil when the order has no line for the product.
	GetOrderItem(ctx context.Context, orderID, productID int64) (*orderitem.OrderItem, error)

	// InsertOrderItem reports false when the line already exists.
	InsertOrderItem(ctx context.Context, orderID, productID int64, quantity int) (bool, error)

	UpdateOrderItemQuantity(ctx context.Context, orderID, productID int64, quantity int) (bool, error)

	// ListOrderItemsWithProductInfo returns lines ordered by creation time.
	ListOrderItemsWithProductInfo(ctx context.Context, orderID int64) ([]orderitem.Details, error)
}

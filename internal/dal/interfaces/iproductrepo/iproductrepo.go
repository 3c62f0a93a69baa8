package iproductrepo

import (
	"context"

	"github.com/corray333/backend-labs/orderitems/internal/service/models/product"
)

// IProductRepository is an interface for product repository.
// GetProductForUpdate returns nil when the product does not exist.
type IProductRepository interface {
	// GetProductForUpdate locks the product row until the surrounding
	// transaction ends.
	GetProductForUpdate(ctx context.Context, productID int64) (*product.Product, error)

	// SetProductQuantity reports whether exactly one row was updated.
	SetProductQuantity(ctx context.Context, productID int64, quantity int) (bool, error)
}

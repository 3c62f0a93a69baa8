package orderitem

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem represents a product line within an order.
// The pair (OrderID, ProductID) is unique.
type OrderItem struct {
	OrderID   int64     `json:"order_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// Details is an order item joined with the name and price of its product.
type Details struct {
	OrderItem

	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
}

// AddItemResult describes a successful addition of a product to an order.
type AddItemResult struct {
	OrderID   int64  `json:"order_id"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Message   string `json:"message"`
}

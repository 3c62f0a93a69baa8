package order

import (
	"time"

	"github.com/corray333/backend-labs/orderitems/internal/service/models/orderitem"
)

// Order represents an order in the system.
// An order accepts new items only while ClosedAt is nil.
type Order struct {
	ID        int64      `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at"`
}

// IsClosed reports whether the order no longer accepts items.
func (o *Order) IsClosed() bool {
	return o.ClosedAt != nil
}

// Details is an order together with its items and their product info.
type Details struct {
	Order Order               `json:"order"`
	Items []orderitem.Details `json:"items"`
}

// TotalQuantity returns the sum of item quantities.
func (d *Details) TotalQuantity() int {
	total := 0
	for _, item := range d.Items {
		total += item.Quantity
	}

	return total
}

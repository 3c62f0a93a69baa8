package product

import "github.com/shopspring/decimal"

// Product represents a product with its available stock.
type Product struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// HasStock reports whether at least requested units are available.
func (p *Product) HasStock(requested int) bool {
	return p.Quantity >= requested
}

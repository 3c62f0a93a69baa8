package converters

import (
	"net/http"
	"strconv"
	"time"

	"github.com/corray333/backend-labs/orderitems/internal/service/models/apperr"
	"github.com/corray333/backend-labs/orderitems/internal/service/models/order"
	"github.com/corray333/backend-labs/orderitems/internal/service/models/orderitem"
	"github.com/go-chi/chi/v5"
)

// AddItemRequest is the body of POST /orders/{order_id}/items.
type AddItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// AddItemResponse is returned after an item was added.
type AddItemResponse struct {
	OrderID   int64  `json:"order_id"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Message   string `json:"message"`
}

// OrderResponse is an order in API responses.
type OrderResponse struct {
	ID        int64      `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at"`
}

// OrderItemResponse is an order line with product info in API responses.
type OrderItemResponse struct {
	OrderID     int64     `json:"order_id"`
	ProductID   int64     `json:"product_id"`
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
	ProductName string    `json:"product_name"`
	Price       string    `json:"price"`
}

// OrderDetailsResponse is the body of GET /orders/{order_id}/items.
type OrderDetailsResponse struct {
	Order OrderResponse       `json:"order"`
	Items []OrderItemResponse `json:"items"`
}

// ParseOrderID reads the order_id URL parameter.
func ParseOrderID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "order_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperr.Validation("order_id must be an integer, got %q", raw)
	}

	return id, nil
}

// AddItemCommandFromRequest builds the service command.
func AddItemCommandFromRequest(orderID int64, req AddItemRequest) orderitem.AddItemCommand {
	return orderitem.AddItemCommand{
		OrderID:   orderID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	}
}

// AddItemResponseFromModel converts the service result.
func AddItemResponseFromModel(res orderitem.AddItemResult) AddItemResponse {
	return AddItemResponse{
		OrderID:   res.OrderID,
		ProductID: res.ProductID,
		Quantity:  res.Quantity,
		Message:   res.Message,
	}
}

// OrderDetailsResponseFromModel converts order details.
func OrderDetailsResponseFromModel(d order.Details) OrderDetailsResponse {
	items := make([]OrderItemResponse, len(d.Items))
	for i, item := range d.Items {
		items[i] = OrderItemResponse{
			OrderID:     item.OrderID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			CreatedAt:   item.CreatedAt,
			ProductName: item.ProductName,
			Price:       item.Price.StringFixed(2),
		}
	}

	return OrderDetailsResponse{
		Order: OrderResponse{
			ID:        d.Order.ID,
			CreatedAt: d.Order.CreatedAt,
			ClosedAt:  d.Order.ClosedAt,
		},
		Items: items,
	}
}


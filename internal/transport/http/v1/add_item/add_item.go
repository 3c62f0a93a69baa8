package additem

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/orderitems/internal/service/models/apperr"
	"github.com/corray333/backend-labs/orderitems/internal/service/models/orderitem"
	"github.com/corray333/backend-labs/orderitems/internal/transport/http/v1/converters"
	"github.com/corray333/backend-labs/orderitems/internal/transport/http/v1/response"
)

// service is an interface for the service layer.
type service interface {
	AddItemToOrder(
		ctx context.Context,
		orderID, productID int64,
		quantity int,
	) (orderitem.AddItemResult, error)
}

// AddItem handles POST /orders/{order_id}/items.
func AddItem(w http.ResponseWriter, r *http.Request, service service) {
	orderID, err := converters.ParseOrderID(r)
	if err != nil {
		response.Error(w, r, err)

		return
	}

	var req converters.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.WarnContext(r.Context(), "Error decoding request body for add item", "error", err)
		response.Error(w, r, apperr.Validation("Invalid request body"))

		return
	}

	cmd := converters.AddItemCommandFromRequest(orderID, req)
	if err := cmd.Validate(); err != nil {
		response.Error(w, r, apperr.Validation("%s", err.Error()))

		return
	}

	result, err := service.AddItemToOrder(r.Context(), cmd.OrderID, cmd.ProductID, cmd.Quantity)
	if err != nil {
		response.Error(w, r, err)

		return
	}

	response.JSON(w, r, http.StatusOK, converters.AddItemResponseFromModel(result))
}

package getorderitems

import (
	"context"
	"net/http"

	"github.com/corray333/backend-labs/orderitems/internal/service/models/order"
	"github.com/corray333/backend-labs/orderitems/internal/transport/http/v1/converters"
	"github.com/corray333/backend-labs/orderitems/internal/transport/http/v1/response"
)

// service is an interface for the service layer.
type service interface {
	GetOrderDetails(ctx context.Context, orderID int64) (order.Details, error)
}

// GetOrderItems handles GET /orders/{order_id}/items.
func GetOrderItems(w http.ResponseWriter, r *http.Request, service service) {
	orderID, err := converters.ParseOrderID(r)
	if err != nil {
		response.Error(w, r, err)

		return
	}

	details, err := service.GetOrderDetails(r.Context(), orderID)
	if err != nil {
		response.Error(w, r, err)

		return
	}

	response.JSON(w, r, http.StatusOK, converters.OrderDetailsResponseFromModel(details))
}

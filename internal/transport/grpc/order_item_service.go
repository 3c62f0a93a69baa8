package grpctransport

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/corray333/backend-labs/orderitems/internal/service/models/apperr"
	"github.com/corray333/backend-labs/orderitems/internal/service/models/order"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// OrderItemServer implements OrderItemServiceServer over the service layer.
type OrderItemServer struct {
	service service
}

// NewOrderItemServer creates a new OrderItemServer.
func NewOrderItemServer(service service) *OrderItemServer {
	return &OrderItemServer{
		service: service,
	}
}

// AddItem handles the add item gRPC request.
// Fields: order_id, product_id, quantity.
func (s *OrderItemServer) AddItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	orderID, err := intField(req, "order_id")
	if err != nil {
		return nil, err
	}
	productID, err := intField(req, "product_id")
	if err != nil {
		return nil, err
	}
	quantity, err := intField(req, "quantity")
	if err != nil {
		return nil, err
	}

	result, err := s.service.AddItemToOrder(ctx, orderID, productID, int(quantity))
	if err != nil {
		return nil, toStatus(err)
	}

	return structpb.NewStruct(map[string]any{
		"order_id":   result.OrderID,
		"product_id": result.ProductID,
		"quantity":   result.Quantity,
		"message":    result.Message,
	})
}

// GetOrderDetails handles the order details gRPC request.
// Fields: order_id.
func (s *OrderItemServer) GetOrderDetails(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	orderID, err := intField(req, "order_id")
	if err != nil {
		return nil, err
	}

	details, err := s.service.GetOrderDetails(ctx, orderID)
	if err != nil {
		return nil, toStatus(err)
	}

	return detailsToStruct(details)
}

func detailsToStruct(d order.Details) (*structpb.Struct, error) {
	var closedAt any
	if d.Order.ClosedAt != nil {
		closedAt = d.Order.ClosedAt.Format(time.RFC3339Nano)
	}

	items := make([]any, len(d.Items))
	for i, item := range d.Items {
		items[i] = map[string]any{
			"order_id":     item.OrderID,
			"product_id":   item.ProductID,
			"quantity":     item.Quantity,
			"created_at":   item.CreatedAt.Format(time.RFC3339Nano),
			"product_name": item.ProductName,
			"price":        item.Price.StringFixed(2),
		}
	}

	out, err := structpb.NewStruct(map[string]any{
		"order": map[string]any{
			"id":         d.Order.ID,
			"created_at": d.Order.CreatedAt.Format(time.RFC3339Nano),
			"closed_at":  closedAt,
		},
		"items": items,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to build response: %v", err)
	}

	return out, nil
}

// intField reads an integral number field.
func intField(req *structpb.Struct, name string) (int64, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s is required", name)
	}

	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a number", name)
	}
	if n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > 1<<53 {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be an integer", name)
	}

	return int64(n.NumberValue), nil
}

// toStatus maps an error kind to a gRPC status.
func toStatus(err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, apperr.ErrValidation):
		code = codes.InvalidArgument
	case errors.Is(err, apperr.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, apperr.ErrInvalidState), errors.Is(err, apperr.ErrInsufficientStock):
		code = codes.FailedPrecondition
	case errors.Is(err, apperr.ErrLockTimeout), errors.Is(err, apperr.ErrConnectivity):
		code = codes.Unavailable
	default:
		code = codes.Internal
	}

	msg := err.Error()
	if !apperr.Public(err) {
		msg = "internal error"
	}
	if code == codes.Internal || code == codes.Unavailable {
		slog.Error("gRPC request failed", "code", code.String(), "error", err)
	}

	return status.Error(code, msg)
}


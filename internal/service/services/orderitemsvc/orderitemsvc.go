package orderitemsvc

import (
	"context"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/orderitems/internal/dal/uow"
	"github.com/corray333/backend-labs/orderitems/internal/service/models/apperr"
	"github.com/corray333/backend-labs/orderitems/internal/service/models/order"
	"github.com/corray333/backend-labs/orderitems/internal/service/models/orderitem"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/corray333/backend-labs/orderitems/orderitemsvc"

type unitOfWork interface {
	RunAtomic(ctx context.Context, work uow.WorkFunc) error
	Repositories() uow.Repositories
}

// OrderItemService manages order items and the product stock they consume.
type OrderItemService struct {
	uow           unitOfWork
	tracer        trace.Tracer
	meterProvider metric.MeterProvider
	metrics       *metrics
}

// option is a function that configures the OrderItemService.
type option func(*OrderItemService)

// MustNewOrderItemService creates a new OrderItemService.
func MustNewOrderItemService(opts ...option) *OrderItemService {
	s := &OrderItemService{
		tracer:        otel.Tracer(instrumentationName),
		meterProvider: otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.uow == nil {
		panic("orderitemsvc: unit of work is required")
	}

	m, err := newMetrics(s.meterProvider.Meter(instrumentationName))
	if err != nil {
		panic(err)
	}
	s.metrics = m

	return s
}

// WithUnitOfWork sets the transaction coordinator for the OrderItemService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWork(u unitOfWork) option {
	return func(s *OrderItemService) {
		s.uow = u
	}
}

// WithMeterProvider overrides the global meter provider.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithMeterProvider(mp metric.MeterProvider) option {
	return func(s *OrderItemService) {
		s.meterProvider = mp
	}
}

// AddItemToOrder adds quantity units of a product to an order and takes them
// from stock. All checks and writes happen in one transaction with the
// product row locked, so concurrent calls never oversell.
func (s *OrderItemService) AddItemToOrder(
	ctx context.Context,
	orderID, productID int64,
	quantity int,
) (orderitem.AddItemResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "OrderItemService.AddItemToOrder", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.Int64("product.id", productID),
		attribute.Int("item.quantity", quantity),
	))
	defer span.End()

	result, err := s.addItem(ctx, orderitem.AddItemCommand{
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
	})
	s.metrics.recordAddItem(ctx, err, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logAddItemFailure(ctx, err, orderID, productID, quantity)

		return orderitem.AddItemResult{}, err
	}

	span.SetStatus(codes.Ok, result.Message)
	slog.InfoContext(ctx, "Item added to order",
		"order_id", orderID,
		"product_id", productID,
		"quantity", quantity,
		"message", result.Message)

	return result, nil
}

func (s *OrderItemService) addItem(
	ctx context.Context,
	cmd orderitem.AddItemCommand,
) (orderitem.AddItemResult, error) {
	if err := cmd.Validate(); err != nil {
		return orderitem.AddItemResult{}, apperr.Validation("%s", err.Error())
	}

	st := &addItemState{cmd: cmd}
	err := s.uow.RunAtomic(ctx, func(ctx context.Context, repos uow.Repositories) error {
		st.repos = repos

		return s.runPipeline(ctx, addItemPipeline, st)
	})
	if err != nil {
		return orderitem.AddItemResult{}, apperr.Wrap(err)
	}

	return orderitem.AddItemResult{
		OrderID:   cmd.OrderID,
		ProductID: cmd.ProductID,
		Quantity:  cmd.Quantity,
		Message:   st.message,
	}, nil
}

// GetOrderDetails returns the order with all its items. It reads without a
// transaction and sees the latest committed state.
func (s *OrderItemService) GetOrderDetails(
	ctx context.Context,
	orderID int64,
) (order.Details, error) {
	ctx, span := s.tracer.Start(ctx, "OrderItemService.GetOrderDetails", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
	))
	defer span.End()

	details, err := s.getOrderDetails(ctx, orderID)
	if err != nil {
		err = uow.Classify(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return order.Details{}, err
	}

	span.SetAttributes(
		attribute.Int("order.items", len(details.Items)),
		attribute.Int("order.total_quantity", details.TotalQuantity()),
	)

	return details, nil
}

func (s *OrderItemService) getOrderDetails(ctx context.Context, orderID int64) (order.Details, error) {
	repos := s.uow.Repositories()

	o, err := repos.OrderRepository().GetOrder(ctx, orderID)
	if err != nil {
		return order.Details{}, err
	}
	if o == nil {
		return order.Details{}, apperr.NotFound("Order %d not found", orderID)
	}

	items, err := repos.OrderItemRepository().ListOrderItemsWithProductInfo(ctx, orderID)
	if err != nil {
		return order.Details{}, err
	}

	return order.Details{
		Order: *o,
		Items: items,
	}, nil
}

func logAddItemFailure(ctx context.Context, err error, orderID, productID int64, quantity int) {
	attrs := []any{
		"order_id", orderID,
		"product_id", productID,
		"quantity", quantity,
		"kind", apperr.Code(err),
		"error", err,
	}

	switch apperr.KindOf(err) {
	case apperr.ErrInternal, apperr.ErrConnectivity, nil:
		slog.ErrorContext(ctx, "Failed to add item to order", attrs...)
	default:
		slog.WarnContext(ctx, "Item was not added to order", attrs...)
	}
}

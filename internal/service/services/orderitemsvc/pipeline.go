package orderitemsvc

import (
	"context"
	"fmt"

	"github.com/corray333/backend-labs/orderitems/internal/dal/uow"
	"github.com/corray333/backend-labs/orderitems/internal/service/models/apperr"
	"github.com/corray333/backend-labs/orderitems/internal/service/models/order"
	"github.com/corray333/backend-labs/orderitems/internal/service/models/orderitem"
	"github.com/corray333/backend-labs/orderitems/internal/service/models/product"
	"go.opentelemetry.io/otel/codes"
)

const (
	messageItemAdded   = "Product added to order"
	messageItemUpdated = "Product quantity updated to %d"
)

// addItemState is shared by the steps of one AddItemToOrder call.
type addItemState struct {
	cmd   orderitem.AddItemCommand
	repos uow.Repositories

	order   *order.Order
	product *product.Product
	message string
}

type step struct {
	name string
	run  func(ctx context.Context, st *addItemState) error
}

// addItemPipeline is run in order inside one transaction. The product lock
// is taken before the stock check and held until commit.
var addItemPipeline = []step{
	{name: "load_order", run: loadOrder},
	{name: "ensure_order_open", run: ensureOrderOpen},
	{name: "lock_product", run: lockProduct},
	{name: "check_stock", run: checkStock},
	{name: "upsert_order_item", run: upsertOrderItem},
	{name: "decrement_inventory", run: decrementInventory},
}

// runPipeline stops at the first failing step.
func (s *OrderItemService) runPipeline(ctx context.Context, steps []step, st *addItemState) error {
	for _, stp := range steps {
		stepCtx, span := s.tracer.Start(ctx, "orderitemsvc."+stp.name)
		err := stp.run(stepCtx, st)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		if err != nil {
			return err
		}
	}

	return nil
}

func loadOrder(ctx context.Context, st *addItemState) error {
	o, err := st.repos.OrderRepository().GetOrder(ctx, st.cmd.OrderID)
	if err != nil {
		return err
	}
	if o == nil {
		return apperr.NotFound("Order %d not found", st.cmd.OrderID)
	}
	st.order = o

	return nil
}

func ensureOrderOpen(_ context.Context, st *addItemState) error {
	if st.order.IsClosed() {
		return apperr.InvalidState("Cannot add items to closed order")
	}

	return nil
}

func lockProduct(ctx context.Context, st *addItemState) error {
	p, err := st.repos.ProductRepository().GetProductForUpdate(ctx, st.cmd.ProductID)
	if err != nil {
		return err
	}
	if p == nil {
		return apperr.NotFound("Product %d not found", st.cmd.ProductID)
	}
	st.product = p

	return nil
}

func checkStock(_ context.Context, st *addItemState) error {
	if !st.product.HasStock(st.cmd.Quantity) {
		return &apperr.InsufficientStockError{
			ProductID: st.product.ID,
			Available: st.product.Quantity,
			Requested: st.cmd.Quantity,
		}
	}

	return nil
}

func upsertOrderItem(ctx context.Context, st *addItemState) error {
	items := st.repos.OrderItemRepository()

	existing, err := items.GetOrderItem(ctx, st.cmd.OrderID, st.cmd.ProductID)
	if err != nil {
		return err
	}

	if existing != nil {
		newQuantity := existing.Quantity + st.cmd.Quantity
		ok, err := items.UpdateOrderItemQuantity(ctx, st.cmd.OrderID, st.cmd.ProductID, newQuantity)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Internal(nil, "Failed to update order item")
		}
		st.message = fmt.Sprintf(messageItemUpdated, newQuantity)

		return nil
	}

	ok, err := items.InsertOrderItem(ctx, st.cmd.OrderID, st.cmd.ProductID, st.cmd.Quantity)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Internal(nil, "Failed to add product to order")
	}
	st.message = messageItemAdded

	return nil
}

// decrementInventory uses the quantity read under lock, not a fresh read.
func decrementInventory(ctx context.Context, st *addItemState) error {
	remaining := st.product.Quantity - st.cmd.Quantity
	ok, err := st.repos.ProductRepository().SetProductQuantity(ctx, st.product.ID, remaining)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Internal(nil, "Failed to update product inventory")
	}

	return nil
}

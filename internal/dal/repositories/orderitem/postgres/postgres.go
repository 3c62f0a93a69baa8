package postgresrepo

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/orderitems/internal/dal/postgres"
	"github.com/corray333/backend-labs/orderitems/internal/service/models/orderitem"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// OrderItemDal represents order item data access layer model.
type OrderItemDal struct {
	OrderId   int64              `db:"order_id"`
	ProductId int64              `db:"product_id"`
	Quantity  int                `db:"quantity"`
	CreatedAt pgtype.Timestamptz `db:"created_at"`
}

// ToModel converts OrderItemDal to service layer OrderItem model.
func (oi *OrderItemDal) ToModel() *orderitem.OrderItem {
	return &orderitem.OrderItem{
		OrderID:   oi.OrderId,
		ProductID: oi.ProductId,
		Quantity:  oi.Quantity,
		CreatedAt: oi.CreatedAt.Time,
	}
}

// OrderItemDetailsDal is an order item row joined with its product.
type OrderItemDetailsDal struct {
	OrderItemDal

	ProductName string `db:"product_name"`
	Price       string `db:"price"`
}

// ToModel converts OrderItemDetailsDal to service layer Details model.
func (d *OrderItemDetailsDal) ToModel() (*orderitem.Details, error) {
	price, err := decimal.NewFromString(d.Price)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price %q: %w", d.Price, err)
	}

	return &orderitem.Details{
		OrderItem:   *d.OrderItemDal.ToModel(),
		ProductName: d.ProductName,
		Price:       price,
	}, nil
}

// PostgresOrderItemRepository represents a Postgres order item repository.
type PostgresOrderItemRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderItemRepository creates a new Postgres order item repository.
func NewPostgresOrderItemRepository(conn postgres.GenericConn) *PostgresOrderItemRepository {
	return &PostgresOrderItemRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// GetOrderItem returns the order line for the product or nil if there is none.
func (r *PostgresOrderItemRepository) GetOrderItem(
	ctx context.Context,
	orderID, productID int64,
) (*orderitem.OrderItem, error) {
	sql, args, err := r.sb.
		Select("order_id", "product_id", "quantity", "created_at").
		From("order_items").
		Where(sq.Eq{"order_id": orderID, "product_id": productID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var dal OrderItemDal
	err = r.conn.QueryRow(ctx, sql, args...).Scan(
		&dal.OrderId,
		&dal.ProductId,
		&dal.Quantity,
		&dal.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order item: %w", err)
	}

	return dal.ToModel(), nil
}

// InsertOrderItem adds a new order line. An existing line for the same
// product is left untouched and reported as false.
func (r *PostgresOrderItemRepository) InsertOrderItem(
	ctx context.Context,
	orderID, productID int64,
	quantity int,
) (bool, error) {
	sql, args, err := r.sb.
		Insert("order_items").
		Columns("order_id", "product_id", "quantity").
		Values(orderID, productID, quantity).
		Suffix("ON CONFLICT (order_id, product_id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("failed to insert order item: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// UpdateOrderItemQuantity overwrites the quantity of an order line.
func (r *PostgresOrderItemRepository) UpdateOrderItemQuantity(
	ctx context.Context,
	orderID, productID int64,
	quantity int,
) (bool, error) {
	sql, args, err := r.sb.
		Update("order_items").
		Set("quantity", quantity).
		Where(sq.Eq{"order_id": orderID, "product_id": productID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update order item: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// ListOrderItemsWithProductInfo returns all lines of the order joined with
// product name and price.
func (r *PostgresOrderItemRepository) ListOrderItemsWithProductInfo(
	ctx context.Context,
	orderID int64,
) ([]orderitem.Details, error) {
	sql, args, err := r.sb.
		Select(
			"oi.order_id",
			"oi.product_id",
			"oi.quantity",
			"oi.created_at",
			"p.name AS product_name",
			"p.price::text AS price",
		).
		From("order_items oi").
		Join("products p ON p.id = oi.product_id").
		Where(sq.Eq{"oi.order_id": orderID}).
		OrderBy("oi.created_at", "oi.product_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	result := make([]orderitem.Details, 0)
	for rows.Next() {
		var dal OrderItemDetailsDal
		err := rows.Scan(
			&dal.OrderId,
			&dal.ProductId,
			&dal.Quantity,
			&dal.CreatedAt,
			&dal.ProductName,
			&dal.Price,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order item dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

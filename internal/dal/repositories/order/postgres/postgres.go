package postgresrepo

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/orderitems/internal/dal/postgres"
	"github.com/corray333/backend-labs/orderitems/internal/service/models/order"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// OrderDal represents order data access layer model.
type OrderDal struct {
	Id        int64              `db:"id"`
	CreatedAt pgtype.Timestamptz `db:"created_at"`
	ClosedAt  pgtype.Timestamptz `db:"closed_at"`
}

// ToModel converts OrderDal to service layer Order model.
func (o *OrderDal) ToModel() *order.Order {
	model := &order.Order{
		ID:        o.Id,
		CreatedAt: o.CreatedAt.Time,
	}
	if o.ClosedAt.Valid {
		closedAt := o.ClosedAt.Time
		model.ClosedAt = &closedAt
	}

	return model
}

// PostgresOrderRepository represents a Postgres order repository.
type PostgresOrderRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a new Postgres order repository.
func NewPostgresOrderRepository(conn postgres.GenericConn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// GetOrder returns the order with the given id or nil if there is none.
func (r *PostgresOrderRepository) GetOrder(ctx context.Context, orderID int64) (*order.Order, error) {
	sql, args, err := r.sb.
		Select("id", "created_at", "closed_at").
		From("orders").
		Where(sq.Eq{"id": orderID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var dal OrderDal
	err = r.conn.QueryRow(ctx, sql, args...).Scan(&dal.Id, &dal.CreatedAt, &dal.ClosedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return dal.ToModel(), nil
}

package postgresrepo

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/orderitems/internal/dal/postgres"
	"github.com/corray333/backend-labs/orderitems/internal/service/models/product"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ProductDal represents product data access layer model.
// Price is read as text to keep NUMERIC precision.
type ProductDal struct {
	Id       int64  `db:"id"`
	Name     string `db:"name"`
	Price    string `db:"price"`
	Quantity int    `db:"quantity"`
}

// ToModel converts ProductDal to service layer Product model.
func (p *ProductDal) ToModel() (*product.Product, error) {
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price %q: %w", p.Price, err)
	}

	return &product.Product{
		ID:       p.Id,
		Name:     p.Name,
		Price:    price,
		Quantity: p.Quantity,
	}, nil
}

// PostgresProductRepository represents a Postgres product repository.
type PostgresProductRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresProductRepository creates a new Postgres product repository.
func NewPostgresProductRepository(conn postgres.GenericConn) *PostgresProductRepository {
	return &PostgresProductRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// GetProductForUpdate returns the product and holds an exclusive row lock on
// it until the transaction ends. Concurrent callers block here.
func (r *PostgresProductRepository) GetProductForUpdate(
	ctx context.Context,
	productID int64,
) (*product.Product, error) {
	sql, args, err := r.sb.
		Select("id", "name", "price::text", "quantity").
		From("products").
		Where(sq.Eq{"id": productID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var dal ProductDal
	err = r.conn.QueryRow(ctx, sql, args...).Scan(&dal.Id, &dal.Name, &dal.Price, &dal.Quantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return dal.ToModel()
}

// SetProductQuantity overwrites the stock of the product.
func (r *PostgresProductRepository) SetProductQuantity(
	ctx context.Context,
	productID int64,
	quantity int,
) (bool, error) {
	sql, args, err := r.sb.
		Update("products").
		Set("quantity", quantity).
		Where(sq.Eq{"id": productID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update product quantity: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

package uow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/orderitems/internal/dal/interfaces/iorderitemrepo"
	"github.com/corray333/backend-labs/orderitems/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/orderitems/internal/dal/interfaces/iproductrepo"
	"github.com/corray333/backend-labs/orderitems/internal/dal/postgres"
	orderrepo "github.com/corray333/backend-labs/orderitems/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/corray333/backend-labs/orderitems/internal/dal/repositories/orderitem/postgres"
	productrepo "github.com/corray333/backend-labs/orderitems/internal/dal/repositories/product/postgres"
	"github.com/corray333/backend-labs/orderitems/internal/service/models/apperr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgCodeLockNotAvailable = "55P03"
	pgCodeDeadlockDetected = "40P01"

	rollbackTimeout = 5 * time.Second
)

// Repositories gives access to repositories bound to one connection scope.
type Repositories interface {
	OrderRepository() iorderrepo.IOrderRepository
	ProductRepository() iproductrepo.IProductRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
}

// Database is satisfied by *pgxpool.Pool.
type Database interface {
	postgres.GenericConn
	Begin(ctx context.Context) (pgx.Tx, error)
}

// WorkFunc is the body of an atomic scope.
type WorkFunc func(ctx context.Context, repos Repositories) error

type repositories struct {
	orderRepo     iorderrepo.IOrderRepository
	productRepo   iproductrepo.IProductRepository
	orderItemRepo iorderitemrepo.IOrderItemRepository
}

func newRepositories(conn postgres.GenericConn) *repositories {
	return &repositories{
		orderRepo:     orderrepo.NewPostgresOrderRepository(conn),
		productRepo:   productrepo.NewPostgresProductRepository(conn),
		orderItemRepo: orderitemrepo.NewPostgresOrderItemRepository(conn),
	}
}

func (r *repositories) OrderRepository() iorderrepo.IOrderRepository {
	return r.orderRepo
}

func (r *repositories) ProductRepository() iproductrepo.IProductRepository {
	return r.productRepo
}

func (r *repositories) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return r.orderItemRepo
}

type scopeKey struct{}

// UnitOfWork runs work inside database transactions.
type UnitOfWork struct {
	db          Database
	lockTimeout time.Duration
	readRepos   *repositories
}

type option func(*UnitOfWork)

// WithLockTimeout bounds how long a statement inside a scope waits for a row
// lock. Zero leaves the server default.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithLockTimeout(timeout time.Duration) option {
	return func(u *UnitOfWork) {
		u.lockTimeout = timeout
	}
}

// NewUnitOfWork creates a new UnitOfWork over the pool.
func NewUnitOfWork(db Database, opts ...option) *UnitOfWork {
	u := &UnitOfWork{
		db:        db,
		readRepos: newRepositories(db),
	}
	for _, opt := range opts {
		opt(u)
	}

	return u
}

// Repositories returns repositories bound to the pool, for reads that do not
// need a transaction.
func (u *UnitOfWork) Repositories() Repositories {
	return u.readRepos
}

// RunAtomic runs work in a single transaction. The transaction commits only
// when work returns nil and is rolled back on every other exit path,
// including panics and cancellation of ctx. Nested scopes are rejected.
//
// Returned errors are always classified with apperr.
func (u *UnitOfWork) RunAtomic(ctx context.Context, work WorkFunc) error {
	if ctx.Value(scopeKey{}) != nil {
		return apperr.Internal(nil, "nested atomic scope is not supported")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return apperr.Connectivity(fmt.Errorf("failed to begin transaction: %w", err), "Database is unavailable")
	}

	committed := false
	defer func() {
		if !committed {
			rollback(ctx, tx)
		}
	}()

	if err := u.applyLockTimeout(ctx, tx); err != nil {
		return Classify(err)
	}

	if err := work(context.WithValue(ctx, scopeKey{}, struct{}{}), newRepositories(tx)); err != nil {
		return Classify(err)
	}

	if err := tx.Commit(ctx); err != nil {
		if classified := Classify(err); !errors.Is(classified, apperr.ErrInternal) {
			return classified
		}

		return apperr.Connectivity(fmt.Errorf("failed to commit transaction: %w", err), "Database is unavailable")
	}
	committed = true

	return nil
}

func (u *UnitOfWork) applyLockTimeout(ctx context.Context, tx pgx.Tx) error {
	if u.lockTimeout <= 0 {
		return nil
	}

	value := fmt.Sprintf("%dms", u.lockTimeout.Milliseconds())
	if _, err := tx.Exec(ctx, "SELECT set_config('lock_timeout', $1, true)", value); err != nil {
		return fmt.Errorf("failed to set lock timeout: %w", err)
	}

	return nil
}

// rollback runs detached from ctx so that a cancelled caller still releases
// the transaction and its locks.
func rollback(ctx context.Context, tx pgx.Tx) {
	rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()

	if err := tx.Rollback(rbCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.ErrorContext(ctx, "Failed to rollback transaction", "error", err)
	}
}

// Classify maps driver errors to error kinds. Errors that already carry a
// kind pass through unchanged. Reads outside RunAtomic use it too, so a
// failure maps to the same kind with or without a transaction.
func Classify(err error) error {
	if apperr.IsClassified(err) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCodeLockNotAvailable, pgCodeDeadlockDetected:
			return apperr.LockTimeout(err, "Lock wait timed out, retry the request")
		}
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return apperr.Connectivity(err, "Database is unavailable")
	}

	return apperr.Wrap(err)
}

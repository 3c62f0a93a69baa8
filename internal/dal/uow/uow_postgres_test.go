package uow_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/corray333/backend-labs/orderitems/internal/dal/postgres"
	"github.com/corray333/backend-labs/orderitems/internal/dal/uow"
	"github.com/corray333/backend-labs/orderitems/internal/service/models/apperr"
	"github.com/corray333/backend-labs/orderitems/internal/service/services/orderitemsvc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient connects to TEST_DATABASE_CONN_STR and resets the tables.
func newTestClient(t *testing.T) *postgres.Client {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_CONN_STR")
	if dsn == "" {
		t.Skip("TEST_DATABASE_CONN_STR is not set")
	}

	ctx := context.Background()
	client, err := postgres.NewClient(ctx, postgres.Config{
		DSN:             dsn,
		MaxConns:        20,
		ConnectAttempts: 3,
		ConnectDelay:    200 * time.Millisecond,
		MigrationsPath:  "../../../migrations",
	})
	if err != nil {
		t.Skipf("database is not available: %v", err)
	}
	t.Cleanup(client.Close)

	_, err = client.Pool().Exec(ctx, "TRUNCATE order_items, orders, products RESTART IDENTITY CASCADE")
	require.NoError(t, err)

	return client
}

func seed(t *testing.T, client *postgres.Client, sql string, args ...any) {
	t.Helper()

	_, err := client.Pool().Exec(context.Background(), sql, args...)
	require.NoError(t, err)
}

func productQuantity(t *testing.T, client *postgres.Client, id int64) int {
	t.Helper()

	var q int
	err := client.Pool().QueryRow(context.Background(), "SELECT quantity FROM products WHERE id = $1", id).Scan(&q)
	require.NoError(t, err)

	return q
}

func TestPostgres_AddItemScenario(t *testing.T) {
	client := newTestClient(t)
	seed(t, client, "INSERT INTO orders (id) VALUES (1)")
	seed(t, client, "INSERT INTO orders (id, closed_at) VALUES (2, now())")
	seed(t, client, "INSERT INTO products (id, name, price, quantity) VALUES (7, 'Keyboard', 49.90, 10)")

	svc := orderitemsvc.MustNewOrderItemService(
		orderitemsvc.WithUnitOfWork(uow.NewUnitOfWork(client.Pool(), uow.WithLockTimeout(time.Second))),
	)
	ctx := context.Background()

	res, err := svc.AddItemToOrder(ctx, 1, 7, 4)
	require.NoError(t, err)
	assert.Equal(t, "Product added to order", res.Message)
	assert.Equal(t, 6, productQuantity(t, client, 7))

	res, err = svc.AddItemToOrder(ctx, 1, 7, 3)
	require.NoError(t, err)
	assert.Equal(t, "Product quantity updated to 7", res.Message)
	assert.Equal(t, 3, productQuantity(t, client, 7))

	_, err = svc.AddItemToOrder(ctx, 1, 7, 5)
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)
	assert.Equal(t, 3, productQuantity(t, client, 7))

	_, err = svc.AddItemToOrder(ctx, 2, 7, 1)
	require.ErrorIs(t, err, apperr.ErrInvalidState)

	_, err = svc.AddItemToOrder(ctx, 999, 7, 1)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	details, err := svc.GetOrderDetails(ctx, 1)
	require.NoError(t, err)
	require.Len(t, details.Items, 1)
	assert.Equal(t, 7, details.Items[0].Quantity)
	assert.Equal(t, "Keyboard", details.Items[0].ProductName)
	assert.Equal(t, "49.9", details.Items[0].Price.String())
	assert.Equal(t, 3, productQuantity(t, client, 7))
}

func TestPostgres_ConcurrentAddsNeverOversell(t *testing.T) {
	client := newTestClient(t)
	seed(t, client, "INSERT INTO orders (id) VALUES (1)")
	seed(t, client, "INSERT INTO products (id, name, price, quantity) VALUES (7, 'Keyboard', 49.90, 10)")

	svc := orderitemsvc.MustNewOrderItemService(
		orderitemsvc.WithUnitOfWork(uow.NewUnitOfWork(client.Pool(), uow.WithLockTimeout(10*time.Second))),
	)

	const workers = 16
	var wg sync.WaitGroup
	var succeeded, outOfStock atomic.Int32
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItemToOrder(context.Background(), 1, 7, 1)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, apperr.ErrInsufficientStock):
				outOfStock.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), succeeded.Load())
	assert.Equal(t, int32(workers-10), outOfStock.Load())
	assert.Equal(t, 0, productQuantity(t, client, 7))
}

func TestPostgres_LockWaitTimesOut(t *testing.T) {
	client := newTestClient(t)
	seed(t, client, "INSERT INTO products (id, name, price, quantity) VALUES (7, 'Keyboard', 49.90, 10)")

	holder := uow.NewUnitOfWork(client.Pool())
	waiter := uow.NewUnitOfWork(client.Pool(), uow.WithLockTimeout(100*time.Millisecond))

	locked := make(chan struct{})
	release := make(chan struct{})
	holderDone := make(chan error, 1)
	go func() {
		holderDone <- holder.RunAtomic(context.Background(), func(ctx context.Context, repos uow.Repositories) error {
			if _, err := repos.ProductRepository().GetProductForUpdate(ctx, 7); err != nil {
				return err
			}
			close(locked)
			<-release

			return nil
		})
	}()

	<-locked
	err := waiter.RunAtomic(context.Background(), func(ctx context.Context, repos uow.Repositories) error {
		_, err := repos.ProductRepository().GetProductForUpdate(ctx, 7)

		return err
	})
	close(release)

	require.ErrorIs(t, err, apperr.ErrLockTimeout)
	assert.True(t, apperr.Retryable(err))
	require.NoError(t, <-holderDone)
}

func TestPostgres_CancelledCallerRollsBack(t *testing.T) {
	client := newTestClient(t)
	seed(t, client, "INSERT INTO orders (id) VALUES (1)")
	seed(t, client, "INSERT INTO products (id, name, price, quantity) VALUES (7, 'Keyboard', 49.90, 10)")

	u := uow.NewUnitOfWork(client.Pool())
	ctx, cancel := context.WithCancel(context.Background())

	err := u.RunAtomic(ctx, func(ctx context.Context, repos uow.Repositories) error {
		ok, err := repos.ProductRepository().SetProductQuantity(ctx, 7, 1)
		if err != nil {
			return err
		}
		require.True(t, ok)
		cancel()

		return ctx.Err()
	})

	require.Error(t, err)
	assert.Equal(t, 10, productQuantity(t, client, 7))
}

func TestPostgres_Repositories(t *testing.T) {
	client := newTestClient(t)
	seed(t, client, "INSERT INTO orders (id) VALUES (1)")
	seed(t, client, "INSERT INTO products (id, name, price, quantity) VALUES (7, 'Keyboard', 49.90, 10)")

	u := uow.NewUnitOfWork(client.Pool())
	ctx := context.Background()
	repos := u.Repositories()

	o, err := repos.OrderRepository().GetOrder(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.False(t, o.IsClosed())

	missing, err := repos.OrderRepository().GetOrder(ctx, 404)
	require.NoError(t, err)
	assert.Nil(t, missing)

	err = u.RunAtomic(ctx, func(ctx context.Context, repos uow.Repositories) error {
		p, err := repos.ProductRepository().GetProductForUpdate(ctx, 7)
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "Keyboard", p.Name)
		assert.Equal(t, "49.9", p.Price.String())

		absent, err := repos.ProductRepository().GetProductForUpdate(ctx, 404)
		require.NoError(t, err)
		assert.Nil(t, absent)

		return nil
	})
	require.NoError(t, err)

	items, err := repos.OrderItemRepository().ListOrderItemsWithProductInfo(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	inserted, err := repos.OrderItemRepository().InsertOrderItem(ctx, 1, 7, 2)
	require.NoError(t, err)
	assert.True(t, inserted)

	duplicate, err := repos.OrderItemRepository().InsertOrderItem(ctx, 1, 7, 2)
	require.NoError(t, err)
	assert.False(t, duplicate)

	updated, err := repos.OrderItemRepository().UpdateOrderItemQuantity(ctx, 1, 8, 2)
	require.NoError(t, err)
	assert.False(t, updated)

	setMissing, err := repos.ProductRepository().SetProductQuantity(ctx, 404, 1)
	require.NoError(t, err)
	assert.False(t, setMissing)

	_, err = repos.OrderItemRepository().InsertOrderItem(ctx, 404, 7, 1)
	require.Error(t, err)
}

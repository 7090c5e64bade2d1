package service_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/coffee-store-api/internal/model"
	"github.com/iliyamo/coffee-store-api/internal/service"
	"github.com/iliyamo/coffee-store-api/internal/store"
)

// seedCatalog inserts a user, a category and two products, returning
// the user id and the product ids.
func seedCatalog(t *testing.T, db *sql.DB) (string, []int64) {
	t.Helper()
	ctx := context.Background()
	uow := store.New(db)
	defer uow.Close()

	user := &model.User{
		ID:           "user-1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "x",
		Role:         model.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}
	uow.Users.Add(user)
	cat := &model.Category{Name: "Espresso", CreatedAt: time.Now().UTC()}
	uow.Categories.Add(cat)
	_, err := uow.SaveChanges(ctx)
	require.NoError(t, err)

	p1 := &model.Product{Name: "Latte", Price: 3.50, CategoryID: cat.ID, IsActive: true, CreatedAt: time.Now().UTC()}
	p2 := &model.Product{Name: "Mocha", Price: 5.00, CategoryID: cat.ID, IsActive: true, CreatedAt: time.Now().UTC()}
	uow.Products.Add(p1)
	uow.Products.Add(p2)
	_, err = uow.SaveChanges(ctx)
	require.NoError(t, err)

	return user.ID, []int64{p1.ID, p2.ID}
}

func TestOrderCreateDerivesTotal(t *testing.T) {
	db := newTestDB(t)
	userID, products := seedCatalog(t, db)
	orders := service.NewOrderService(db)
	ctx := context.Background()

	order, err := orders.Create(ctx, userID, []service.OrderLine{
		{ProductID: products[0], Quantity: 2, UnitPrice: 3.50},
		{ProductID: products[1], Quantity: 1, UnitPrice: 5.00},
	})
	require.NoError(t, err)
	require.NotZero(t, order.ID)
	require.Equal(t, service.StatusPending, order.Status)
	require.InDelta(t, 12.00, order.Total, 1e-9)

	got, err := orders.Get(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Details, 2)
	require.InDelta(t, 12.00, got.Total, 1e-9)
	require.Equal(t, userID, got.UserID)
}

func TestOrderCreateValidation(t *testing.T) {
	db := newTestDB(t)
	userID, products := seedCatalog(t, db)
	orders := service.NewOrderService(db)
	ctx := context.Background()

	_, err := orders.Create(ctx, userID, nil)
	require.ErrorIs(t, err, store.ErrValidation)

	_, err = orders.Create(ctx, "", []service.OrderLine{{ProductID: products[0], Quantity: 1, UnitPrice: 1}})
	require.ErrorIs(t, err, store.ErrValidation)

	_, err = orders.Create(ctx, userID, []service.OrderLine{{ProductID: products[0], Quantity: 0, UnitPrice: 1}})
	require.ErrorIs(t, err, store.ErrValidation)
}

func TestOrderCreateIsAtomic(t *testing.T) {
	db := newTestDB(t)
	userID, products := seedCatalog(t, db)
	orders := service.NewOrderService(db)
	ctx := context.Background()

	// The second line references a product that does not exist, so the
	// whole order must roll back, header included.
	_, err := orders.Create(ctx, userID, []service.OrderLine{
		{ProductID: products[0], Quantity: 1, UnitPrice: 3.50},
		{ProductID: 9999, Quantity: 1, UnitPrice: 1.00},
	})
	require.Error(t, err)

	uow := store.New(db)
	defer uow.Close()
	n, err := uow.Orders.Count(ctx, nil)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestOrderListScopesToOwner(t *testing.T) {
	db := newTestDB(t)
	userID, products := seedCatalog(t, db)
	orders := service.NewOrderService(db)
	ctx := context.Background()

	other := &model.User{
		ID:           "user-2",
		Username:     "bob",
		Email:        "bob@example.com",
		PasswordHash: "x",
		Role:         model.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}
	uow := store.New(db)
	uow.Users.Add(other)
	_, err := uow.SaveChanges(ctx)
	require.NoError(t, err)
	uow.Close()

	line := []service.OrderLine{{ProductID: products[0], Quantity: 1, UnitPrice: 3.50}}
	_, err = orders.Create(ctx, userID, line)
	require.NoError(t, err)
	_, err = orders.Create(ctx, other.ID, line)
	require.NoError(t, err)

	mine, err := orders.List(ctx, model.QueryParameters{}, userID)
	require.NoError(t, err)
	require.Equal(t, 1, mine.TotalCount)
	require.Equal(t, userID, mine.Items[0].UserID)

	all, err := orders.List(ctx, model.QueryParameters{}, "")
	require.NoError(t, err)
	require.Equal(t, 2, all.TotalCount)
}

func TestOrderStatusUpdateAndDelete(t *testing.T) {
	db := newTestDB(t)
	userID, products := seedCatalog(t, db)
	orders := service.NewOrderService(db)
	ctx := context.Background()

	order, err := orders.Create(ctx, userID, []service.OrderLine{
		{ProductID: products[0], Quantity: 1, UnitPrice: 3.50},
	})
	require.NoError(t, err)

	updated, err := orders.UpdateStatus(ctx, order.ID, "Cancelled")
	require.NoError(t, err)
	require.Equal(t, "Cancelled", updated.Status)

	require.NoError(t, orders.Delete(ctx, order.ID))
	_, err = orders.Get(ctx, order.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	uow := store.New(db)
	defer uow.Close()
	n, err := uow.OrderDetails.Count(ctx, nil)
	require.NoError(t, err)
	require.Zero(t, n)

	require.ErrorIs(t, orders.Delete(ctx, order.ID), store.ErrNotFound)
}
